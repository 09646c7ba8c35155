package llp

import (
	"fmt"
	"io"
)

// WriteStats are cumulative counters for a Writer.
type WriteStats struct {
	Messages   uint64
	FrameBytes uint64
}

// Writer frames messages onto an io.Writer. Each message goes out as a
// single Write call so frames stay contiguous on packet-like transports.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	w     io.Writer
	info  MessageInfo
	stats WriteStats
}

// NewWriter returns a Writer framing messages onto w. The error wraps
// ErrBadParams when info fails Validate.
func NewWriter(w io.Writer, info MessageInfo) (*Writer, error) {
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return &Writer{w: w, info: info}, nil
}

// WriteMessage frames msg and writes it out. msg must be exactly the
// configured message size.
func (w *Writer) WriteMessage(msg []byte) error {
	if len(msg) != w.info.Size {
		return fmt.Errorf("%w: message is %d bytes, want %d", ErrBadParams, len(msg), w.info.Size)
	}
	frame := Serialize(w.info, msg)
	n, err := w.w.Write(frame)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != len(frame) {
		return io.ErrShortWrite
	}
	w.stats.Messages++
	w.stats.FrameBytes += uint64(len(frame))
	return nil
}

// Stats returns the counters accumulated so far.
func (w *Writer) Stats() WriteStats {
	return w.stats
}
