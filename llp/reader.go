package llp

import (
	"fmt"
	"io"
)

const decoderReadBuffer = 4096

// Decoder pulls decoded messages out of an io.Reader carrying framed data.
//
// Malformed frames surface as ErrMessageTooShort or ErrMessageTooLong;
// calling Next again continues scanning behind the bad frame, so one corrupt
// frame never stops the stream. A clean end of stream is io.EOF; an end of
// stream with a frame still open is io.ErrUnexpectedEOF.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r       io.Reader
	fs      frameScanner
	msg     []byte
	buf     []byte
	pending []byte
	rerr    error
	stats   ScanStats
}

// NewDecoder returns a Decoder reading framed data from r. The error wraps
// ErrBadParams when info fails Validate.
func NewDecoder(r io.Reader, info MessageInfo) (*Decoder, error) {
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	msg := make([]byte, info.Size)
	return &Decoder{
		r:   r,
		fs:  newFrameScanner(info, msg),
		msg: msg,
		buf: make([]byte, decoderReadBuffer),
	}, nil
}

// Next returns the next decoded payload as a fresh slice.
func (d *Decoder) Next() ([]byte, error) {
	for {
		for len(d.pending) > 0 {
			b := d.pending[0]
			d.pending = d.pending[1:]
			outside := !d.fs.inFrame()
			r := d.fs.step(b)
			d.stats.BytesFed++

			switch r {
			case stepMessage:
				d.stats.Messages++
				return append([]byte(nil), d.msg...), nil
			case stepTooShort:
				d.stats.TooShort++
				return nil, ErrMessageTooShort
			case stepTooLong:
				d.stats.TooLong++
				return nil, ErrMessageTooLong
			case stepNone:
				if outside && !d.fs.inFrame() {
					d.stats.SkippedBytes++
				}
			}
		}

		if d.rerr != nil {
			if d.rerr == io.EOF && d.fs.inFrame() {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, d.rerr
		}

		n, err := d.r.Read(d.buf)
		if n > 0 {
			d.pending = d.buf[:n]
		}
		if err != nil {
			d.rerr = err
		}
	}
}

// Stats returns the counters accumulated so far.
func (d *Decoder) Stats() ScanStats {
	return d.stats
}
