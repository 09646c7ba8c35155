package llp

import "fmt"

// ScanStats are cumulative counters for a Scanner or Decoder.
type ScanStats struct {
	// BytesFed is the total number of stream bytes consumed.
	BytesFed uint64

	// Messages counts frames decoded completely.
	Messages uint64

	// TooShort and TooLong count malformed frames by failure class.
	TooShort uint64
	TooLong  uint64

	// SkippedBytes counts bytes consumed while no frame was open: line
	// noise, garbage between frames, and escaped begin bytes that never
	// opened anything.
	SkippedBytes uint64
}

// Scanner is a resumable frame scanner for streams that arrive in chunks.
// It keeps the scan state between Feed calls, so frames, escape sequences
// and partial payloads may be split across chunk boundaries at any byte.
//
// Feeding any split of a stream produces the same emissions and counters as
// feeding the concatenation in one call. Unlike repeated Deserialize calls
// there is no re-feeding and no resume-offset approximation: a partial frame
// simply continues with the next chunk.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	fs    frameScanner
	buf   []byte
	stats ScanStats
}

// NewScanner returns a Scanner for the given framing. The error wraps
// ErrBadParams when info fails Validate.
func NewScanner(info MessageInfo) (*Scanner, error) {
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	buf := make([]byte, info.Size)
	return &Scanner{fs: newFrameScanner(info, buf), buf: buf}, nil
}

// Feed consumes one chunk. For every frame that completes, emit is called
// with a fresh copy of the payload; a nil emit discards decoded messages but
// still counts them. Malformed frames are counted and scanning continues.
//
// Feed returns the number of bytes consumed. It stops early only when emit
// returns an error, which is returned as-is; the unconsumed tail p[n:] can
// be fed again after the caller recovers.
func (s *Scanner) Feed(p []byte, emit func(msg []byte) error) (n int, err error) {
	for i, b := range p {
		outside := !s.fs.inFrame()
		r := s.fs.step(b)
		s.stats.BytesFed++

		switch r {
		case stepMessage:
			s.stats.Messages++
			if emit != nil {
				if err := emit(append([]byte(nil), s.buf...)); err != nil {
					return i + 1, err
				}
			}
		case stepTooShort:
			s.stats.TooShort++
		case stepTooLong:
			s.stats.TooLong++
		case stepNone:
			if outside && !s.fs.inFrame() {
				s.stats.SkippedBytes++
			}
		}
	}
	return len(p), nil
}

// Pending reports whether a frame is currently open, meaning the stream
// ended mid-frame if no more bytes arrive.
func (s *Scanner) Pending() bool {
	return s.fs.inFrame()
}

// Stats returns the counters accumulated since construction or the last
// Reset.
func (s *Scanner) Stats() ScanStats {
	return s.stats
}

// Reset drops any partial frame and clears the counters.
func (s *Scanner) Reset() {
	s.fs.reset()
	s.stats = ScanStats{}
}
