package llp

// Deserialize scans one window of a byte stream for a single frame and, on
// success, stores the decoded payload in out[:info.Size].
//
// The returned remainder is a resume offset into stream: bytes before it
// have been consumed, bytes from it onward should be presented again
// (prepended to the next window). Its value depends on the outcome:
//
//   - nil error: offset just past the end byte, or 0 when the end byte was
//     the last byte of the window (nothing left to re-present);
//   - ErrMessageTooShort: offset just past the premature end byte;
//   - ErrMessageTooLong: offset of the unexpected byte itself, so it is
//     scanned again as the possible start of the next frame;
//   - ErrNotEnoughBytes: len(stream) minus the stored payload bytes minus
//     the begin byte. For a partial frame without escape sequences this is
//     exactly where the frame starts; escapes make it an over-estimate, so
//     streaming callers should prefer Scanner, which carries its state
//     across windows instead of re-feeding;
//   - ErrNoMessage: len(stream), the whole window was noise;
//   - ErrBadParams: 0, nothing was consumed.
//
// ErrBadParams covers a nil stream, an out buffer shorter than info.Size,
// and an info that fails Validate. An empty non-nil window is ErrNoMessage.
// On any non-nil error out may hold partial payload bytes; only a nil error
// makes out[:info.Size] meaningful.
func Deserialize(info MessageInfo, stream []byte, out []byte) (remainder int, err error) {
	if stream == nil || info.Validate() != nil || len(out) < info.Size {
		return 0, ErrBadParams
	}

	fs := newFrameScanner(info, out)
	for i, b := range stream {
		switch fs.step(b) {
		case stepMessage:
			if i == len(stream)-1 {
				return 0, nil
			}
			return i + 1, nil
		case stepTooShort:
			return i + 1, ErrMessageTooShort
		case stepTooLong:
			return i, ErrMessageTooLong
		}
	}

	if fs.inFrame() {
		return len(stream) - fs.iter - 1, ErrNotEnoughBytes
	}
	return len(stream), ErrNoMessage
}
