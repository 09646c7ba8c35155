package llp

// scanState is the position of the frame scan. Decoders in this protocol
// family often track the same information as a pair of booleans whose
// combinations partly overlap; a single enumeration keeps the impossible
// combinations unrepresentable.
type scanState uint8

const (
	// stateSeek: outside any frame, previous byte was not a reject byte.
	stateSeek scanState = iota

	// stateSeekReject: outside any frame, previous byte was a reject byte.
	// A begin byte here is escaped noise and does not open a frame.
	stateSeekReject

	// stateData: inside a frame, the next byte is interpreted normally.
	stateData

	// stateEscape: a reject byte was consumed, the next byte is stored
	// verbatim whatever its value.
	stateEscape

	// stateEscapedReject: the byte just stored was a self-escaped reject
	// byte. Begin and end bytes here are dropped as leftover escape noise;
	// the condition holds until a data or reject byte arrives.
	stateEscapedReject

	// stateAwaitEnd: the payload is complete, only the end byte may follow.
	stateAwaitEnd
)

// stepResult is what one consumed byte produced.
type stepResult uint8

const (
	stepNone stepResult = iota

	// stepMessage: a full frame closed, the payload buffer is valid until
	// the next step call.
	stepMessage

	// stepTooShort: an unescaped end byte arrived before the payload was
	// complete.
	stepTooShort

	// stepTooLong: the byte after a complete payload was not the end byte.
	stepTooLong
)

// frameScanner is the scan state machine shared by Deserialize, Scanner and
// Decoder, so the stateless and streaming paths cannot drift apart. out must
// hold at least info.Size bytes; out[:info.Size] is meaningful only right
// after step returns stepMessage.
type frameScanner struct {
	info  MessageInfo
	out   []byte
	state scanState
	iter  int
}

func newFrameScanner(info MessageInfo, out []byte) frameScanner {
	return frameScanner{info: info, out: out}
}

func (s *frameScanner) reset() {
	s.state = stateSeek
	s.iter = 0
}

// inFrame reports whether a frame is open. A window that ends here is a
// not-enough-bytes outcome rather than no-message.
func (s *frameScanner) inFrame() bool {
	return s.state != stateSeek && s.state != stateSeekReject
}

// step consumes one stream byte. On a terminal result the machine has
// already restarted: after stepMessage and stepTooShort it is seeking past
// the end byte, and on stepTooLong it has re-examined the offending byte as
// the start of a fresh scan. That matches a caller that re-feeds the window
// from the reported resume offset.
func (s *frameScanner) step(b byte) stepResult {
	mi := s.info
	switch s.state {
	case stateSeek:
		switch b {
		case mi.BeginByte:
			s.state = stateData
			s.iter = 0
		case mi.RejectByte:
			s.state = stateSeekReject
		}
		return stepNone

	case stateSeekReject:
		if b != mi.RejectByte {
			// A begin byte lands back in seek without opening: it was
			// escaped by the preceding reject byte.
			s.state = stateSeek
		}
		return stepNone

	case stateData:
		switch b {
		case mi.EndByte:
			s.reset()
			return stepTooShort
		case mi.RejectByte:
			s.state = stateEscape
			return stepNone
		case mi.BeginByte:
			// Stray begin byte inside an open frame is dropped without
			// touching the payload.
			return stepNone
		default:
			return s.store(b)
		}

	case stateEscape:
		r := s.store(b)
		if b == mi.RejectByte && s.state == stateData {
			s.state = stateEscapedReject
		}
		return r

	case stateEscapedReject:
		switch b {
		case mi.RejectByte:
			s.state = stateEscape
			return stepNone
		case mi.BeginByte, mi.EndByte:
			return stepNone
		default:
			return s.store(b)
		}

	case stateAwaitEnd:
		if b == mi.EndByte {
			s.reset()
			return stepMessage
		}
		s.reset()
		s.step(b)
		return stepTooLong
	}
	return stepNone
}

// store appends one payload byte. Callers guarantee iter < info.Size.
func (s *frameScanner) store(b byte) stepResult {
	s.out[s.iter] = b
	s.iter++
	if s.iter == s.info.Size {
		s.state = stateAwaitEnd
	} else {
		s.state = stateData
	}
	return stepNone
}
