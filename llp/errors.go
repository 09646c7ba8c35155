package llp

import "errors"

// Scan outcomes. Deserialize returns nil on a decoded message and exactly one
// of these otherwise; Scanner and Decoder surface the same values for the
// same stream shapes. Compare with errors.Is.
var (
	// ErrBadParams means the call itself was unusable: nil stream, output
	// buffer smaller than the message size, or a MessageInfo that fails
	// Validate.
	ErrBadParams = errors.New("llp: bad params")

	// ErrNoMessage means the window contained no frame start at all.
	ErrNoMessage = errors.New("llp: no message")

	// ErrNotEnoughBytes means a frame started but the window ended before
	// its end byte arrived.
	ErrNotEnoughBytes = errors.New("llp: not enough bytes")

	// ErrMessageTooShort means an unescaped end byte arrived before the full
	// payload was collected.
	ErrMessageTooShort = errors.New("llp: message too short")

	// ErrMessageTooLong means the byte after a full payload was not the end
	// byte.
	ErrMessageTooLong = errors.New("llp: message too long")
)
