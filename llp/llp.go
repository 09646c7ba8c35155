package llp

import "fmt"

// MessageInfo describes the framing agreed between both ends of a link: the
// fixed payload size and the three control bytes. It is a plain value and is
// safe to copy.
//
// The zero value is not usable; both ends must agree on the same non-zero
// configuration out of band.
type MessageInfo struct {
	// Size is the exact payload length in bytes of every message.
	Size int

	// BeginByte marks the start of a frame, EndByte its end. RejectByte is
	// the escape prefix for payload bytes that collide with any control
	// byte, including the reject byte itself.
	BeginByte  byte
	EndByte    byte
	RejectByte byte
}

// Validate reports whether the configuration is usable for decoding: the
// payload size must be at least one byte and the three control bytes must be
// pairwise distinct. With duplicated control bytes the scan is ambiguous and
// decoders refuse to run.
func (mi MessageInfo) Validate() error {
	if mi.Size < 1 {
		return fmt.Errorf("message size must be at least 1, got %d", mi.Size)
	}
	if mi.BeginByte == mi.EndByte {
		return fmt.Errorf("begin and end bytes are both 0x%02X", mi.BeginByte)
	}
	if mi.BeginByte == mi.RejectByte {
		return fmt.Errorf("begin and reject bytes are both 0x%02X", mi.BeginByte)
	}
	if mi.EndByte == mi.RejectByte {
		return fmt.Errorf("end and reject bytes are both 0x%02X", mi.EndByte)
	}
	return nil
}

// isControl reports whether b is one of the three control bytes.
func (mi MessageInfo) isControl(b byte) bool {
	return b == mi.BeginByte || b == mi.EndByte || b == mi.RejectByte
}
