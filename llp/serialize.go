package llp

// SerializedSize returns the exact frame length Serialize produces for msg:
// payload plus begin and end bytes plus one reject byte per payload byte
// that collides with a control byte. It returns 0 when msg is nil or not
// exactly info.Size bytes, the cases where Serialize produces nothing.
//
// The worst case is 2*info.Size+2 for a payload made entirely of control
// bytes.
func SerializedSize(info MessageInfo, msg []byte) int {
	if msg == nil || len(msg) != info.Size {
		return 0
	}
	n := len(msg) + 2
	for _, b := range msg {
		if info.isControl(b) {
			n++
		}
	}
	return n
}

// Serialize wraps msg into a frame: begin byte, payload with every control
// byte prefixed by the reject byte, end byte. The result is a fresh slice of
// exactly SerializedSize(info, msg) bytes, or nil when that size is 0.
//
// Serialize does not validate info; an ambiguous control-byte configuration
// still encodes deterministically, it only cannot be decoded.
func Serialize(info MessageInfo, msg []byte) []byte {
	n := SerializedSize(info, msg)
	if n == 0 {
		return nil
	}
	out := make([]byte, 0, n)
	out = append(out, info.BeginByte)
	for _, b := range msg {
		if info.isControl(b) {
			out = append(out, info.RejectByte)
		}
		out = append(out, b)
	}
	return append(out, info.EndByte)
}
