// Package llp implements a low-level framing protocol for fixed-size binary
// messages sent over raw byte streams such as serial links.
//
// A frame is the message payload wrapped in a begin byte and an end byte,
// with every payload byte that collides with one of the control bytes
// prefixed by the reject byte:
//
//	begin [escaped payload] end
//
// Both sides agree on the message size and the three control bytes out of
// band (see MessageInfo). The format carries no length field and no
// checksum; it only locates message boundaries in a stream that may contain
// noise, partial frames, and back-to-back frames.
//
// Serialize and Deserialize are the stateless core: Deserialize scans one
// window of the stream and reports what it found together with a resume
// offset. Scanner, Decoder and Writer build streaming use on top of the same
// state machine, so the stateless and stateful paths classify any byte
// sequence identically.
package llp
