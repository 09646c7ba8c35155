// Package serial opens serial devices in raw mode for byte-oriented links.
package serial

// ValidBaud reports whether the rate is one the port setup supports.
func ValidBaud(baud int) bool {
	switch baud {
	case 4800, 9600, 19200, 38400, 57600, 115200, 230400:
		return true
	}
	return false
}
