//go:build !linux

package serial

import (
	"fmt"
	"os"
)

func Open(path string, baud int) (*os.File, error) {
	return nil, fmt.Errorf("serial ports not supported on this platform")
}
