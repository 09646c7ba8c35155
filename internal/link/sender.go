package link

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/NazarLozynskyi/ll-protocol/internal/serial"
	"github.com/NazarLozynskyi/ll-protocol/llp"
)

// Target is a byte-stream destination for framed messages.
type Target struct {
	Kind   string // "tcp", "udp", "serial" or "stdout"
	Addr   string
	Device string
	Baud   int

	DialTimeout time.Duration
}

// Sender frames each message and writes it to a target. Over UDP every
// frame becomes its own datagram.
type Sender struct {
	target Target
	conn   io.WriteCloser
	w      *llp.Writer
}

type dialFunc func(t Target) (io.WriteCloser, error)

func NewSender(t Target, info llp.MessageInfo) (*Sender, error) {
	return newSender(t, info, dialTarget)
}

func newSender(t Target, info llp.MessageInfo, dial dialFunc) (*Sender, error) {
	switch t.Kind {
	case "tcp", "udp":
		if t.Addr == "" {
			return nil, fmt.Errorf("target addr is required for kind %q", t.Kind)
		}
	case "serial":
		if t.Device == "" {
			return nil, fmt.Errorf("target device is required for kind 'serial'")
		}
	case "stdout":
	default:
		return nil, fmt.Errorf("unknown target kind %q", t.Kind)
	}

	conn, err := dial(t)
	if err != nil {
		return nil, fmt.Errorf("open target: %w", err)
	}
	w, err := llp.NewWriter(conn, info)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Sender{target: t, conn: conn, w: w}, nil
}

func (s *Sender) Send(msg []byte) error {
	return s.w.WriteMessage(msg)
}

func (s *Sender) Stats() llp.WriteStats {
	return s.w.Stats()
}

func (s *Sender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func dialTarget(t Target) (io.WriteCloser, error) {
	switch t.Kind {
	case "tcp":
		d := &net.Dialer{Timeout: t.DialTimeout}
		return d.Dial("tcp", t.Addr)
	case "udp":
		addr, err := net.ResolveUDPAddr("udp", t.Addr)
		if err != nil {
			return nil, fmt.Errorf("resolve dest: %w", err)
		}
		// DialUDP selects a suitable local address automatically.
		return net.DialUDP("udp", nil, addr)
	case "serial":
		return serial.Open(t.Device, t.Baud)
	default:
		return nopCloseWriter{os.Stdout}, nil
	}
}

// nopCloseWriter keeps Close from reaching os.Stdout.
type nopCloseWriter struct {
	io.Writer
}

func (nopCloseWriter) Close() error { return nil }
