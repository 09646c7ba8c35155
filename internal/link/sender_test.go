package link

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/NazarLozynskyi/ll-protocol/llp"
)

type fakeConn struct {
	writes    [][]byte
	writeErr  error
	closed    bool
	writeHits int
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writeHits++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	cp := append([]byte(nil), p...)
	c.writes = append(c.writes, cp)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func fakeDial(fc *fakeConn) dialFunc {
	return func(Target) (io.WriteCloser, error) { return fc, nil }
}

func TestNewSender_Validation(t *testing.T) {
	cases := []struct {
		name   string
		target Target
	}{
		{"UnknownKind", Target{Kind: "smoke-signals"}},
		{"TCPNoAddr", Target{Kind: "tcp"}},
		{"UDPNoAddr", Target{Kind: "udp"}},
		{"SerialNoDevice", Target{Kind: "serial"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := newSender(tc.target, testInfo, fakeDial(&fakeConn{})); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewSender_DialFailure(t *testing.T) {
	dialErr := errors.New("nope")
	dial := func(Target) (io.WriteCloser, error) { return nil, dialErr }

	_, err := newSender(Target{Kind: "tcp", Addr: "127.0.0.1:4000"}, testInfo, dial)
	if !errors.Is(err, dialErr) {
		t.Fatalf("err=%v want %v", err, dialErr)
	}
}

func TestSender_SendWritesOneFramePerMessage(t *testing.T) {
	fc := &fakeConn{}
	s, err := newSender(Target{Kind: "udp", Addr: "127.0.0.1:4000"}, testInfo, fakeDial(fc))
	if err != nil {
		t.Fatalf("newSender: %v", err)
	}
	defer s.Close()

	msg := []byte{0x01, 0xBB, 0x02, 0x03}
	if err := s.Send(msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if fc.writeHits != 1 {
		t.Fatalf("expected 1 write, got %d", fc.writeHits)
	}
	want := llp.Serialize(testInfo, msg)
	if !bytes.Equal(fc.writes[0], want) {
		t.Fatalf("write=% X want % X", fc.writes[0], want)
	}

	stats := s.Stats()
	if stats.Messages != 1 || stats.FrameBytes != uint64(len(want)) {
		t.Fatalf("stats=%+v want 1 message, %d frame bytes", stats, len(want))
	}
}

func TestSender_RejectsWrongSize(t *testing.T) {
	fc := &fakeConn{}
	s, err := newSender(Target{Kind: "stdout"}, testInfo, fakeDial(fc))
	if err != nil {
		t.Fatalf("newSender: %v", err)
	}

	if err := s.Send([]byte{0x01}); !errors.Is(err, llp.ErrBadParams) {
		t.Fatalf("err=%v want %v", err, llp.ErrBadParams)
	}
	if fc.writeHits != 0 {
		t.Fatalf("expected no writes, got %d", fc.writeHits)
	}
}

func TestSender_PropagatesWriteError(t *testing.T) {
	wantErr := errors.New("boom")
	fc := &fakeConn{writeErr: wantErr}
	s, err := newSender(Target{Kind: "tcp", Addr: "127.0.0.1:4000"}, testInfo, fakeDial(fc))
	if err != nil {
		t.Fatalf("newSender: %v", err)
	}

	if err := s.Send([]byte{0x01, 0x02, 0x03, 0x04}); !errors.Is(err, wantErr) {
		t.Fatalf("err=%v want %v", err, wantErr)
	}
}

func TestSender_CloseClosesConn(t *testing.T) {
	fc := &fakeConn{}
	s, err := newSender(Target{Kind: "tcp", Addr: "127.0.0.1:4000"}, testInfo, fakeDial(fc))
	if err != nil {
		t.Fatalf("newSender: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fc.closed {
		t.Fatalf("conn not closed")
	}

	var nilSender *Sender
	if err := nilSender.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
