package llp

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestNewWriter_RejectsInvalidInfo(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, MessageInfo{Size: 0, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xCC})
	if !errors.Is(err, ErrBadParams) {
		t.Fatalf("error=%v want %v", err, ErrBadParams)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	msgs := [][]byte{
		{0x01, 0x02, 0x03, 0x04},
		{0xAA, 0xBB, 0xCC, 0x00},
		{0xCC, 0xCC, 0xCC, 0xCC},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, testInfo4)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	for _, msg := range msgs {
		if err := w.WriteMessage(msg); err != nil {
			t.Fatalf("WriteMessage(% X) error: %v", msg, err)
		}
	}

	d, err := NewDecoder(&buf, testInfo4)
	if err != nil {
		t.Fatalf("NewDecoder() error: %v", err)
	}
	for _, msg := range msgs {
		wantBytes(t, nextOK(t, d), msg)
	}
	nextErr(t, d, io.EOF)
}

func TestWriter_RejectsWrongSize(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, testInfo4)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.WriteMessage([]byte{0x01, 0x02}); !errors.Is(err, ErrBadParams) {
		t.Fatalf("short msg: error=%v want %v", err, ErrBadParams)
	}
	if err := w.WriteMessage(nil); !errors.Is(err, ErrBadParams) {
		t.Fatalf("nil msg: error=%v want %v", err, ErrBadParams)
	}
	if got := w.Stats(); got != (WriteStats{}) {
		t.Fatalf("stats=%+v want zero after rejected writes", got)
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestWriter_ShortWrite(t *testing.T) {
	w, err := NewWriter(shortWriter{}, testInfo4)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.WriteMessage([]byte{0x01, 0x02, 0x03, 0x04}); err != io.ErrShortWrite {
		t.Fatalf("error=%v want %v", err, io.ErrShortWrite)
	}
}

type errWriter struct{ err error }

func (w errWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriter_WriteErrorWrapped(t *testing.T) {
	boom := errors.New("pipe closed")
	w, err := NewWriter(errWriter{err: boom}, testInfo4)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.WriteMessage([]byte{0x01, 0x02, 0x03, 0x04}); !errors.Is(err, boom) {
		t.Fatalf("error=%v want wrapped %v", err, boom)
	}
}

func TestWriter_Stats(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testInfo4)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}

	plain := []byte{0x01, 0x02, 0x03, 0x04} // 6-byte frame
	heavy := []byte{0xCC, 0xCC, 0xCC, 0xCC} // 10-byte frame
	for _, msg := range [][]byte{plain, heavy} {
		if err := w.WriteMessage(msg); err != nil {
			t.Fatalf("WriteMessage() error: %v", err)
		}
	}

	want := WriteStats{Messages: 2, FrameBytes: 16}
	if w.Stats() != want {
		t.Fatalf("stats=%+v want %+v", w.Stats(), want)
	}
	if buf.Len() != 16 {
		t.Fatalf("buffered=%d want 16", buf.Len())
	}
}
