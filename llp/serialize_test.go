package llp

import (
	"bytes"
	"testing"
)

func TestSerialize_PlainPayload(t *testing.T) {
	msg := []byte{
		0xF3, 0x77, 0x56, 0xC4, 0x95, 0x94, 0x76, 0x8B,
		0x12, 0x88, 0x34, 0xDD, 0x44, 0x77, 0x51, 0x31,
	}
	want := append(append([]byte{0xAA}, msg...), 0xBB)

	got := Serialize(testInfo16, msg)
	wantBytes(t, got, want)
	if n := SerializedSize(testInfo16, msg); n != 18 {
		t.Fatalf("SerializedSize=%d want 18", n)
	}
}

func TestSerialize_EscapesEndByte(t *testing.T) {
	msg := []byte{
		0xF3, 0xBB, 0x56, 0xC4, 0x95, 0x94, 0x76, 0x8B,
		0x12, 0x88, 0x34, 0xDD, 0x44, 0x77, 0x51, 0x31,
	}
	want := []byte{
		0xAA,
		0xF3, 0xCC, 0xBB, 0x56, 0xC4, 0x95, 0x94, 0x76, 0x8B,
		0x12, 0x88, 0x34, 0xDD, 0x44, 0x77, 0x51, 0x31,
		0xBB,
	}
	wantBytes(t, Serialize(testInfo16, msg), want)
}

func TestSerialize_EscapesRejectByte(t *testing.T) {
	msg := []byte{
		0xF3, 0xCC, 0x56, 0xC4, 0x95, 0x94, 0x76, 0x8B,
		0x12, 0x88, 0x34, 0xDD, 0x44, 0x77, 0x51, 0x31,
	}
	want := []byte{
		0xAA,
		0xF3, 0xCC, 0xCC, 0x56, 0xC4, 0x95, 0x94, 0x76, 0x8B,
		0x12, 0x88, 0x34, 0xDD, 0x44, 0x77, 0x51, 0x31,
		0xBB,
	}
	wantBytes(t, Serialize(testInfo16, msg), want)
}

func TestSerialize_MixedControlBytes(t *testing.T) {
	msg := []byte{
		0xF3, 0xBB, 0xAA, 0xC4, 0x95, 0xCC, 0x76, 0x8B,
		0x12, 0xCC, 0x34, 0xDD, 0xAA, 0x77, 0x51, 0xBB,
	}
	want := []byte{
		0xAA,
		0xF3, 0xCC, 0xBB, 0xCC, 0xAA, 0xC4, 0x95, 0xCC, 0xCC,
		0x76, 0x8B, 0x12, 0xCC, 0xCC, 0x34, 0xDD, 0xCC, 0xAA,
		0x77, 0x51, 0xCC, 0xBB,
		0xBB,
	}
	got := Serialize(testInfo16, msg)
	wantBytes(t, got, want)
	if len(got) != 24 {
		t.Fatalf("frame len=%d want 24", len(got))
	}
}

// Payloads made entirely of one control byte hit the worst case: every byte
// escaped, frame length 2*size+2.
func TestSerialize_WorstCaseRedundancy(t *testing.T) {
	cases := []struct {
		name string
		fill byte
	}{
		{name: "AllReject", fill: 0xCC},
		{name: "AllBegin", fill: 0xAA},
		{name: "AllEnd", fill: 0xBB},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := bytes.Repeat([]byte{tc.fill}, 16)
			want := make([]byte, 0, 34)
			want = append(want, 0xAA)
			for range msg {
				want = append(want, 0xCC, tc.fill)
			}
			want = append(want, 0xBB)

			got := Serialize(testInfo16, msg)
			wantBytes(t, got, want)
			if len(got) != 2*testInfo16.Size+2 {
				t.Fatalf("frame len=%d want %d", len(got), 2*testInfo16.Size+2)
			}
		})
	}
}

func TestSerialize_NilAndWrongSizePayloads(t *testing.T) {
	cases := []struct {
		name string
		msg  []byte
	}{
		{name: "Nil", msg: nil},
		{name: "Short", msg: make([]byte, 15)},
		{name: "Long", msg: make([]byte, 17)},
		{name: "Empty", msg: []byte{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if n := SerializedSize(testInfo16, tc.msg); n != 0 {
				t.Fatalf("SerializedSize=%d want 0", n)
			}
			if got := Serialize(testInfo16, tc.msg); got != nil {
				t.Fatalf("Serialize=% X want nil", got)
			}
		})
	}
}

// Serialize must fill exactly the size SerializedSize reserves.
func TestSerialize_LengthMatchesSerializedSize(t *testing.T) {
	msgs := [][]byte{
		{0x01, 0x02, 0x03, 0x04},
		{0xAA, 0xBB, 0xCC, 0x00},
		{0xCC, 0xCC, 0xCC, 0xCC},
		{0xAA, 0xAA, 0xBB, 0xBB},
	}
	for _, msg := range msgs {
		got := Serialize(testInfo4, msg)
		if len(got) != SerializedSize(testInfo4, msg) {
			t.Fatalf("len=%d want %d for msg % X", len(got), SerializedSize(testInfo4, msg), msg)
		}
	}
}
