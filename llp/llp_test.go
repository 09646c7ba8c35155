package llp

import "testing"

// Framing used across the tests: 16-byte messages with begin 0xAA, end 0xBB,
// reject 0xCC, plus a 4-byte variant that keeps malformed-stream vectors
// short.
var (
	testInfo16 = MessageInfo{Size: 16, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xCC}
	testInfo4  = MessageInfo{Size: 4, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xCC}
)

func wantBytes(t *testing.T, got, want []byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("unexpected len: got %d want %d (got=% X)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte[%d] mismatch: got 0x%02X want 0x%02X (got=% X)", i, got[i], want[i], got)
		}
	}
}

func TestMessageInfoValidate(t *testing.T) {
	cases := []struct {
		name    string
		info    MessageInfo
		wantErr bool
	}{
		{name: "OK", info: testInfo16},
		{name: "ZeroSize", info: MessageInfo{Size: 0, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xCC}, wantErr: true},
		{name: "NegativeSize", info: MessageInfo{Size: -1, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xCC}, wantErr: true},
		{name: "BeginEqualsEnd", info: MessageInfo{Size: 4, BeginByte: 0xAA, EndByte: 0xAA, RejectByte: 0xCC}, wantErr: true},
		{name: "BeginEqualsReject", info: MessageInfo{Size: 4, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xAA}, wantErr: true},
		{name: "EndEqualsReject", info: MessageInfo{Size: 4, BeginByte: 0xAA, EndByte: 0xBB, RejectByte: 0xBB}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.info.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
		})
	}
}
