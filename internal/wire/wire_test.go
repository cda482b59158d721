package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, payload := range [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0xAB}, 1<<16),
	} {
		got, err := Decode(Encode(payload))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
		}
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	valid := Encode([]byte("payload"))

	cases := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"short", valid[:4]},
		{"bad magic", append([]byte("XXXX"), valid[4:]...)},
		{"bad version", func() []byte {
			b := append([]byte(nil), valid...)
			b[4] = 99
			return b
		}()},
		{"truncated payload", valid[:len(valid)-2]},
		{"trailing bytes", append(append([]byte(nil), valid...), 0x00)},
		{"foreign bytes", []byte("not a frame at all")},
	}

	for _, tc := range cases {
		if _, err := Decode(tc.b); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: Decode err = %v, want ErrCorrupt", tc.name, err)
		}
	}
}
