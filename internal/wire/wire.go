package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("fetchcache: corrupt entry")
	magic4     = [...]byte{'F', 'C', 'H', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | vlen(u32 be) | payload(vlen)
//
// The frame exists so reads can tell a fetchcache entry from foreign or
// truncated bytes; anything that fails validation is treated as corruption
// and the caller deletes it.
func Encode(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func Decode(b []byte) (payload []byte, err error) {
	const hdr = 4 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}

	off := 5
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact-length check; trailing bytes are corruption
		return nil, ErrCorrupt
	}

	return b[off : off+vlen], nil
}
