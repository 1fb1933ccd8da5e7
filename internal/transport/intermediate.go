package transport

import (
	"encoding/binary"

	"dev.c0redev.mtpwire/internal/bytebuf"
)

// Intermediate frames with a plain 4-byte little-endian length prefix.
// The scheme announces itself with a one-time tag before the first
// frame; no checksum, no sequence numbers.
type Intermediate struct {
	tagged bool
}

func NewIntermediate() *Intermediate { return &Intermediate{} }

// InitTag returns the intermediate marker and suppresses the copy the
// first Pack would otherwise emit.
func (t *Intermediate) InitTag() [4]byte {
	t.tagged = true
	return [4]byte{0xee, 0xee, 0xee, 0xee}
}

func (t *Intermediate) Pack(b *bytebuf.Deque) {
	checkPadding(b.Len())
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(b.Len()))
	b.ExtendFront(header[:])
	if !t.tagged {
		tag := t.InitTag()
		b.ExtendFront(tag[:])
	}
}

func (t *Intermediate) Unpack(data []byte) (Unpacked, error) {
	if len(data) < 4 {
		return Unpacked{}, ErrShortRead
	}
	length := int32(binary.LittleEndian.Uint32(data))
	if length < 0 {
		// Negative length is a transport-level status report, not a
		// framing bug.
		return Unpacked{}, &StatusError{Len: length}
	}
	end := 4 + int(length)
	if len(data) < end {
		return Unpacked{}, ErrShortRead
	}
	return Unpacked{DataStart: 4, DataEnd: end, NextOffset: end}, nil
}
