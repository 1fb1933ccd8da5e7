package transport

import (
	"encoding/binary"
	"hash/crc32"

	"dev.c0redev.mtpwire/internal/bytebuf"
)

// fullOverhead is length + sequence number + trailing checksum.
const fullOverhead = 12

// Full framing adds ordering and integrity checks on top of a length
// prefix: every frame carries a per-direction sequence number and a
// CRC32 trailer. There is no out-of-band tag; the first four bytes of
// the stream are a plausible total length rather than a reserved value.
type Full struct {
	sendSeq uint32
	recvSeq uint32
}

func NewFull() *Full { return &Full{} }

func (t *Full) Pack(b *bytebuf.Deque) {
	checkPadding(b.Len())
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(b.Len())+fullOverhead)
	binary.LittleEndian.PutUint32(header[4:8], t.sendSeq)
	b.ExtendFront(header[:])
	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc32.ChecksumIEEE(b.Bytes()))
	b.Extend(trailer[:])
	t.sendSeq++
}

func (t *Full) Unpack(data []byte) (Unpacked, error) {
	if len(data) < 4 {
		return Unpacked{}, ErrShortRead
	}
	length := int32(binary.LittleEndian.Uint32(data))
	if length < fullOverhead {
		return Unpacked{}, &BadLenError{Got: length}
	}
	end := int(length)
	if len(data) < end {
		return Unpacked{}, ErrShortRead
	}
	seq := binary.LittleEndian.Uint32(data[4:8])
	if seq != t.recvSeq {
		return Unpacked{}, &BadSeqError{Expected: t.recvSeq, Received: seq}
	}
	body := end - 4
	received := binary.LittleEndian.Uint32(data[body:end])
	computed := crc32.ChecksumIEEE(data[:body])
	if computed != received {
		return Unpacked{}, &BadCrcError{Computed: computed, Received: received}
	}
	t.recvSeq++
	return Unpacked{DataStart: 8, DataEnd: body, NextOffset: end}, nil
}
