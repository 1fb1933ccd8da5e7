package transport

import "dev.c0redev.mtpwire/internal/bytebuf"

// Abridged is the lowest-overhead framing: a 1- or 4-byte length header
// and nothing else. No checksum, no sequence numbers; it trusts the
// stream for integrity and ordering.
type Abridged struct{}

func NewAbridged() *Abridged { return &Abridged{} }

// InitTag returns the abridged marker used inside the obfuscated
// header. The plain wire format carries no tag.
func (*Abridged) InitTag() [4]byte {
	return [4]byte{0xef, 0xef, 0xef, 0xef}
}

func (*Abridged) Pack(b *bytebuf.Deque) {
	checkPadding(b.Len())
	words := b.Len() / 4
	if words < 127 {
		b.ExtendFront([]byte{byte(words)})
		return
	}
	b.ExtendFront([]byte{0x7f, byte(words), byte(words >> 8), byte(words >> 16)})
}

func (*Abridged) Unpack(data []byte) (Unpacked, error) {
	if len(data) < 1 {
		return Unpacked{}, ErrShortRead
	}
	header := 1
	length := int(data[0])
	if length >= 0x7f {
		if len(data) < 4 {
			return Unpacked{}, ErrShortRead
		}
		header = 4
		length = int(data[1]) | int(data[2])<<8 | int(data[3])<<16
	}
	length *= 4
	if len(data) < header+length {
		return Unpacked{}, ErrShortRead
	}
	return Unpacked{
		DataStart:  header,
		DataEnd:    header + length,
		NextOffset: header + length,
	}, nil
}
