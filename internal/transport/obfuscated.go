package transport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"dev.c0redev.mtpwire/internal/bytebuf"
)

// Stream prefixes the connection header must never start with: the
// plain transport tags plus plaintext protocols a middlebox could
// match against. Words are little-endian.
var reservedHeaderWords = [...]uint32{
	0x44414548, // HEAD
	0x54534f50, // POST
	0x20544547, // GET
	0x4954504f, // OPTI
	0x02010316, // TLS handshake
	0xdddddddd, // padded intermediate
	0xeeeeeeee, // intermediate
}

// Obfuscated wraps another transport and scrambles its frames with
// AES-256-CTR so the stream is indistinguishable from random bytes.
//
// The 64-byte connection header carries the key material: bytes 8..56
// seed the send keystream, their byte reversal seeds the receive
// keystream (each peer derives the other's send key by reversing its
// own, with no extra exchange), and bytes 56..60 hold the wrapped
// transport's tag so the peer knows which framing follows. On the wire
// the first 56 header bytes travel in the clear and the last 8
// enciphered.
type Obfuscated struct {
	inner TaggedTransport
	enc   cipher.Stream
	dec   cipher.Stream

	header     [64]byte
	headerSent bool

	// prefix of the receive buffer already run through dec; keeps
	// ErrShortRead retries from advancing the keystream twice over the
	// same bytes.
	deciphered int
}

// NewObfuscated wraps inner with fresh connection key material. The
// inner tag is consumed here, so inner must be a new instance that has
// not framed anything yet.
func NewObfuscated(inner TaggedTransport) (*Obfuscated, error) {
	var init [64]byte
	for {
		if _, err := io.ReadFull(rand.Reader, init[:]); err != nil {
			return nil, fmt.Errorf("obfuscated header: %w", err)
		}
		if acceptableInit(&init) {
			break
		}
	}
	return newObfuscated(inner, init), nil
}

// acceptableInit rejects header candidates a passive observer could
// tell apart from random traffic.
func acceptableInit(init *[64]byte) bool {
	if init[0] == 0xef { // plain abridged marker byte
		return false
	}
	first := binary.LittleEndian.Uint32(init[0:4])
	for _, w := range reservedHeaderWords {
		if first == w {
			return false
		}
	}
	return binary.LittleEndian.Uint32(init[4:8]) != 0
}

func newObfuscated(inner TaggedTransport, init [64]byte) *Obfuscated {
	tag := inner.InitTag()
	copy(init[56:60], tag[:])

	var reversed [48]byte
	for i := range reversed {
		reversed[i] = init[55-i]
	}
	enc := newCTR(init[8:40], init[40:56])
	dec := newCTR(reversed[:32], reversed[32:48])

	t := &Obfuscated{inner: inner, enc: enc, dec: dec}
	// The header is itself the start of the encrypted stream: encipher
	// all 64 bytes (advancing the send keystream), but the wire carries
	// the first 56 in the clear so the peer can recover the keys.
	var scrambled [64]byte
	enc.XORKeyStream(scrambled[:], init[:])
	copy(t.header[:56], init[:56])
	copy(t.header[56:], scrambled[56:])
	return t
}

func newCTR(key, iv []byte) cipher.Stream {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err) // key size is fixed at 32 bytes
	}
	return cipher.NewCTR(block, iv)
}

func (t *Obfuscated) Pack(b *bytebuf.Deque) {
	t.inner.Pack(b)
	t.enc.XORKeyStream(b.Bytes(), b.Bytes())
	if !t.headerSent {
		b.ExtendFront(t.header[:])
		t.headerSent = true
	}
}

func (t *Obfuscated) Unpack(data []byte) (Unpacked, error) {
	if t.deciphered < len(data) {
		t.dec.XORKeyStream(data[t.deciphered:], data[t.deciphered:])
		t.deciphered = len(data)
	}
	off, err := t.inner.Unpack(data)
	if err != nil {
		return Unpacked{}, err
	}
	// The caller drops the consumed prefix before calling again.
	t.deciphered -= off.NextOffset
	return off, nil
}
