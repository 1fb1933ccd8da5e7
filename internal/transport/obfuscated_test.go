package transport

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"testing"

	"dev.c0redev.mtpwire/internal/bytebuf"
)

func testInit() [64]byte {
	var init [64]byte
	for i := range init {
		init[i] = byte(i*17 + 5)
	}
	return init
}

// peerRecvStream is the cipher the remote peer uses to read our bytes:
// same key material the local send keystream was derived from.
func peerRecvStream(init [64]byte) cipher.Stream {
	return newCTR(init[8:40], init[40:56])
}

// peerSendStream mirrors the local receive keystream via byte reversal.
func peerSendStream(init [64]byte) cipher.Stream {
	var reversed [48]byte
	for i := range reversed {
		reversed[i] = init[55-i]
	}
	return newCTR(reversed[:32], reversed[32:48])
}

func TestObfuscatedFirstPackEmitsHeader(t *testing.T) {
	init := testInit()
	tr := newObfuscated(NewAbridged(), init)

	b := bytebuf.New(16)
	b.Extend([]byte{1, 2, 3, 4})
	tr.Pack(b)
	wire := append([]byte(nil), b.Bytes()...)
	if len(wire) != 64+1+4 {
		t.Fatalf("wire length: got %d, want 69", len(wire))
	}
	// key material travels in the clear, the tag does not
	if !bytes.Equal(wire[:56], init[:56]) {
		t.Fatal("header prefix should be the plaintext key material")
	}
	if bytes.Equal(wire[56:60], []byte{0xef, 0xef, 0xef, 0xef}) {
		t.Fatal("inner tag must not appear in the clear")
	}

	b.Clear()
	b.Extend([]byte{1, 2, 3, 4})
	tr.Pack(b)
	if b.Len() != 5 {
		t.Fatalf("second pack length: got %d, want 5", b.Len())
	}
}

func TestObfuscatedPeerRecoversStream(t *testing.T) {
	init := testInit()
	tr := newObfuscated(NewAbridged(), init)

	b := bytebuf.New(16)
	b.Extend([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	tr.Pack(b)
	wire := append([]byte(nil), b.Bytes()...)
	b.Clear()
	b.Extend([]byte{0x11, 0x22, 0x33, 0x44})
	tr.Pack(b)
	wire = append(wire, b.Bytes()...)

	plain := make([]byte, len(wire))
	peerRecvStream(init).XORKeyStream(plain, wire)
	if !bytes.Equal(plain[56:60], []byte{0xef, 0xef, 0xef, 0xef}) {
		t.Fatalf("recovered tag: % x", plain[56:60])
	}

	inner := NewAbridged()
	rest := plain[64:]
	off, err := inner.Unpack(rest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest[off.DataStart:off.DataEnd], []byte{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Fatalf("first frame: % x", rest[off.DataStart:off.DataEnd])
	}
	rest = rest[off.NextOffset:]
	off, err = inner.Unpack(rest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest[off.DataStart:off.DataEnd], []byte{0x11, 0x22, 0x33, 0x44}) {
		t.Fatalf("second frame: % x", rest[off.DataStart:off.DataEnd])
	}
}

func TestObfuscatedKeystreamNeverRepeats(t *testing.T) {
	tr := newObfuscated(NewAbridged(), testInit())

	pack := func() []byte {
		b := bytebuf.New(16)
		b.Extend([]byte{1, 2, 3, 4})
		tr.Pack(b)
		return append([]byte(nil), b.Bytes()...)
	}
	first := pack()[64:] // drop the connection header
	second := pack()
	if bytes.Equal(first, second) {
		t.Fatal("identical plaintext produced identical ciphertext")
	}
}

func TestObfuscatedUnpack(t *testing.T) {
	init := testInit()
	tr := newObfuscated(NewAbridged(), init)
	send := peerSendStream(init)

	frame := func(payload []byte) []byte {
		b := bytebuf.New(len(payload) + 4)
		b.Extend(payload)
		NewAbridged().Pack(b)
		ct := make([]byte, b.Len())
		send.XORKeyStream(ct, b.Bytes())
		return ct
	}

	recv := bytebuf.New(64)
	recv.Extend(frame([]byte{0xAA, 0xBB, 0xCC, 0xDD}))
	recv.Extend(frame([]byte{0x11, 0x22, 0x33, 0x44}))

	off, err := tr.Unpack(recv.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(recv.Bytes()[off.DataStart:off.DataEnd], []byte{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Fatalf("first payload: % x", recv.Bytes()[off.DataStart:off.DataEnd])
	}
	recv.Skip(off.NextOffset)

	off, err = tr.Unpack(recv.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(recv.Bytes()[off.DataStart:off.DataEnd], []byte{0x11, 0x22, 0x33, 0x44}) {
		t.Fatalf("second payload: % x", recv.Bytes()[off.DataStart:off.DataEnd])
	}
}

func TestObfuscatedUnpackShortReadRetry(t *testing.T) {
	init := testInit()
	tr := newObfuscated(NewIntermediate(), init)
	send := peerSendStream(init)

	b := bytebuf.New(16)
	b.Extend([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	serverSide := NewIntermediate()
	serverSide.InitTag() // server frames carry no tag
	serverSide.Pack(b)
	ct := make([]byte, b.Len())
	send.XORKeyStream(ct, b.Bytes())

	recv := bytebuf.New(16)
	recv.Extend(ct[:3])
	if _, err := tr.Unpack(recv.Bytes()); err != ErrShortRead {
		t.Fatalf("partial frame: got %v, want ErrShortRead", err)
	}
	recv.Extend(ct[3:6])
	if _, err := tr.Unpack(recv.Bytes()); err != ErrShortRead {
		t.Fatalf("partial frame: got %v, want ErrShortRead", err)
	}
	recv.Extend(ct[6:])
	off, err := tr.Unpack(recv.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(recv.Bytes()[off.DataStart:off.DataEnd], []byte{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Fatalf("payload after retries: % x", recv.Bytes()[off.DataStart:off.DataEnd])
	}
}

func TestAcceptableInit(t *testing.T) {
	good := testInit()
	good[0] = 0x01
	if !acceptableInit(&good) {
		t.Fatal("expected acceptance")
	}

	bad := good
	bad[0] = 0xef
	if acceptableInit(&bad) {
		t.Fatal("abridged marker byte must be rejected")
	}

	bad = good
	copy(bad[:4], "HEAD")
	if acceptableInit(&bad) {
		t.Fatal("HTTP verb prefix must be rejected")
	}

	bad = good
	copy(bad[:4], []byte{0xee, 0xee, 0xee, 0xee})
	if acceptableInit(&bad) {
		t.Fatal("intermediate tag must be rejected")
	}

	bad = good
	binary.LittleEndian.PutUint32(bad[4:8], 0)
	if acceptableInit(&bad) {
		t.Fatal("zero second word must be rejected")
	}
}

func TestNewObfuscatedGeneratesValidHeader(t *testing.T) {
	tr, err := NewObfuscated(NewAbridged())
	if err != nil {
		t.Fatal(err)
	}
	var sent [64]byte
	copy(sent[:], tr.header[:])
	if sent[0] == 0xef {
		t.Fatal("header starts with a reserved byte")
	}
	if binary.LittleEndian.Uint32(sent[4:8]) == 0 {
		t.Fatal("header second word is zero")
	}
}
