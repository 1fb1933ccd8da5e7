// Package transport implements the MTProto transport framings:
// Abridged, Intermediate, Full and the Obfuscated wrapper.
//
// A transport turns the raw byte stream exchanged with a server into
// discrete messages. The caller owns one buffer per direction: to send,
// it appends a serialized message to a Deque and calls Pack; to
// receive, it appends bytes read from the socket and calls Unpack until
// ErrShortRead, dropping each reported NextOffset prefix in between.
// Transports hold per-connection state (sequence counters, keystream
// position) and are not safe for concurrent use; one instance per
// connection, reused across calls.
package transport

import (
	"fmt"

	"dev.c0redev.mtpwire/internal/bytebuf"
)

// Unpacked locates one decoded message inside the receive buffer.
// DataStart..DataEnd is the payload; NextOffset is where the following
// frame begins. The caller must drop [0, NextOffset) before the next
// Unpack call.
type Unpacked struct {
	DataStart  int
	DataEnd    int
	NextOffset int
}

// Transport frames outgoing messages and locates incoming ones.
type Transport interface {
	// Pack frames the full buffer contents in place. Panics if the
	// buffer length is not a multiple of 4, since that means the caller
	// serialized a malformed payload.
	Pack(b *bytebuf.Deque)

	// Unpack inspects data starting at offset 0. It returns ErrShortRead
	// until a whole frame is buffered, a fatal error if the frame is
	// invalid, or the location of one decoded message. After a fatal
	// error the connection must be torn down.
	Unpack(data []byte) (Unpacked, error)
}

// Tagged is implemented by transports that identify their framing
// scheme with a 4-byte marker sent once at connection start.
type Tagged interface {
	// InitTag returns the scheme marker and arms the transport so the
	// tag is not emitted again. Call at most once per connection,
	// before any Pack or Unpack.
	InitTag() [4]byte
}

// TaggedTransport is what the Obfuscated wrapper accepts: it needs the
// inner tag to embed in its connection header.
type TaggedTransport interface {
	Transport
	Tagged
}

func checkPadding(n int) {
	if n%4 != 0 {
		panic(fmt.Sprintf("transport: payload length %d not padded to 4 bytes", n))
	}
}
