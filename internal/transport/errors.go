package transport

import (
	"errors"
	"fmt"
)

// ErrShortRead signals that the buffer does not yet hold a whole frame.
// It is a control signal, not a failure: append more bytes from the
// socket and call Unpack again. Every other error this package returns
// is fatal for the connection.
var ErrShortRead = errors.New("transport: short read")

// BadLenError: the length field is too short or too long to describe a
// valid frame.
type BadLenError struct {
	Got int32
}

func (e *BadLenError) Error() string {
	return fmt.Sprintf("transport: bad frame length %d", e.Got)
}

// BadSeqError: a full-transport frame arrived out of order.
type BadSeqError struct {
	Expected uint32
	Received uint32
}

func (e *BadSeqError) Error() string {
	return fmt.Sprintf("transport: bad sequence number (expected %d, received %d)", e.Expected, e.Received)
}

// BadCrcError: the frame checksum does not match its contents.
type BadCrcError struct {
	Computed uint32
	Received uint32
}

func (e *BadCrcError) Error() string {
	return fmt.Sprintf("transport: bad checksum (computed %08x, received %08x)", e.Computed, e.Received)
}

// StatusError carries a server-reported negative length exactly as
// received. Its magnitude behaves like an HTTP status code: 404 means
// the server does not know the auth key id, 429 means too many
// connections from this address.
type StatusError struct {
	Len int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: status %d", -e.Len)
}

// Status is the positive status code (the magnitude of the raw length).
func (e *StatusError) Status() int32 { return -e.Len }
