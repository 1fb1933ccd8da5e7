// Package bytebuf: growable double-ended byte buffer the transports
// frame into.
package bytebuf

// headroom kept in front of the contents so header prepends rarely
// force a reallocation.
const headroom = 16

// Deque is a contiguous byte buffer with spare room at both ends.
// Transports prepend framing headers at the front without moving the
// payload; callers drop consumed prefixes in O(1).
type Deque struct {
	buf  []byte
	head int
	tail int
}

// New returns a Deque with room for capacity bytes plus front headroom.
func New(capacity int) *Deque {
	if capacity < 0 {
		capacity = 0
	}
	return &Deque{buf: make([]byte, headroom+capacity), head: headroom, tail: headroom}
}

// Len is the number of bytes currently held.
func (d *Deque) Len() int { return d.tail - d.head }

// Bytes is a contiguous view of the full contents. Mutating it mutates
// the buffer; it is invalidated by the next Extend/ExtendFront/Skip.
func (d *Deque) Bytes() []byte { return d.buf[d.head:d.tail] }

// Extend appends p at the back.
func (d *Deque) Extend(p []byte) {
	if d.tail+len(p) > len(d.buf) {
		d.grow(0, len(p))
	}
	copy(d.buf[d.tail:], p)
	d.tail += len(p)
}

// ExtendFront prepends p; the payload is not moved while front headroom
// lasts.
func (d *Deque) ExtendFront(p []byte) {
	if len(p) > d.head {
		d.grow(len(p), 0)
	}
	copy(d.buf[d.head-len(p):], p)
	d.head -= len(p)
}

// Skip drops the first n bytes. Panics if n is out of range.
func (d *Deque) Skip(n int) {
	if n < 0 || n > d.Len() {
		panic("bytebuf: skip out of range")
	}
	d.head += n
	if d.head == d.tail {
		d.head, d.tail = headroom, headroom
	}
}

// Clear empties the buffer, keeping the backing storage.
func (d *Deque) Clear() {
	d.head, d.tail = headroom, headroom
}

func (d *Deque) grow(front, back int) {
	n := d.Len()
	need := headroom + front + n + back
	size := 2 * len(d.buf)
	if size < need {
		size = need
	}
	buf := make([]byte, size)
	head := headroom + front
	copy(buf[head:], d.buf[d.head:d.tail])
	d.buf = buf
	d.head = head
	d.tail = head + n
}
