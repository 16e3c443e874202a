package wire

import (
	"io"

	"github.com/cockroachdb/errors"
)

// growAlign keeps reallocated capacities on cache-line multiples.
const growAlign = 64

// Buffer is a sequential, position-tracked, growable byte region used both
// for encoding and decoding.
//
// The valid region is everything written so far; the write cursor is its
// end. The read cursor is independent, so one Buffer can be filled and then
// drained (duplex use). The zero value is an empty buffer ready to use, which
// lets hot paths keep a Buffer on the stack:
//
//	var scratch [256]byte
//	var b wire.Buffer
//	b.Init(scratch[:0])
//
// A Buffer must not be shared between goroutines.
type Buffer struct {
	b []byte // valid region; len(b) is the write cursor
	r int    // read cursor, 0 <= r <= len(b)
}

var (
	_ io.Writer     = (*Buffer)(nil)
	_ io.ByteWriter = (*Buffer)(nil)
	_ io.WriterTo   = (*Buffer)(nil)
)

// NewBuffer creates an owned, empty Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{b: make([]byte, 0, capacity)}
}

// Wrap creates a Buffer for reading an externally owned byte range without
// copying it. Writes to the returned Buffer never modify bytes beyond len(p):
// the capacity is clipped so the first append reallocates.
func Wrap(p []byte) *Buffer {
	b := &Buffer{}
	b.Load(p)
	return b
}

// Init resets b to an empty buffer that writes into scratch's capacity
// before growing. scratch may be a stack array slice.
func (b *Buffer) Init(scratch []byte) {
	b.b = scratch[:0]
	b.r = 0
}

// Load resets b to read p in place. See Wrap.
func (b *Buffer) Load(p []byte) {
	b.b = p[:len(p):len(p)]
	b.r = 0
}

// Reset empties the buffer while keeping its capacity.
func (b *Buffer) Reset() {
	b.b = b.b[:0]
	b.r = 0
}

// Len returns the size of the valid region.
func (b *Buffer) Len() int { return len(b.b) }

// Cap returns the capacity of the backing region.
func (b *Buffer) Cap() int { return cap(b.b) }

// Remaining returns the number of unread bytes. Callers use it to detect
// truncated input before attempting further reads.
func (b *Buffer) Remaining() int { return len(b.b) - b.r }

// Bytes returns the whole valid region. The slice aliases the buffer and is
// only valid until the next write or Reset.
func (b *Buffer) Bytes() []byte { return b.b }

// Unread returns the unread part of the valid region, aliasing the buffer.
func (b *Buffer) Unread() []byte { return b.b[b.r:] }

// Pos returns the read cursor.
func (b *Buffer) Pos() int { return b.r }

// SetPos moves the read cursor, typically back to a position saved with Pos.
func (b *Buffer) SetPos(pos int) error {
	if pos < 0 || pos > len(b.b) {
		return errors.Wrapf(ErrInvalidSeek, "position %d outside [0, %d]", pos, len(b.b))
	}
	b.r = pos
	return nil
}

// Truncate discards all but the first n bytes of the valid region.
// The read cursor is pulled back if it pointed past the new end.
// It panics if n is negative or greater than Len.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.b) {
		panic("wire: truncation out of range")
	}
	b.b = b.b[:n]
	if b.r > n {
		b.r = n
	}
}

// Grow guarantees space for another n bytes without reallocation.
// It panics if n is negative.
func (b *Buffer) Grow(n int) {
	if n < 0 {
		panic("wire: negative count")
	}
	b.grow(n)
}

// grow reallocates to at least twice the prior capacity when n more bytes
// do not fit. Existing bytes and both cursors are preserved.
func (b *Buffer) grow(n int) {
	if cap(b.b)-len(b.b) >= n {
		return
	}
	c := 2 * cap(b.b)
	if need := len(b.b) + n; c < need {
		c = need
	}
	nb := make([]byte, len(b.b), Roundup(c, growAlign))
	copy(nb, b.b)
	b.b = nb
}

// WriteTo implements io.WriterTo. It writes the unread region to w and
// advances the read cursor by the amount written.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	if b.r >= len(b.b) {
		return 0, nil
	}
	n, err := w.Write(b.b[b.r:])
	if n < 0 || n > len(b.b)-b.r {
		return 0, ErrInvalidWrite
	}
	b.r += n
	if err == nil && b.r < len(b.b) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}
