package wire

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Number is the set of fixed-width numeric kinds a Buffer reads and writes
// directly. int, uint and uintptr are left out on purpose: their width
// depends on the platform.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Write implements io.Writer. It appends p verbatim, without a length prefix.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.b = append(b.b, p...)
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	b.grow(1)
	b.b = append(b.b, c)
	return nil
}

// --- Primitive Write Operations ---

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteUint8(1)
	} else {
		b.WriteUint8(0)
	}
}

func (b *Buffer) WriteUint8(v uint8) {
	b.grow(1)
	b.b = append(b.b, v)
}

func (b *Buffer) WriteUint16(v uint16) {
	b.grow(2)
	b.b = LE.AppendUint16(b.b, v)
}

func (b *Buffer) WriteUint32(v uint32) {
	b.grow(4)
	b.b = LE.AppendUint32(b.b, v)
}

func (b *Buffer) WriteUint64(v uint64) {
	b.grow(8)
	b.b = LE.AppendUint64(b.b, v)
}

func (b *Buffer) WriteInt8(v int8)   { b.WriteUint8(uint8(v)) }
func (b *Buffer) WriteInt16(v int16) { b.WriteUint16(uint16(v)) }
func (b *Buffer) WriteInt32(v int32) { b.WriteUint32(uint32(v)) }
func (b *Buffer) WriteInt64(v int64) { b.WriteUint64(uint64(v)) }

func (b *Buffer) WriteFloat32(v float32) { b.WriteUint32(math.Float32bits(v)) }
func (b *Buffer) WriteFloat64(v float64) { b.WriteUint64(math.Float64bits(v)) }

// Put appends any fixed-width numeric value, named types included, by
// copying its bits in little-endian order.
func Put[T Number](b *Buffer, v T) {
	p := unsafe.Pointer(&v)
	switch unsafe.Sizeof(v) {
	case 1:
		b.WriteUint8(*(*uint8)(p))
	case 2:
		b.WriteUint16(*(*uint16)(p))
	case 4:
		b.WriteUint32(*(*uint32)(p))
	case 8:
		b.WriteUint64(*(*uint64)(p))
	}
}

// --- Variable-length Write Operations ---

// WriteBytes appends p prefixed by its length as a little-endian uint32, so
// a reader can find the boundary without external framing.
func (b *Buffer) WriteBytes(p []byte) error {
	if uint64(len(p)) > math.MaxUint32 {
		return errors.Wrapf(ErrLengthOverflow, "%d bytes", len(p))
	}
	b.grow(PrefixSize + len(p))
	b.b = LE.AppendUint32(b.b, uint32(len(p)))
	b.b = append(b.b, p...)
	return nil
}

// WriteString appends s as length-prefixed UTF-8 bytes. Go strings already
// hold UTF-8, so no transcoding happens.
func (b *Buffer) WriteString(s string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return errors.Wrapf(ErrLengthOverflow, "%d bytes", len(s))
	}
	b.grow(PrefixSize + len(s))
	b.b = LE.AppendUint32(b.b, uint32(len(s)))
	b.b = append(b.b, s...)
	return nil
}

// WriteLen appends a collection count using the same 32-bit prefix as
// WriteBytes.
func (b *Buffer) WriteLen(n int) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return errors.Wrapf(ErrLengthOverflow, "length %d", n)
	}
	b.WriteUint32(uint32(n))
	return nil
}

// Reserve appends n zero bytes and returns their offset, for values such as
// a length prefix that are only known after the body is written.
func (b *Buffer) Reserve(n int) int {
	b.grow(n)
	off := len(b.b)
	b.b = b.b[:off+n]
	clear(b.b[off:])
	return off
}

// PutUint32At overwrites 4 bytes at an offset obtained from Reserve.
func (b *Buffer) PutUint32At(off int, v uint32) {
	LE.PutUint32(b.b[off:off+4], v)
}
