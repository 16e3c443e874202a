package wire

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// next consumes exactly n bytes. On a short buffer it fails with
// ErrOutOfData and leaves the read cursor where it was.
func (b *Buffer) next(n int) ([]byte, error) {
	rem := len(b.b) - b.r
	if n < 0 || n > rem {
		return nil, outOfData(n, rem)
	}
	p := b.b[b.r : b.r+n : b.r+n]
	b.r += n
	return p, nil
}

// ReadRaw consumes n bytes and returns them without copying. The slice
// aliases the buffer.
func (b *Buffer) ReadRaw(n int) ([]byte, error) {
	return b.next(n)
}

// Skip advances the read cursor by n bytes.
func (b *Buffer) Skip(n int) error {
	_, err := b.next(n)
	return err
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if b.r >= len(b.b) {
		return 0, outOfData(1, 0)
	}
	c := b.b[b.r]
	b.r++
	return c, nil
}

// --- Primitive Read Operations ---

func (b *Buffer) ReadBool() (bool, error) {
	c, err := b.ReadByte()
	return c != 0, err
}

func (b *Buffer) ReadUint8() (uint8, error) { return b.ReadByte() }

func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		return 0, err
	}
	return LE.Uint16(p), nil
}

func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return LE.Uint32(p), nil
}

func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return LE.Uint64(p), nil
}

func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

// Get reads any fixed-width numeric value written by Put.
func Get[T Number](b *Buffer) (T, error) {
	var v T
	p, err := b.next(int(unsafe.Sizeof(v)))
	if err != nil {
		return v, err
	}
	dst := unsafe.Pointer(&v)
	switch len(p) {
	case 1:
		*(*uint8)(dst) = p[0]
	case 2:
		*(*uint16)(dst) = LE.Uint16(p)
	case 4:
		*(*uint32)(dst) = LE.Uint32(p)
	case 8:
		*(*uint64)(dst) = LE.Uint64(p)
	}
	return v, nil
}

// --- Variable-length Read Operations ---

// ReadLen reads a 32-bit length prefix and checks that at least per bytes
// per counted item remain, so a corrupt count fails before anything is
// allocated for it. The cursor is left untouched on failure.
func (b *Buffer) ReadLen(per int) (int, error) {
	rem := len(b.b) - b.r
	if rem < PrefixSize {
		return 0, outOfData(PrefixSize, rem)
	}
	n := uint64(LE.Uint32(b.b[b.r:]))
	rem -= PrefixSize
	if per > 0 && n*uint64(per) > uint64(rem) {
		return 0, errors.Wrapf(ErrOutOfData, "length prefix %d needs %d bytes, have %d", n, n*uint64(per), rem)
	}
	b.r += PrefixSize
	return int(n), nil
}

// ReadBytes reads a length-prefixed byte range. The result aliases the
// buffer; copy it to keep it past the buffer's lifetime.
func (b *Buffer) ReadBytes() ([]byte, error) {
	start := b.r
	n, err := b.ReadLen(1)
	if err != nil {
		return nil, err
	}
	p, err := b.next(n)
	if err != nil {
		b.r = start
		return nil, err
	}
	return p, nil
}

// ReadString reads a length-prefixed UTF-8 string. The bytes are copied.
func (b *Buffer) ReadString() (string, error) {
	p, err := b.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}
