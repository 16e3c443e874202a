// Package pack converts typed values to and from wire.Buffer bytes.
//
// Every serializable type declares its layout explicitly: a Struct codec is
// an ordered list of named fields, each bound to the codec of its own type.
// Nothing walks values with reflection. A type that needs an exact byte
// layout registers a Custom serializer instead, and the Registry routes
// polymorphic payloads by a 32-bit type tag.
package pack

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/oy3o/wire"
)

// Codec encodes and decodes values of T. Encode must not modify *v, and
// Decode must consume exactly the bytes Encode produced.
//
// Codecs hold no per-call state and are safe for concurrent use.
type Codec[T any] interface {
	Encode(b *wire.Buffer, v *T) error
	Decode(b *wire.Buffer, v *T) error
	Kind() Kind
}

// number is the fixed-width codec shared by every numeric kind.
type number[T wire.Number] struct{ kind Kind }

func (c number[T]) Kind() Kind { return c.kind }

func (number[T]) Encode(b *wire.Buffer, v *T) error {
	wire.Put(b, *v)
	return nil
}

func (number[T]) Decode(b *wire.Buffer, v *T) error {
	x, err := wire.Get[T](b)
	if err != nil {
		return err
	}
	*v = x
	return nil
}

func Int8() Codec[int8]       { return number[int8]{KindInt8} }
func Int16() Codec[int16]     { return number[int16]{KindInt16} }
func Int32() Codec[int32]     { return number[int32]{KindInt32} }
func Int64() Codec[int64]     { return number[int64]{KindInt64} }
func Uint8() Codec[uint8]     { return number[uint8]{KindUint8} }
func Uint16() Codec[uint16]   { return number[uint16]{KindUint16} }
func Uint32() Codec[uint32]   { return number[uint32]{KindUint32} }
func Uint64() Codec[uint64]   { return number[uint64]{KindUint64} }
func Float32() Codec[float32] { return number[float32]{KindFloat32} }
func Float64() Codec[float64] { return number[float64]{KindFloat64} }

type boolCodec struct{}

// Bool encodes as one byte, 0 or 1. Any non-zero byte decodes as true.
func Bool() Codec[bool] { return boolCodec{} }

func (boolCodec) Kind() Kind { return KindBool }

func (boolCodec) Encode(b *wire.Buffer, v *bool) error {
	b.WriteBool(*v)
	return nil
}

func (boolCodec) Decode(b *wire.Buffer, v *bool) error {
	x, err := b.ReadBool()
	if err != nil {
		return err
	}
	*v = x
	return nil
}

type stringCodec struct{}

// String encodes length-prefixed UTF-8.
func String() Codec[string] { return stringCodec{} }

func (stringCodec) Kind() Kind { return KindString }

func (stringCodec) Encode(b *wire.Buffer, v *string) error { return b.WriteString(*v) }

func (stringCodec) Decode(b *wire.Buffer, v *string) error {
	s, err := b.ReadString()
	if err != nil {
		return err
	}
	*v = s
	return nil
}

type bytesCodec struct{}

// Bytes encodes a length-prefixed byte range. Decoded bytes are copied out
// of the buffer. An empty range decodes as nil, so a non-nil empty slice does
// not compare equal to its decoded form under reflect.DeepEqual.
func Bytes() Codec[[]byte] { return bytesCodec{} }

func (bytesCodec) Kind() Kind { return KindBytes }

func (bytesCodec) Encode(b *wire.Buffer, v *[]byte) error { return b.WriteBytes(*v) }

func (bytesCodec) Decode(b *wire.Buffer, v *[]byte) error {
	p, err := b.ReadBytes()
	if err != nil {
		return err
	}
	if len(p) == 0 {
		*v = nil
		return nil
	}
	*v = bytes.Clone(p)
	return nil
}

type uuidCodec struct{}

// UUID encodes the 16 raw bytes of the identifier, no prefix.
func UUID() Codec[uuid.UUID] { return uuidCodec{} }

func (uuidCodec) Kind() Kind { return KindUUID }

func (uuidCodec) Encode(b *wire.Buffer, v *uuid.UUID) error {
	_, err := b.Write(v[:])
	return err
}

func (uuidCodec) Decode(b *wire.Buffer, v *uuid.UUID) error {
	p, err := b.ReadRaw(len(v))
	if err != nil {
		return err
	}
	copy(v[:], p)
	return nil
}
