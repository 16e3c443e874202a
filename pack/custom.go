package pack

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/oy3o/wire"
)

// EncodeFunc writes v, a value of the registered type or a pointer to one.
type EncodeFunc func(b *wire.Buffer, v any) error

// DecodeFunc reads a value back. target is the type the caller asked for,
// nil when any binding is acceptable; a serializer may use it to materialize
// one physical encoding as the requested subtype or interface binding.
type DecodeFunc func(b *wire.Buffer, target reflect.Type) (any, error)

// Custom is the capability a type declares to supply its own exact wire
// layout: two free functions, registered against the type with
// RegisterCustom. The structural path is bypassed entirely for that type.
type Custom struct {
	Encode EncodeFunc
	Decode DecodeFunc
}

// Self derives a Custom from a type whose pointer implements wire.Codec.
// Decoding yields a T value. If the type also implements wire.Sizer the
// buffer is grown once before encoding.
func Self[T any, PT interface {
	*T
	wire.Codec
}]() Custom {
	return Custom{
		Encode: func(b *wire.Buffer, v any) error {
			var p PT
			switch x := v.(type) {
			case *T:
				p = PT(x)
			case T:
				p = PT(&x)
			default:
				return errors.Wrapf(wire.ErrTypeMismatch, "%T is not %s", v, typeName[T]())
			}
			if s, ok := any(p).(wire.Sizer); ok {
				b.Grow(s.Size())
			}
			return p.MarshalWire(b)
		},
		Decode: func(b *wire.Buffer, _ reflect.Type) (any, error) {
			var v T
			if err := PT(&v).UnmarshalWire(b); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Funcs derives a Custom from a typed function pair.
func Funcs[T any](enc func(b *wire.Buffer, v *T) error, dec func(b *wire.Buffer) (T, error)) Custom {
	return Custom{
		Encode: func(b *wire.Buffer, v any) error {
			switch x := v.(type) {
			case *T:
				return enc(b, x)
			case T:
				return enc(b, &x)
			}
			return errors.Wrapf(wire.ErrTypeMismatch, "%T is not %s", v, typeName[T]())
		},
		Decode: func(b *wire.Buffer, _ reflect.Type) (any, error) {
			v, err := dec(b)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// guard runs custom serializer code. Errors and panics come back marked
// with ErrSerializerFault; the original error still matches errors.Is, so a
// custom decoder hitting truncated input still reports ErrOutOfData.
func guard(name string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Mark(errors.Newf("pack: custom serializer for %s panicked: %v", name, p), wire.ErrSerializerFault)
		}
	}()
	if err = fn(); err != nil {
		err = errors.Mark(errors.Wrapf(err, "pack: custom serializer for %s", name), wire.ErrSerializerFault)
	}
	return err
}

func typeName[T any]() string {
	return fmt.Sprint(reflect.TypeFor[T]())
}
