package pack

import (
	"math"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/oy3o/wire"
)

// EncodeTagged appends a polymorphic payload: the type tag of v's
// registration, the body length, then the body. The receiver recovers the
// concrete type from the tag alone.
//
//	tag u32 | len u32 | body
//
// An unregistered type fails with wire.ErrUnknownType before anything is
// written. On any other failure b is truncated back to its length before
// the call.
func (r *Registry) EncodeTagged(b *wire.Buffer, v any) error {
	e, err := r.entryOf(v)
	if err != nil {
		return err
	}
	mark := b.Len()
	b.WriteUint32(uint32(e.Tag))
	off := b.Reserve(wire.PrefixSize)
	if err := e.encode(b, v); err != nil {
		b.Truncate(mark)
		return err
	}
	n := b.Len() - off - wire.PrefixSize
	if uint64(n) > math.MaxUint32 {
		b.Truncate(mark)
		return errors.Wrapf(wire.ErrLengthOverflow, "%s body is %d bytes", e.Name, n)
	}
	b.PutUint32At(off, uint32(n))
	return nil
}

// DecodeTagged reads a payload written by EncodeTagged. The tag selects the
// registration; want is the binding the caller declared (an interface, the
// concrete type, or a pointer to it) and nil accepts anything. A decoded
// type that does not fit want is wire.ErrTypeMismatch.
//
// The body must be consumed exactly. On failure the read cursor is restored.
func (r *Registry) DecodeTagged(b *wire.Buffer, want reflect.Type) (any, error) {
	mark := b.Pos()
	v, err := r.decodeTagged(b, want)
	if err != nil {
		_ = b.SetPos(mark)
		return nil, err
	}
	return v, nil
}

func (r *Registry) decodeTagged(b *wire.Buffer, want reflect.Type) (any, error) {
	raw, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	tag := TypeTag(raw)
	e, ok := r.byTag[tag]
	if !ok {
		return nil, errors.Wrapf(wire.ErrUnknownType, "tag %d", tag)
	}
	n, err := b.ReadLen(1)
	if err != nil {
		return nil, err
	}
	body, err := b.ReadRaw(n)
	if err != nil {
		return nil, err
	}
	var sub wire.Buffer
	sub.Load(body)
	v, err := e.decode(&sub, want)
	if err != nil {
		return nil, errors.Wrapf(err, "tag %d (%s)", tag, e.Name)
	}
	if rem := sub.Remaining(); rem > 0 {
		return nil, errors.Wrapf(wire.ErrTrailingData, "tag %d (%s): %d bytes left in body", tag, e.Name, rem)
	}
	return bind(e, v, want)
}

// DecodeTaggedAs is DecodeTagged with the binding given as a type parameter,
// typically an interface implemented by several registered types.
func DecodeTaggedAs[T any](r *Registry, b *wire.Buffer) (T, error) {
	var zero T
	v, err := r.DecodeTagged(b, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
