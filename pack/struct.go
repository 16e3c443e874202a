package pack

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/oy3o/wire"
)

// FieldInfo is one entry of a described schema.
type FieldInfo struct {
	Name string
	Kind Kind
}

// FieldOf binds one named member of T to the codec of its type.
type FieldOf[T any] struct {
	info FieldInfo
	enc  func(b *wire.Buffer, v *T) error
	dec  func(b *wire.Buffer, v *T) error
}

// Field declares a member of T. ref returns the address of the member
// inside a given *T; it must not retain or replace the pointer.
//
//	pack.Field("Name", func(r *Record) *string { return &r.Name }, pack.String())
func Field[T, F any](name string, ref func(*T) *F, c Codec[F]) FieldOf[T] {
	return FieldOf[T]{
		info: FieldInfo{Name: name, Kind: c.Kind()},
		enc:  func(b *wire.Buffer, v *T) error { return c.Encode(b, ref(v)) },
		dec:  func(b *wire.Buffer, v *T) error { return c.Decode(b, ref(v)) },
	}
}

// StructCodec encodes the declared fields of T back to back, in declaration
// order, with no per-field tags or names on the wire.
type StructCodec[T any] struct {
	fields []FieldOf[T]
}

var _ Codec[struct{}] = (*StructCodec[struct{}])(nil)

// Struct builds the codec for T from its ordered field list. The schema is
// checked when the codec is registered; see Builder.Build.
func Struct[T any](fields ...FieldOf[T]) *StructCodec[T] {
	return &StructCodec[T]{fields: fields}
}

func (*StructCodec[T]) Kind() Kind { return KindStruct }

// Schema returns the ordered (name, kind) list the codec encodes.
func (c *StructCodec[T]) Schema() []FieldInfo {
	return lo.Map(c.fields, func(f FieldOf[T], _ int) FieldInfo { return f.info })
}

// Validate reports schemas that cannot round-trip unambiguously.
func (c *StructCodec[T]) Validate() error {
	if len(c.fields) == 0 {
		return errors.Wrap(wire.ErrInvalidSchema, "struct has no fields")
	}
	names := lo.Map(c.fields, func(f FieldOf[T], _ int) string { return f.info.Name })
	if lo.Contains(names, "") {
		return errors.Wrap(wire.ErrInvalidSchema, "empty field name")
	}
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return errors.Wrapf(wire.ErrInvalidSchema, "duplicate fields %v", dup)
	}
	return nil
}

func (c *StructCodec[T]) Encode(b *wire.Buffer, v *T) error {
	for i := range c.fields {
		if err := c.fields[i].enc(b, v); err != nil {
			return errors.Wrapf(err, "field %s", c.fields[i].info.Name)
		}
	}
	return nil
}

func (c *StructCodec[T]) Decode(b *wire.Buffer, v *T) error {
	for i := range c.fields {
		if err := c.fields[i].dec(b, v); err != nil {
			return errors.Wrapf(err, "field %s", c.fields[i].info.Name)
		}
	}
	return nil
}
