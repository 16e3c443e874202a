package pack

import (
	"cmp"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/oy3o/wire"
)

type listCodec[E any] struct{ elem Codec[E] }

// List encodes a slice as a 32-bit element count followed by each element
// in order. An empty list decodes as nil, so a non-nil empty slice does not
// compare equal to its decoded form under reflect.DeepEqual.
func List[E any](elem Codec[E]) Codec[[]E] { return listCodec[E]{elem} }

func (listCodec[E]) Kind() Kind { return KindList }

func (c listCodec[E]) Encode(b *wire.Buffer, v *[]E) error {
	items := *v
	if err := b.WriteLen(len(items)); err != nil {
		return err
	}
	for i := range items {
		if err := c.elem.Encode(b, &items[i]); err != nil {
			return errors.Wrapf(err, "list item %d", i)
		}
	}
	return nil
}

func (c listCodec[E]) Decode(b *wire.Buffer, v *[]E) error {
	// Elements may encode to zero bytes, so the count is not checked
	// against the input; the preallocation is bounded by it instead.
	n, err := b.ReadLen(0)
	if err != nil {
		return err
	}
	if n == 0 {
		*v = nil
		return nil
	}
	items := make([]E, 0, min(n, b.Remaining()))
	for i := 0; i < n; i++ {
		var item E
		if err := c.elem.Decode(b, &item); err != nil {
			return errors.Wrapf(err, "list item %d", i)
		}
		items = append(items, item)
	}
	*v = items
	return nil
}

type optionalCodec[E any] struct{ elem Codec[E] }

// Optional encodes a nullable value as a presence byte (0 absent, 1 present)
// followed by the value when present.
func Optional[E any](elem Codec[E]) Codec[*E] { return optionalCodec[E]{elem} }

func (optionalCodec[E]) Kind() Kind { return KindOptional }

func (c optionalCodec[E]) Encode(b *wire.Buffer, v **E) error {
	if *v == nil {
		b.WriteUint8(0)
		return nil
	}
	b.WriteUint8(1)
	return c.elem.Encode(b, *v)
}

func (c optionalCodec[E]) Decode(b *wire.Buffer, v **E) error {
	flag, err := b.ReadUint8()
	if err != nil {
		return err
	}
	switch flag {
	case 0:
		*v = nil
		return nil
	case 1:
		x := new(E)
		if err := c.elem.Decode(b, x); err != nil {
			return err
		}
		*v = x
		return nil
	default:
		return errors.Wrapf(wire.ErrTypeMismatch, "invalid presence byte 0x%02x", flag)
	}
}

type mapCodec[K cmp.Ordered, V any] struct {
	key Codec[K]
	val Codec[V]
}

// Map encodes a count followed by key/value pairs in ascending key order,
// so equal maps always produce equal bytes. An empty map decodes as nil, so
// a non-nil empty map does not compare equal to its decoded form under
// reflect.DeepEqual.
func Map[K cmp.Ordered, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{key, val}
}

func (mapCodec[K, V]) Kind() Kind { return KindMap }

func (c mapCodec[K, V]) Encode(b *wire.Buffer, v *map[K]V) error {
	m := *v
	if err := b.WriteLen(len(m)); err != nil {
		return err
	}
	keys := lo.Keys(m)
	slices.Sort(keys)
	for i := range keys {
		val := m[keys[i]]
		if err := c.key.Encode(b, &keys[i]); err != nil {
			return err
		}
		if err := c.val.Encode(b, &val); err != nil {
			return errors.Wrapf(err, "map value %v", keys[i])
		}
	}
	return nil
}

func (c mapCodec[K, V]) Decode(b *wire.Buffer, v *map[K]V) error {
	n, err := b.ReadLen(0)
	if err != nil {
		return err
	}
	if n == 0 {
		*v = nil
		return nil
	}
	m := make(map[K]V, min(n, b.Remaining()))
	for i := 0; i < n; i++ {
		var (
			key K
			val V
		)
		if err := c.key.Decode(b, &key); err != nil {
			return err
		}
		if err := c.val.Decode(b, &val); err != nil {
			return errors.Wrapf(err, "map value %v", key)
		}
		m[key] = val
	}
	*v = m
	return nil
}
