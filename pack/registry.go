package pack

import (
	"bytes"
	"reflect"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/oy3o/wire"
)

// TypeTag identifies a payload's concrete type on the wire. Sender and
// receiver must register the same tag for the same type.
type TypeTag uint32

// TypeInfo describes one registration.
type TypeInfo struct {
	Tag    TypeTag
	Name   string
	Type   reflect.Type
	Kind   Kind
	Schema []FieldInfo // nil for custom serializers
}

type entry struct {
	TypeInfo
	encode EncodeFunc
	decode DecodeFunc
	err    error // registration problem, reported by Build
}

// Builder collects registrations at startup. It is not safe for concurrent
// use; build the Registry once and share that instead.
type Builder struct {
	entries []*entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Register binds T to tag with a structural codec.
func Register[T any](b *Builder, tag TypeTag, c Codec[T]) *Builder {
	t := reflect.TypeFor[T]()
	e := &entry{TypeInfo: TypeInfo{Tag: tag, Name: t.String(), Type: t}}
	b.entries = append(b.entries, e)
	if c == nil {
		e.err = errors.Wrap(wire.ErrInvalidSchema, "nil codec")
		return b
	}
	if v, ok := c.(interface{ Validate() error }); ok {
		if e.err = v.Validate(); e.err != nil {
			return b
		}
	}
	e.Kind = c.Kind()
	if s, ok := c.(interface{ Schema() []FieldInfo }); ok {
		e.Schema = s.Schema()
	}
	e.encode = func(buf *wire.Buffer, v any) error {
		switch x := v.(type) {
		case *T:
			return c.Encode(buf, x)
		case T:
			return c.Encode(buf, &x)
		}
		return errors.Wrapf(wire.ErrTypeMismatch, "%T is not %s", v, e.Name)
	}
	e.decode = func(buf *wire.Buffer, _ reflect.Type) (any, error) {
		var v T
		if err := c.Decode(buf, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return b
}

// RegisterCustom binds T to tag with a custom serializer. Errors and panics
// raised by its functions are reported as wire.ErrSerializerFault.
func RegisterCustom[T any](b *Builder, tag TypeTag, c Custom) *Builder {
	t := reflect.TypeFor[T]()
	e := &entry{TypeInfo: TypeInfo{Tag: tag, Name: t.String(), Type: t, Kind: KindCustom}}
	b.entries = append(b.entries, e)
	if c.Encode == nil || c.Decode == nil {
		e.err = errors.Wrap(wire.ErrInvalidSchema, "custom serializer needs both functions")
		return b
	}
	e.encode = func(buf *wire.Buffer, v any) error {
		return guard(e.Name, func() error { return c.Encode(buf, v) })
	}
	e.decode = func(buf *wire.Buffer, target reflect.Type) (v any, err error) {
		err = guard(e.Name, func() (err error) {
			v, err = c.Decode(buf, target)
			return err
		})
		return v, err
	}
	return b
}

// Build validates the registrations and freezes them into a Registry.
// At most one registration is allowed per type and per tag.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		byType: make(map[reflect.Type]*entry, len(b.entries)),
		byTag:  make(map[TypeTag]*entry, len(b.entries)),
	}
	var errs []error
	for _, e := range b.entries {
		if e.err != nil {
			errs = append(errs, errors.Wrapf(e.err, "%s", e.Name))
			continue
		}
		if prev, ok := r.byTag[e.Tag]; ok {
			errs = append(errs, errors.Wrapf(wire.ErrDuplicateTag, "tag %d: %s and %s", e.Tag, prev.Name, e.Name))
			continue
		}
		if _, ok := r.byType[e.Type]; ok {
			errs = append(errs, errors.Wrapf(wire.ErrDuplicateType, "%s", e.Name))
			continue
		}
		r.byTag[e.Tag] = e
		r.byType[e.Type] = e
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Lazy returns an accessor that builds the Registry on first call, exactly
// once, however many goroutines race for it.
func Lazy(setup func(b *Builder)) func() (*Registry, error) {
	return sync.OnceValues(func() (*Registry, error) {
		b := NewBuilder()
		setup(b)
		return b.Build()
	})
}

// Registry is the immutable serializer table. Lookups are plain map reads,
// so any number of goroutines may encode and decode concurrently without
// locking.
type Registry struct {
	byType map[reflect.Type]*entry
	byTag  map[TypeTag]*entry
}

// Lookup returns the registration for tag.
func (r *Registry) Lookup(tag TypeTag) (TypeInfo, bool) {
	e, ok := r.byTag[tag]
	if !ok {
		return TypeInfo{}, false
	}
	return e.TypeInfo, true
}

// Tags lists the registered tags in ascending order.
func (r *Registry) Tags() []TypeTag {
	tags := lo.Keys(r.byTag)
	slices.Sort(tags)
	return tags
}

// entryOf resolves a value, or a pointer to a value, to its registration.
func (r *Registry) entryOf(v any) (*entry, error) {
	if v == nil {
		return nil, wire.ErrNilPayload
	}
	t := reflect.TypeOf(v)
	if e, ok := r.byType[t]; ok {
		return e, nil
	}
	if t.Kind() == reflect.Pointer {
		if reflect.ValueOf(v).IsNil() {
			return nil, wire.ErrNilPayload
		}
		if e, ok := r.byType[t.Elem()]; ok {
			return e, nil
		}
	}
	return nil, errors.Wrapf(wire.ErrUnknownType, "%s is not registered", t)
}

// entryFor resolves a requested decode type. Pointer targets decode the
// pointed-to registration and come back as a pointer.
func (r *Registry) entryFor(target reflect.Type) (*entry, error) {
	if target == nil {
		return nil, errors.Wrap(wire.ErrUnknownType, "untagged decode needs a target type")
	}
	if e, ok := r.byType[target]; ok {
		return e, nil
	}
	if target.Kind() == reflect.Pointer {
		if e, ok := r.byType[target.Elem()]; ok {
			return e, nil
		}
	}
	return nil, errors.Wrapf(wire.ErrUnknownType, "%s is not registered", target)
}

// bind checks a decoded value against the caller's declared binding.
func bind(e *entry, v any, want reflect.Type) (any, error) {
	if want == nil {
		return v, nil
	}
	got := reflect.TypeOf(v)
	if got != nil && got.AssignableTo(want) {
		return v, nil
	}
	if got != nil && want.Kind() == reflect.Pointer && got.AssignableTo(want.Elem()) {
		p := reflect.New(want.Elem())
		p.Elem().Set(reflect.ValueOf(v))
		return p.Interface(), nil
	}
	return nil, errors.Wrapf(wire.ErrTypeMismatch, "tag %d (%s) decoded %v, want %s", e.Tag, e.Name, got, want)
}

// Encode encodes v, a registered value or a pointer to one, without a type
// tag. Types registered with RegisterCustom go through their own serializer
// and never through a structural codec.
func (r *Registry) Encode(v any) ([]byte, error) {
	b := wire.GetBuffer()
	defer wire.PutBuffer(b)
	if err := r.EncodeTo(b, v); err != nil {
		return nil, err
	}
	return bytes.Clone(b.Bytes()), nil
}

// EncodeTo appends the untagged encoding of v to b. On failure b is
// truncated back to its length before the call.
func (r *Registry) EncodeTo(b *wire.Buffer, v any) error {
	e, err := r.entryOf(v)
	if err != nil {
		return err
	}
	mark := b.Len()
	if err := e.encode(b, v); err != nil {
		b.Truncate(mark)
		return err
	}
	return nil
}

// Decode decodes data, which must hold exactly one untagged value of type
// target (or of the type target points to).
func (r *Registry) Decode(data []byte, target reflect.Type) (any, error) {
	var b wire.Buffer
	b.Load(data)
	v, err := r.DecodeFrom(&b, target)
	if err != nil {
		return nil, err
	}
	if n := b.Remaining(); n > 0 {
		return nil, errors.Wrapf(wire.ErrTrailingData, "%d bytes left", n)
	}
	return v, nil
}

// DecodeFrom decodes one untagged value at b's read cursor. On failure the
// read cursor is restored.
func (r *Registry) DecodeFrom(b *wire.Buffer, target reflect.Type) (any, error) {
	e, err := r.entryFor(target)
	if err != nil {
		return nil, err
	}
	mark := b.Pos()
	v, err := e.decode(b, target)
	if err == nil {
		v, err = bind(e, v, target)
	}
	if err != nil {
		_ = b.SetPos(mark)
		return nil, err
	}
	return v, nil
}

// DecodeAs is Decode with the target given as a type parameter.
func DecodeAs[T any](r *Registry, data []byte) (T, error) {
	var zero T
	v, err := r.Decode(data, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
