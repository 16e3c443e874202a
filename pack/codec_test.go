package pack

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/wire"
)

func roundTrip[T any](t *testing.T, c Codec[T], v T) T {
	t.Helper()
	data, err := Marshal(c, &v)
	require.NoError(t, err)
	got, err := Unmarshal(c, data)
	require.NoError(t, err)
	return got
}

func TestPrimitives(t *testing.T) {
	assert.Equal(t, int8(-5), roundTrip(t, Int8(), -5))
	assert.Equal(t, int16(-300), roundTrip(t, Int16(), -300))
	assert.Equal(t, int32(-70000), roundTrip(t, Int32(), -70000))
	assert.Equal(t, int64(-1<<60), roundTrip(t, Int64(), -1<<60))
	assert.Equal(t, uint8(200), roundTrip(t, Uint8(), 200))
	assert.Equal(t, uint16(0xBEEF), roundTrip(t, Uint16(), 0xBEEF))
	assert.Equal(t, uint32(0xDEADBEEF), roundTrip(t, Uint32(), 0xDEADBEEF))
	assert.Equal(t, uint64(1<<63), roundTrip(t, Uint64(), 1<<63))
	assert.Equal(t, float32(1.5), roundTrip(t, Float32(), 1.5))
	assert.Equal(t, 2.25, roundTrip(t, Float64(), 2.25))
	assert.True(t, roundTrip(t, Bool(), true))
	assert.Equal(t, "héllo", roundTrip(t, String(), "héllo"))
	assert.Equal(t, "", roundTrip(t, String(), ""))
	assert.Equal(t, []byte{1, 2, 3}, roundTrip(t, Bytes(), []byte{1, 2, 3}))
	id := uuid.New()
	assert.Equal(t, id, roundTrip(t, UUID(), id))
}

func TestPrimitiveLayout(t *testing.T) {
	v := uint32(0x11223344)
	data, err := Marshal(Uint32(), &v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, data)

	s := "ab"
	data, err = Marshal(String(), &s)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 0, 0, 'a', 'b'}, data)
}

func TestBytesAreCopied(t *testing.T) {
	src := []byte{4, 0, 0, 0, 1, 2, 3, 4}
	got, err := Unmarshal(Bytes(), src)
	require.NoError(t, err)
	src[4] = 0xFF
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestStructRoundTrip(t *testing.T) {
	in := sampleRecord()
	out := roundTrip[record](t, recordCodec, in)
	assert.Equal(t, in, out)
}

func TestEmptyCollectionsDecodeNil(t *testing.T) {
	in := record{Tags: []string{}, Scores: map[string]int64{}, Blob: []byte{}}
	out := roundTrip[record](t, recordCodec, in)
	assert.Nil(t, out.Tags)
	assert.Nil(t, out.Scores)
	assert.Nil(t, out.Blob)
	assert.Nil(t, out.Note)
}

func TestMapIsDeterministic(t *testing.T) {
	c := Map(String(), Int32())
	a := map[string]int32{}
	b := map[string]int32{}
	for i, k := range []string{"d", "b", "c", "a", "e"} {
		a[k] = int32(k[0])
		b[string(rune('a'+i))] = int32('a' + i)
	}

	x, err := Marshal(c, &a)
	require.NoError(t, err)
	y, err := Marshal(c, &b)
	require.NoError(t, err)
	assert.Equal(t, x, y)

	m := map[string]int32{"b": 2, "a": 1}
	data, err := Marshal(c, &m)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		2, 0, 0, 0,
		1, 0, 0, 0, 'a', 1, 0, 0, 0,
		1, 0, 0, 0, 'b', 2, 0, 0, 0,
	}, data)
}

func TestOptionalLayout(t *testing.T) {
	c := Optional(Uint16())
	var absent *uint16
	data, err := Marshal(c, &absent)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, data)

	present := wire.Ptr(uint16(7))
	data, err = Marshal(c, &present)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 7, 0}, data)

	_, err = Unmarshal(c, []byte{2, 7, 0})
	assert.ErrorIs(t, err, wire.ErrTypeMismatch)
}

func TestTruncatedInput(t *testing.T) {
	in := sampleRecord()
	data, err := Marshal[record](recordCodec, &in)
	require.NoError(t, err)

	for n := 0; n < len(data); n++ {
		_, err := Unmarshal[record](recordCodec, data[:n])
		require.Errorf(t, err, "prefix of %d bytes", n)
		assert.Truef(t, errors.Is(err, wire.ErrOutOfData), "prefix of %d bytes: %v", n, err)
	}
}

func TestCorruptCount(t *testing.T) {
	_, err := Unmarshal(List(Int64()), []byte{0xff, 0xff, 0xff, 0x7f, 1})
	assert.ErrorIs(t, err, wire.ErrOutOfData)

	_, err = Unmarshal(Map(Uint8(), Uint8()), []byte{0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, wire.ErrOutOfData)
}

// unit encodes to zero bytes.
type unit struct{}

type unitCodec struct{}

func (unitCodec) Kind() Kind                      { return KindCustom }
func (unitCodec) Encode(*wire.Buffer, *unit) error { return nil }
func (unitCodec) Decode(*wire.Buffer, *unit) error { return nil }

func TestZeroWidthElements(t *testing.T) {
	list := []unit{{}, {}, {}}
	data, err := Marshal(List[unit](unitCodec{}), &list)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0, 0, 0}, data)
	assert.Equal(t, list, roundTrip(t, List[unit](unitCodec{}), list))

	m := map[string]unit{"a": {}, "b": {}}
	assert.Equal(t, m, roundTrip(t, Map[string, unit](String(), unitCodec{}), m))
}

func TestUnmarshalTrailingData(t *testing.T) {
	_, err := Unmarshal(Uint8(), []byte{1, 2})
	assert.ErrorIs(t, err, wire.ErrTrailingData)
}

func TestUnmarshalFromRestoresCursor(t *testing.T) {
	b := wire.Wrap([]byte{9, 0, 0, 0, 'x'})
	var s string
	err := UnmarshalFrom(String(), b, &s)
	assert.ErrorIs(t, err, wire.ErrOutOfData)
	assert.Equal(t, 0, b.Pos())
}

func TestMarshalToAppends(t *testing.T) {
	b := wire.NewBuffer(0)
	b.WriteUint8(0xAA)
	v := item{ID: 5, Label: "x"}
	require.NoError(t, MarshalTo[item](itemCodec, b, &v))
	assert.Equal(t, []byte{0xAA, 5, 0, 0, 0, 1, 0, 0, 0, 'x'}, b.Bytes())
}

func TestSchema(t *testing.T) {
	assert.Equal(t, []FieldInfo{
		{Name: "ID", Kind: KindUint32},
		{Name: "Label", Kind: KindString},
	}, itemCodec.Schema())
	assert.Equal(t, KindStruct, itemCodec.Kind())
	assert.Equal(t, "optional", KindOptional.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, recordCodec.Validate())
	assert.ErrorIs(t, Struct[item]().Validate(), wire.ErrInvalidSchema)

	dup := Struct(
		Field("ID", func(v *item) *uint32 { return &v.ID }, Uint32()),
		Field("ID", func(v *item) *string { return &v.Label }, String()),
	)
	assert.ErrorIs(t, dup.Validate(), wire.ErrInvalidSchema)

	unnamed := Struct(Field("", func(v *item) *uint32 { return &v.ID }, Uint32()))
	assert.ErrorIs(t, unnamed.Validate(), wire.ErrInvalidSchema)
}
