package pack

import (
	"math"

	"github.com/google/uuid"

	"github.com/oy3o/wire"
)

type item struct {
	ID    uint32
	Label string
}

var itemCodec = Struct(
	Field("ID", func(v *item) *uint32 { return &v.ID }, Uint32()),
	Field("Label", func(v *item) *string { return &v.Label }, String()),
)

type record struct {
	Name   string
	Count  int32
	Ratio  float64
	On     bool
	Owner  uuid.UUID
	Tags   []string
	Note   *string
	Scores map[string]int64
	Items  []item
	Blob   []byte
}

var recordCodec = Struct(
	Field("Name", func(v *record) *string { return &v.Name }, String()),
	Field("Count", func(v *record) *int32 { return &v.Count }, Int32()),
	Field("Ratio", func(v *record) *float64 { return &v.Ratio }, Float64()),
	Field("On", func(v *record) *bool { return &v.On }, Bool()),
	Field("Owner", func(v *record) *uuid.UUID { return &v.Owner }, UUID()),
	Field("Tags", func(v *record) *[]string { return &v.Tags }, List(String())),
	Field("Note", func(v *record) **string { return &v.Note }, Optional(String())),
	Field("Scores", func(v *record) *map[string]int64 { return &v.Scores }, Map(String(), Int64())),
	Field("Items", func(v *record) *[]item { return &v.Items }, List[item](itemCodec)),
	Field("Blob", func(v *record) *[]byte { return &v.Blob }, Bytes()),
)

func sampleRecord() record {
	return record{
		Name:   "ok",
		Count:  3,
		Ratio:  math.Pi,
		On:     true,
		Owner:  uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Tags:   []string{"a", "", "ccc"},
		Note:   wire.Ptr("note"),
		Scores: map[string]int64{"z": -1, "a": 1 << 40},
		Items:  []item{{ID: 1, Label: "one"}, {ID: 2}},
		Blob:   []byte{0xde, 0xad},
	}
}

// Shape is implemented by several registered types and used as a
// polymorphic binding.
type Shape interface{ Area() float64 }

type circle struct{ R float64 }

func (c circle) Area() float64 { return math.Pi * c.R * c.R }

type rect struct{ W, H float64 }

func (r rect) Area() float64 { return r.W * r.H }

var circleCodec = Struct(Field("R", func(v *circle) *float64 { return &v.R }, Float64()))

var rectCodec = Struct(
	Field("W", func(v *rect) *float64 { return &v.W }, Float64()),
	Field("H", func(v *rect) *float64 { return &v.H }, Float64()),
)

// vec has a structural codec and a custom layout that differs from it.
type vec struct{ X, Y int16 }

var vecCodec = Struct(
	Field("X", func(v *vec) *int16 { return &v.X }, Int16()),
	Field("Y", func(v *vec) *int16 { return &v.Y }, Int16()),
)

const vecMagic = 0xEE

var vecCustom = Funcs(
	func(b *wire.Buffer, v *vec) error {
		b.WriteUint8(vecMagic)
		b.WriteInt16(v.Y)
		b.WriteInt16(v.X)
		return nil
	},
	func(b *wire.Buffer) (vec, error) {
		var v vec
		if _, err := b.ReadUint8(); err != nil {
			return v, err
		}
		y, err := b.ReadInt16()
		if err != nil {
			return v, err
		}
		x, err := b.ReadInt16()
		if err != nil {
			return v, err
		}
		return vec{X: x, Y: y}, nil
	},
)

// temp lays out its own bytes through wire.Codec.
type temp struct{ Centi int32 }

func (t *temp) Size() int { return 5 }

func (t *temp) MarshalWire(b *wire.Buffer) error {
	b.WriteUint8('T')
	b.WriteInt32(t.Centi)
	return nil
}

func (t *temp) UnmarshalWire(b *wire.Buffer) error {
	if _, err := b.ReadUint8(); err != nil {
		return err
	}
	v, err := b.ReadInt32()
	if err != nil {
		return err
	}
	t.Centi = v
	return nil
}

var (
	_ wire.Codec = (*temp)(nil)
	_ wire.Sizer = (*temp)(nil)
)
