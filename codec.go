package wire

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when wire encoded.
	Size() int
}

// Marshaler is implemented by types that lay out their own wire bytes.
// MarshalWire appends the encoding at b's write cursor.
type Marshaler interface {
	MarshalWire(b *Buffer) error
}

// Unmarshaler is the inverse of Marshaler. UnmarshalWire consumes exactly the
// bytes MarshalWire produced, starting at b's read cursor.
type Unmarshaler interface {
	UnmarshalWire(b *Buffer) error
}

// Codec aggregates both directions of a self-describing wire type.
type Codec interface {
	Marshaler
	Unmarshaler
}
