package wire

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// LE is the wire byte order. Every fixed-width value is little-endian,
// matching the host order of the platforms this runs on, so encoding is a
// straight copy of the value's bits.
var LE = binary.LittleEndian

// PrefixSize is the width of every length prefix and type tag on the wire.
const PrefixSize = 4

func Ptr[T any](v T) *T { return &v } // Ptr is a helper function to create a pointer to a value, making test setup cleaner.

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }
