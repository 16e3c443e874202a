package pack

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/oy3o/wire"
)

// Marshal encodes v with c into a new byte slice. The scratch buffer comes
// from the wire pool; only the returned copy is allocated.
func Marshal[T any](c Codec[T], v *T) ([]byte, error) {
	b := wire.GetBuffer()
	defer wire.PutBuffer(b)
	if err := c.Encode(b, v); err != nil {
		return nil, err
	}
	return bytes.Clone(b.Bytes()), nil
}

// MarshalTo appends the encoding of v to b. On failure b is truncated back
// to its length before the call.
func MarshalTo[T any](c Codec[T], b *wire.Buffer, v *T) error {
	mark := b.Len()
	if err := c.Encode(b, v); err != nil {
		b.Truncate(mark)
		return err
	}
	return nil
}

// UnmarshalFrom decodes one T at b's read cursor. On failure the read
// cursor is restored, so the caller can drop the input and reset safely.
func UnmarshalFrom[T any](c Codec[T], b *wire.Buffer, v *T) error {
	mark := b.Pos()
	if err := c.Decode(b, v); err != nil {
		_ = b.SetPos(mark)
		return err
	}
	return nil
}

// Unmarshal decodes data, which must hold exactly one encoded T.
func Unmarshal[T any](c Codec[T], data []byte) (T, error) {
	var (
		b wire.Buffer
		v T
	)
	b.Load(data)
	if err := c.Decode(&b, &v); err != nil {
		var zero T
		return zero, err
	}
	if n := b.Remaining(); n > 0 {
		var zero T
		return zero, errors.Wrapf(wire.ErrTrailingData, "%d bytes left", n)
	}
	return v, nil
}
