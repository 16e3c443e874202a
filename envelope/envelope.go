// Package envelope wraps payloads with sender and target identities and
// routes received messages to locally registered recipients.
//
// Wire layout, little-endian:
//
//	[16] sender  [16] target  [1] flags
//	typed: [4] type tag  [4] len  [len] body
//	raw:   [4] len  [len] data
//
// The layout carries no marker telling the two variants apart. The receiver
// learns which one to expect from the recipient the message is addressed
// to; see Recipient.
package envelope

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/oy3o/wire"
	"github.com/oy3o/wire/pack"
)

// HeaderSize is the encoded size of a Header.
const HeaderSize = 16 + 16 + 1

// Flags is an opaque bit set owned by the application. It is carried
// verbatim and never interpreted here.
type Flags uint8

func (f Flags) String() string { return fmt.Sprintf("0x%02x", uint8(f)) }

// Header is the routing part of every envelope.
type Header struct {
	SenderID uuid.UUID
	TargetID uuid.UUID
	Flags    Flags
}

// Envelope carries a typed payload, encoded through a pack.Registry with its
// type tag.
type Envelope struct {
	Header
	Payload any
}

// RawEnvelope carries pre-serialized bytes for forwarding.
type RawEnvelope struct {
	Header
	Data []byte
}

func appendHeader(b *wire.Buffer, h *Header) {
	b.Write(h.SenderID[:])
	b.Write(h.TargetID[:])
	b.WriteUint8(uint8(h.Flags))
}

// AppendTyped appends env to b. On failure b is truncated back to its
// length before the call.
func AppendTyped(b *wire.Buffer, reg *pack.Registry, env *Envelope) error {
	if env.Payload == nil {
		return wire.ErrNilPayload
	}
	mark := b.Len()
	appendHeader(b, &env.Header)
	if err := reg.EncodeTagged(b, env.Payload); err != nil {
		b.Truncate(mark)
		return errors.Wrapf(err, "envelope to %s", env.TargetID)
	}
	return nil
}

// AppendRaw appends env to b. On failure b is truncated back to its length
// before the call.
func AppendRaw(b *wire.Buffer, env *RawEnvelope) error {
	mark := b.Len()
	appendHeader(b, &env.Header)
	if err := b.WriteBytes(env.Data); err != nil {
		b.Truncate(mark)
		return err
	}
	return nil
}

// ReadHeader reads a Header. The cursor is left untouched on failure.
func ReadHeader(b *wire.Buffer) (Header, error) {
	var h Header
	p, err := b.ReadRaw(HeaderSize)
	if err != nil {
		return h, errors.Wrap(err, "envelope header")
	}
	copy(h.SenderID[:], p[0:16])
	copy(h.TargetID[:], p[16:32])
	h.Flags = Flags(p[32])
	return h, nil
}

// ReadTyped reads a typed envelope. On failure the read cursor is restored.
func ReadTyped(b *wire.Buffer, reg *pack.Registry) (Envelope, error) {
	mark := b.Pos()
	h, err := ReadHeader(b)
	if err != nil {
		return Envelope{}, err
	}
	v, err := reg.DecodeTagged(b, nil)
	if err != nil {
		_ = b.SetPos(mark)
		return Envelope{}, err
	}
	return Envelope{Header: h, Payload: v}, nil
}

// ReadRaw reads a raw envelope. Data aliases b. On failure the read cursor
// is restored.
func ReadRaw(b *wire.Buffer) (RawEnvelope, error) {
	mark := b.Pos()
	h, err := ReadHeader(b)
	if err != nil {
		return RawEnvelope{}, err
	}
	data, err := b.ReadBytes()
	if err != nil {
		_ = b.SetPos(mark)
		return RawEnvelope{}, errors.Wrap(err, "envelope data")
	}
	return RawEnvelope{Header: h, Data: data}, nil
}

// MarshalTyped encodes env into a new byte slice.
func MarshalTyped(reg *pack.Registry, env *Envelope) ([]byte, error) {
	b := wire.GetBuffer()
	defer wire.PutBuffer(b)
	if err := AppendTyped(b, reg, env); err != nil {
		return nil, err
	}
	return bytes.Clone(b.Bytes()), nil
}

// MarshalRaw encodes env into a new byte slice.
func MarshalRaw(env *RawEnvelope) ([]byte, error) {
	b := wire.GetBuffer()
	defer wire.PutBuffer(b)
	if err := AppendRaw(b, env); err != nil {
		return nil, err
	}
	return bytes.Clone(b.Bytes()), nil
}
