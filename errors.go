package wire

import "github.com/cockroachdb/errors"

// Taxonomy. The first four, plus ErrTrailingData, are recoverable at the
// message boundary: the offending message is dropped and the process keeps
// running. See IsRecoverable.
var (
	// ErrOutOfData indicates a read past the valid region of a Buffer:
	// truncated or corrupt input.
	ErrOutOfData = errors.New("wire: out of data")

	// ErrUnknownType indicates that a value's type or a decoded type tag
	// has no registered binding.
	ErrUnknownType = errors.New("wire: unknown type")

	// ErrTypeMismatch indicates that the decoded type cannot be bound to the
	// type requested by the caller.
	ErrTypeMismatch = errors.New("wire: type mismatch")

	// ErrUnknownTarget is a routing miss. It is a normal discard condition,
	// not a failure: targets routinely disconnect between send and delivery.
	ErrUnknownTarget = errors.New("wire: unknown target")

	// ErrSerializerFault marks errors raised (or panics) inside a registered
	// custom serializer. The original error stays reachable through errors.Is.
	ErrSerializerFault = errors.New("wire: serializer fault")
)

var (
	// ErrTrailingData is returned when a whole-message decode leaves unread bytes.
	ErrTrailingData = errors.New("wire: trailing data after decoding")

	// ErrNilIO indicates that NewFrameReader/NewFrameWriter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("wire: NewFrameReader/NewFrameWriter called with a nil io.Reader/io.Writer")

	// ErrAlreadyBuffered indicates that a frame reader or writer was built on
	// top of a bufio value too small for the requested size, which would lead
	// to unpredictable double-buffering.
	ErrAlreadyBuffered = errors.New("wire: reader or writer is already buffered")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid count from Write.
	ErrInvalidWrite = errors.New("wire: writer returned invalid count from Write")

	// ErrInvalidSeek indicates a read cursor move outside the valid region.
	ErrInvalidSeek = errors.New("wire: seek to an invalid position")

	// ErrFrameTooLarge indicates a frame length above the configured maximum.
	ErrFrameTooLarge = errors.New("wire: frame too large")

	// ErrLengthOverflow indicates a byte range or collection that does not fit
	// a 32-bit length prefix.
	ErrLengthOverflow = errors.New("wire: length exceeds 32-bit prefix")

	ErrDuplicateTag    = errors.New("wire: type tag already registered")
	ErrDuplicateType   = errors.New("wire: type already registered")
	ErrDuplicateTarget = errors.New("wire: target already registered")
	ErrInvalidSchema   = errors.New("wire: invalid schema")
	ErrNilPayload      = errors.New("wire: nil payload")
)

// IsRecoverable reports whether err only concerns a single message, so the
// caller may drop that message and carry on with the next one. Errors marked
// ErrSerializerFault are never recoverable, even when the custom serializer
// failed on truncated input and the error also matches ErrOutOfData.
func IsRecoverable(err error) bool {
	if errors.Is(err, ErrSerializerFault) {
		return false
	}
	return errors.IsAny(err, ErrOutOfData, ErrUnknownType, ErrTypeMismatch, ErrUnknownTarget, ErrTrailingData)
}

// outOfData wraps ErrOutOfData with the shortfall.
func outOfData(need, have int) error {
	return errors.Wrapf(ErrOutOfData, "need %d bytes, have %d", need, have)
}
