package wire

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
)

// FrameReader reads the length-prefixed frames written by FrameWriter.
//
// It wraps bufio.Reader and tracks the first error. Subsequent reads become
// no-ops returning that error: after a bad length prefix the stream can no
// longer be resynchronised.
type FrameReader struct {
	r     *bufio.Reader
	count int64 // total bytes read
	err   error // first error encountered.
	max   int
}

// NewFrameReaderSize creates a new FrameReader with a specified buffer size.
func NewFrameReaderSize(r io.Reader, size int) (*FrameReader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	// Reuse the underlying buffer if it's already a compatible reader.
	case *FrameReader:
		if reader.r.Size() >= size {
			return &FrameReader{r: reader.r, max: reader.max}, nil
		}

	// prevent unpredictable double-buffering.
	case *bufio.Reader:
		if reader.Size() >= size {
			return &FrameReader{r: reader, max: DefaultMaxFrameSize}, nil
		}
		return nil, ErrAlreadyBuffered
	}

	return &FrameReader{r: bufio.NewReaderSize(r, size), max: DefaultMaxFrameSize}, nil
}

// NewFrameReader creates a new FrameReader with a default buffer size.
func NewFrameReader(r io.Reader) (*FrameReader, error) {
	return NewFrameReaderSize(r, 0)
}

// WithMaxFrameSize sets the largest frame accepted by ReadFrame and returns
// the reader for chaining.
func (r *FrameReader) WithMaxFrameSize(n int) *FrameReader {
	r.max = n
	return r
}

// Read implements the io.Reader interface. Bytes read this way bypass
// framing.
func (r *FrameReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

func (r *FrameReader) Count() int64 { return r.count }
func (r *FrameReader) Err() error   { return r.err }
func (r *FrameReader) IsEOF() bool  { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *FrameReader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// ReadFrame reads the next frame into dst, replacing its contents. dst's
// capacity is reused, so a caller looping over a stream with one Buffer does
// not allocate once the buffer has grown to the largest frame.
//
// A clean end of stream between frames returns io.EOF. A stream that ends
// inside a frame returns ErrOutOfData, which also matches io.ErrUnexpectedEOF.
func (r *FrameReader) ReadFrame(dst *Buffer) error {
	if r.err != nil {
		return r.err
	}

	var hdr [PrefixSize]byte
	n, err := io.ReadFull(r.r, hdr[:])
	r.count += int64(n)
	if err != nil {
		if err == io.EOF {
			r.err = io.EOF
		} else {
			r.setError(truncated(err, "frame header"))
		}
		return r.err
	}

	size := LE.Uint32(hdr[:])
	if uint64(size) > uint64(r.max) {
		r.setError(errors.Wrapf(ErrFrameTooLarge, "frame size %d exceeds max %d", size, r.max))
		return r.err
	}

	dst.Reset()
	dst.grow(int(size))
	dst.b = dst.b[:size]
	n, err = io.ReadFull(r.r, dst.b)
	r.count += int64(n)
	if err != nil {
		dst.Reset()
		r.setError(truncated(err, "frame body"))
		return r.err
	}
	return nil
}

// truncated maps a short read to ErrOutOfData while keeping the I/O error
// matchable.
func truncated(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Mark(errors.Wrapf(io.ErrUnexpectedEOF, "wire: partial %s", what), ErrOutOfData)
	}
	return errors.Wrapf(err, "wire: read %s", what)
}
