package wire

import (
	"bufio"
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// DefaultMaxFrameSize caps a single length-prefixed frame on a stream.
var DefaultMaxFrameSize = 16 * 1024 * 1024

// FrameWriter writes length-prefixed frames to a stream transport such as a
// TCP connection. Each frame is a little-endian uint32 length followed by
// that many bytes.
//
// It wraps bufio.Writer for efficiency and tracks the first error that
// occurs. After an error, all subsequent write operations become no-ops.
// A FrameWriter is not safe for concurrent use.
type FrameWriter struct {
	w     *bufio.Writer
	count int64 // total bytes written, prefixes included
	err   error // first error encountered. Subsequent writes become no-ops.
	max   int
	depth int
}

// NewFrameWriterSize creates a new FrameWriter with a specified buffer size.
// It returns an error to prevent double-buffering, a common source of bugs.
func NewFrameWriterSize(w io.Writer, size int) (*FrameWriter, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// Share the buffer of an outer FrameWriter; only the outermost flushes.
	case *FrameWriter:
		if bw.w.Size() >= size {
			return &FrameWriter{w: bw.w, max: bw.max, depth: bw.depth + 1}, nil
		}

	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		if bw.Size() >= size {
			return &FrameWriter{w: bw, max: DefaultMaxFrameSize}, nil
		}
		return nil, ErrAlreadyBuffered
	}

	return &FrameWriter{w: bufio.NewWriterSize(w, size), max: DefaultMaxFrameSize}, nil
}

// NewFrameWriter creates a new FrameWriter with a default buffer size.
func NewFrameWriter(w io.Writer) (*FrameWriter, error) {
	return NewFrameWriterSize(w, 0)
}

// WithMaxFrameSize sets the largest frame body accepted by WriteFrame and
// returns the writer for chaining.
func (w *FrameWriter) WithMaxFrameSize(n int) *FrameWriter {
	w.max = n
	return w
}

// Write implements io.Writer so a FrameWriter can itself be wrapped.
// Bytes written this way are not framed.
func (w *FrameWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteFrame writes one frame. A frame above the size limit is refused
// without touching the stream, so the writer stays usable.
func (w *FrameWriter) WriteFrame(p []byte) error {
	if w.err != nil {
		return w.err
	}
	if len(p) > w.max || uint64(len(p)) > math.MaxUint32 {
		return errors.Wrapf(ErrFrameTooLarge, "frame of %d bytes exceeds max %d", len(p), w.max)
	}
	var hdr [PrefixSize]byte
	LE.PutUint32(hdr[:], uint32(len(p)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

func (w *FrameWriter) Count() int64 { return w.count }
func (w *FrameWriter) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *FrameWriter) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *FrameWriter) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered frames to the underlying io.Writer.
func (w *FrameWriter) Flush() error {
	// To prevent nested writers from flushing the buffer prematurely.
	// Only the outermost writer should be responsible for the final flush.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}
