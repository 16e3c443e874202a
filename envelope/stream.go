package envelope

import (
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/oy3o/wire"
)

// StreamTransport sends each envelope as one length-prefixed frame on a
// byte stream such as a TCP connection.
type StreamTransport struct {
	mu sync.Mutex
	w  *wire.FrameWriter
}

var _ Transport = (*StreamTransport)(nil)

// NewStreamTransport creates a StreamTransport writing to w.
func NewStreamTransport(w io.Writer) (*StreamTransport, error) {
	fw, err := wire.NewFrameWriter(w)
	if err != nil {
		return nil, err
	}
	return &StreamTransport{w: fw}, nil
}

// Transmit writes data as one frame and flushes it. Once the stream fails
// every later call returns the first error.
func (t *StreamTransport) Transmit(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.WriteFrame(data); err != nil {
		return err
	}
	return t.w.Flush()
}

// Serve reads frames from r and passes each to router.Receive until the
// stream ends. Messages that fail to route are logged and skipped. It
// returns nil at a clean end of stream and the read error otherwise.
func Serve(r io.Reader, router *Router) error {
	fr, err := wire.NewFrameReader(r)
	if err != nil {
		return err
	}
	var b wire.Buffer
	for {
		if err := fr.ReadFrame(&b); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		err := router.Receive(b.Bytes())
		switch {
		case err == nil:
		case errors.Is(err, wire.ErrSerializerFault):
			router.logger.Warn("custom serializer failed", zap.Error(err))
		case wire.IsRecoverable(err):
		default:
			router.logger.Warn("receive failed", zap.Error(err))
		}
	}
}
