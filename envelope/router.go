package envelope

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oy3o/wire"
	"github.com/oy3o/wire/internal/log"
	"github.com/oy3o/wire/pack"
)

// ErrNoTransport is returned by Send when the router was built without a
// Transport.
var ErrNoTransport = errors.New("envelope: no transport configured")

// Transport hands encoded envelopes to the network. data is only valid for
// the duration of the call; implementations that queue it must copy.
type Transport interface {
	Transmit(data []byte) error
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(data []byte) error

func (f TransportFunc) Transmit(data []byte) error { return f(data) }

// Option configures a Router.
type Option func(*Router)

// WithTransport sets the outbound transport.
func WithTransport(t Transport) Option {
	return func(r *Router) { r.transport = t }
}

// WithLogger sets the logger used for dropped messages.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTargets shares an existing target table, typically one owned by the
// session layer.
func WithTargets(t *Targets) Option {
	return func(r *Router) {
		if t != nil {
			r.targets = t
		}
	}
}

// Router sends envelopes through a Transport and delivers received ones to
// local recipients. It is safe for concurrent use.
type Router struct {
	reg       *pack.Registry
	targets   *Targets
	transport Transport
	logger    *zap.Logger
}

// NewRouter creates a Router that encodes typed payloads with reg.
func NewRouter(reg *pack.Registry, opts ...Option) *Router {
	r := &Router{
		reg:     reg,
		targets: NewTargets(),
		logger:  log.L().Named("envelope"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Targets returns the router's target table.
func (r *Router) Targets() *Targets { return r.targets }

// Send encodes payload as a typed envelope and transmits it.
func (r *Router) Send(sender, target uuid.UUID, payload any, flags Flags) error {
	if r.transport == nil {
		return ErrNoTransport
	}
	b := wire.GetBuffer()
	defer wire.PutBuffer(b)
	env := Envelope{Header: Header{SenderID: sender, TargetID: target, Flags: flags}, Payload: payload}
	if err := AppendTyped(b, r.reg, &env); err != nil {
		return err
	}
	return r.transport.Transmit(b.Bytes())
}

// SendRaw wraps already serialized data in a raw envelope and transmits it.
func (r *Router) SendRaw(sender, target uuid.UUID, data []byte, flags Flags) error {
	if r.transport == nil {
		return ErrNoTransport
	}
	b := wire.GetBuffer()
	defer wire.PutBuffer(b)
	env := RawEnvelope{Header: Header{SenderID: sender, TargetID: target, Flags: flags}, Data: data}
	if err := AppendRaw(b, &env); err != nil {
		return err
	}
	return r.transport.Transmit(b.Bytes())
}

// Receive decodes one envelope and delivers it to its target, exactly once.
//
// A target that is not registered yields wire.ErrUnknownTarget without the
// payload being decoded; targets disconnecting while messages are in flight
// is routine. Malformed input yields the decode error. Neither affects later
// calls.
func (r *Router) Receive(data []byte) error {
	var b wire.Buffer
	b.Load(data)

	h, err := ReadHeader(&b)
	if err != nil {
		r.logger.Debug("drop malformed envelope", zap.Int("size", len(data)), zap.Error(err))
		return err
	}
	rcpt, ok := r.targets.Lookup(h.TargetID)
	if !ok {
		r.logger.Debug("drop envelope for unknown target",
			zap.Stringer("sender", h.SenderID), zap.Stringer("target", h.TargetID))
		return errors.Wrapf(wire.ErrUnknownTarget, "%s", h.TargetID)
	}

	d := Delivery{SenderID: h.SenderID, TargetID: h.TargetID, Flags: h.Flags}
	switch mode := rcpt.Mode(); mode {
	case Typed:
		d.Payload, err = r.reg.DecodeTagged(&b, nil)
	case Raw:
		d.Data, err = b.ReadBytes()
	default:
		err = errors.Newf("envelope: recipient %s has invalid mode %d", h.TargetID, mode)
	}
	if err == nil && b.Remaining() > 0 {
		err = errors.Wrapf(wire.ErrTrailingData, "%d bytes after payload", b.Remaining())
	}
	if err != nil {
		r.logger.Debug("drop undecodable envelope",
			zap.Stringer("sender", h.SenderID), zap.Stringer("target", h.TargetID),
			zap.Stringer("mode", rcpt.Mode()), zap.Error(err))
		return err
	}

	rcpt.Deliver(&d)
	return nil
}
