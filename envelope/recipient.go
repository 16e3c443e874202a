package envelope

import "github.com/google/uuid"

// Mode tells the router how a recipient wants its payloads.
type Mode uint8

const (
	// Typed recipients get the payload decoded through the registry.
	Typed Mode = iota
	// Raw recipients get the payload bytes untouched, for forwarding.
	Raw
)

func (m Mode) String() string {
	switch m {
	case Typed:
		return "typed"
	case Raw:
		return "raw"
	}
	return "unknown"
}

// Delivery is one routed message.
type Delivery struct {
	SenderID uuid.UUID
	TargetID uuid.UUID
	Flags    Flags

	// Payload is the decoded value for Typed recipients.
	Payload any
	// Data is the payload for Raw recipients. It aliases the received
	// bytes and is only valid until Deliver returns.
	Data []byte
}

// Recipient is a locally addressable destination. Its Mode also decides
// which envelope variant senders must use when addressing it. Nothing on
// the wire marks the variant, so delivering the wrong one to a recipient is
// undefined: it usually fails to decode, but it may also be delivered as a
// garbled payload.
type Recipient interface {
	Mode() Mode
	Deliver(d *Delivery)
}

type handler struct {
	mode Mode
	fn   func(d *Delivery)
}

func (h handler) Mode() Mode          { return h.mode }
func (h handler) Deliver(d *Delivery) { h.fn(d) }

// HandlerFunc adapts fn to a Recipient of the given mode.
func HandlerFunc(mode Mode, fn func(d *Delivery)) Recipient {
	return handler{mode: mode, fn: fn}
}
