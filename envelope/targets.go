package envelope

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/oy3o/wire"
)

// Targets maps target IDs to recipients. The session layer adds and removes
// entries as connections come and go while the router reads concurrently;
// no external locking is needed.
type Targets struct {
	m *xsync.Map[uuid.UUID, Recipient]
}

// NewTargets returns an empty Targets.
func NewTargets() *Targets {
	return &Targets{m: xsync.NewMap[uuid.UUID, Recipient]()}
}

// Add registers r under id. An id already in use is ErrDuplicateTarget and
// leaves the existing recipient in place.
func (t *Targets) Add(id uuid.UUID, r Recipient) error {
	if r == nil {
		return errors.Newf("envelope: nil recipient for %s", id)
	}
	if _, loaded := t.m.LoadOrStore(id, r); loaded {
		return errors.Wrapf(wire.ErrDuplicateTarget, "%s", id)
	}
	return nil
}

// Remove unregisters id and reports whether it was present.
func (t *Targets) Remove(id uuid.UUID) bool {
	_, ok := t.m.LoadAndDelete(id)
	return ok
}

// Lookup returns the recipient registered under id.
func (t *Targets) Lookup(id uuid.UUID) (Recipient, bool) {
	return t.m.Load(id)
}

// Len returns the number of registered targets.
func (t *Targets) Len() int { return t.m.Size() }

// Range calls fn for each target until fn returns false. Entries added or
// removed during the walk may or may not be visited.
func (t *Targets) Range(fn func(id uuid.UUID, r Recipient) bool) {
	t.m.Range(fn)
}
