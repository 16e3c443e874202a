package envelope

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/wire"
)

func nop(*Delivery) {}

func TestTargets(t *testing.T) {
	ts := NewTargets()
	first := HandlerFunc(Typed, nop)
	require.NoError(t, ts.Add(targetID, first))

	err := ts.Add(targetID, HandlerFunc(Raw, nop))
	assert.ErrorIs(t, err, wire.ErrDuplicateTarget)
	got, ok := ts.Lookup(targetID)
	require.True(t, ok)
	assert.Equal(t, Typed, got.Mode(), "existing recipient kept")

	assert.Error(t, ts.Add(senderID, nil))

	require.NoError(t, ts.Add(senderID, HandlerFunc(Raw, nop)))
	assert.Equal(t, 2, ts.Len())

	seen := map[uuid.UUID]Mode{}
	ts.Range(func(id uuid.UUID, r Recipient) bool {
		seen[id] = r.Mode()
		return true
	})
	assert.Equal(t, map[uuid.UUID]Mode{targetID: Typed, senderID: Raw}, seen)

	assert.True(t, ts.Remove(targetID))
	assert.False(t, ts.Remove(targetID))
	_, ok = ts.Lookup(targetID)
	assert.False(t, ok)
	assert.Equal(t, 1, ts.Len())
}

func TestTargetsConcurrent(t *testing.T) {
	ts := NewTargets()
	ids := make([]uuid.UUID, 64)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(2)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, ts.Add(id, HandlerFunc(Typed, nop)))
		}(ids[i])
		go func(id uuid.UUID) {
			defer wg.Done()
			ts.Lookup(id)
		}(ids[i])
	}
	wg.Wait()
	assert.Equal(t, len(ids), ts.Len())

	for i := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.True(t, ts.Remove(id))
		}(ids[i])
	}
	wg.Wait()
	assert.Zero(t, ts.Len())
}
