package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

func TestAppendDedupesAcrossAllThreeQueues(t *testing.T) {
	r := New(voxel.Vec2{})
	r.Append(voxel.Vec2{X: 1, Z: 0})
	r.Append(voxel.Vec2{X: 1, Z: 0})
	require.Equal(t, 1, r.PendingLen())

	r.Promote(1, func(voxel.Vec2) {})
	require.Equal(t, 0, r.PendingLen())
	require.Equal(t, 1, r.WaitingLen())

	r.Append(voxel.Vec2{X: 1, Z: 0})
	assert.Equal(t, 0, r.PendingLen(), "a coordinate already waiting must not be re-queued")

	r.OnChunkReady(voxel.Vec2{X: 1, Z: 0})
	r.Append(voxel.Vec2{X: 1, Z: 0})
	assert.Equal(t, 0, r.PendingLen(), "a coordinate already loaded must not be re-queued")
}

// Pending must always be sorted nearest-first to the client's center.
func TestPromoteDrainsNearestFirst(t *testing.T) {
	r := New(voxel.Vec2{})
	r.Append(voxel.Vec2{X: 5, Z: 5})
	r.Append(voxel.Vec2{X: 1, Z: 0})
	r.Append(voxel.Vec2{X: 2, Z: 0})

	var submitted []voxel.Vec2
	r.Promote(2, func(c voxel.Vec2) { submitted = append(submitted, c) })

	require.Len(t, submitted, 2)
	assert.Equal(t, voxel.Vec2{X: 1, Z: 0}, submitted[0])
	assert.Equal(t, voxel.Vec2{X: 2, Z: 0}, submitted[1])
	assert.Equal(t, 1, r.PendingLen(), "the farthest chunk stays pending when budget is exhausted")
}

// Moving the client's center must re-sort pending by the new distance,
// per spec.md 4.6's "re-sort on chunk-border crossings".
func TestSetCenterResortsPending(t *testing.T) {
	r := New(voxel.Vec2{})
	r.Append(voxel.Vec2{X: 10, Z: 0})
	r.Append(voxel.Vec2{X: -10, Z: 0})

	r.SetCenter(voxel.Vec2{X: -9, Z: 0})

	var submitted []voxel.Vec2
	r.Promote(1, func(c voxel.Vec2) { submitted = append(submitted, c) })
	require.Len(t, submitted, 1)
	assert.Equal(t, voxel.Vec2{X: -10, Z: 0}, submitted[0], "after moving toward (-10,0) it must promote first")
}

func TestOnChunkReadyIgnoresUnrequestedCoord(t *testing.T) {
	r := New(voxel.Vec2{})
	r.OnChunkReady(voxel.Vec2{X: 3, Z: 3})
	assert.Empty(t, r.DrainOutbox(), "a ready notification for a chunk never requested must not enqueue a message")
	assert.False(t, r.IsLoaded(voxel.Vec2{X: 3, Z: 3}))
}

func TestOnChunkReadyMovesWaitingToLoadedAndQueuesMessage(t *testing.T) {
	r := New(voxel.Vec2{})
	r.Append(voxel.Vec2{X: 0, Z: 0})
	r.Promote(1, func(voxel.Vec2) {})

	r.OnChunkReady(voxel.Vec2{X: 0, Z: 0})

	assert.Equal(t, 0, r.WaitingLen())
	assert.True(t, r.IsLoaded(voxel.Vec2{X: 0, Z: 0}))

	out := r.DrainOutbox()
	require.Len(t, out, 1)
	assert.Equal(t, voxel.Vec2{X: 0, Z: 0}, out[0].Coord)
	assert.Empty(t, r.DrainOutbox(), "DrainOutbox must drain, not just peek")
}

// Unload must remove coord regardless of which queue currently holds
// it, and record the departure for the dispatcher to act on.
func TestUnloadRemovesFromAnyQueue(t *testing.T) {
	r := New(voxel.Vec2{})
	r.Append(voxel.Vec2{X: 1, Z: 1})
	r.Unload(voxel.Vec2{X: 1, Z: 1})
	assert.Equal(t, 0, r.PendingLen())

	r.Append(voxel.Vec2{X: 2, Z: 2})
	r.Promote(1, func(voxel.Vec2) {})
	r.Unload(voxel.Vec2{X: 2, Z: 2})
	assert.Equal(t, 0, r.WaitingLen())

	r.Append(voxel.Vec2{X: 3, Z: 3})
	r.Promote(1, func(voxel.Vec2) {})
	r.OnChunkReady(voxel.Vec2{X: 3, Z: 3})
	r.Unload(voxel.Vec2{X: 3, Z: 3})
	assert.Equal(t, 0, r.LoadedLen())

	unloads := r.DrainUnloads()
	assert.ElementsMatch(t, []voxel.Vec2{{X: 1, Z: 1}, {X: 2, Z: 2}, {X: 3, Z: 3}}, unloads)
	assert.Empty(t, r.DrainUnloads(), "DrainUnloads must drain, not just peek")
}
