package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/workerpool"
)

// noopStage advances a chunk unconditionally; only its name and radius
// matter to the scheduler.
type noopStage struct {
	name   string
	radius int32
	needs  Needs
}

func (s noopStage) Name() string           { return s.name }
func (s noopStage) NeighborRadius() int32   { return s.radius }
func (s noopStage) Needs() Needs            { return s.needs }
func (s noopStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	return nil
}

func testDims() voxel.Dimensions {
	return voxel.Dimensions{ChunkSize: 4, MaxHeight: 4, SubChunks: 1, MaxLightLevel: 15}
}

// A 5x5 block of chunks is requested simultaneously. Stage A has
// neighbor_radius=0 so every chunk promotes to it in the first pass;
// stage B has neighbor_radius=2, which only the center chunk (2,2) can
// satisfy since it is the only coordinate whose full radius-2
// neighborhood lies inside the requested 5x5 block. Matches spec.md 8's
// "Stage barrier" end-to-end scenario.
func TestPipelineStageBarrierOnlyCenterPromotes(t *testing.T) {
	dims := testDims()
	bounds := chunkstore.Bounds{Min: voxel.Vec2{X: -10, Z: -10}, Max: voxel.Vec2{X: 10, Z: 10}}
	store := chunkstore.New(dims, bounds)

	var coords []voxel.Vec2
	for x := int32(0); x < 5; x++ {
		for z := int32(0); z < 5; z++ {
			c := voxel.Vec2{X: x, Z: z}
			_, err := store.GetOrCreate(c)
			require.NoError(t, err)
			coords = append(coords, c)
		}
	}

	stageA := noopStage{name: "A", radius: 0}
	stageB := noopStage{name: "B", radius: 2}
	stageMesh := noopStage{name: "mesh-placeholder", radius: 0}

	p := New(store, workerpool.New(0), Config{MaxChunksPerTick: 0, MaxRetries: 3}, stageA, nil, stageB, stageMesh)
	// MaxChunksPerTick<=0 means the whole coordinate set is the budget
	// for a single Tick call, and that budget is shared across every
	// stage index processed within it; stage A alone consumes it all
	// here, so stage B's promotion happens on the following tick.
	p.Tick(context.Background(), coords)
	p.Tick(context.Background(), coords)

	center := voxel.Vec2{X: 2, Z: 2}
	for _, c := range coords {
		completed := p.completedIndex(c)
		if c == center {
			assert.GreaterOrEqual(t, completed, 2, "center chunk must clear both stage A and stage B in one promotion cycle")
			continue
		}
		assert.Equal(t, 1, completed, "non-center chunk %v must only have cleared stage A", c)
	}
}

// A dirtied Ready chunk must rewind to the Mesh stage (not Generate),
// leaving its voxels untouched and only re-triggering re-meshing.
func TestPipelineDirtyRewindsToMeshStageOnly(t *testing.T) {
	dims := testDims()
	bounds := chunkstore.Bounds{Min: voxel.Vec2{}, Max: voxel.Vec2{}}
	store := chunkstore.New(dims, bounds)
	coord := voxel.Vec2{}
	chunk, err := store.GetOrCreate(coord)
	require.NoError(t, err)

	stageA := noopStage{name: "Generate", radius: 0}
	stageLight := noopStage{name: "Light", radius: 1}
	stageMesh := noopStage{name: "Mesh", radius: 1}
	p := New(store, workerpool.New(0), Config{MaxRetries: 3}, stageA, nil, stageLight, stageMesh)

	p.mu.Lock()
	p.stageIndex[coord] = p.meshIndex() + 1 // simulate a fully Ready chunk
	p.mu.Unlock()
	chunk.SetStatus(voxel.StatusReady)

	p.Dirty(coord)

	assert.Equal(t, p.meshIndex(), p.completedIndex(coord))
	assert.Equal(t, voxel.StatusMeshing, chunk.Status())
}
