// Package pipeline sequences a chunk through the Empty -> Generating ->
// Meshing -> Ready stair, dispatching maximal ready frontiers to a
// worker pool each tick. Grounded on the stage/neighbor-radius/promotion
// model and on original_source/examples/server/{main,generator/{tree,
// water}}.rs for the built-in terminal stages.
package pipeline

import (
	"context"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// Needs declares which neighbor data a stage reads through its Space.
type Needs struct {
	Voxels  bool
	Lights  bool
	Heights bool
}

// Stage is one named step of the pipeline. NeighborRadius is how many
// chunks beyond the target this stage reads from; the scheduler only
// runs a stage on a chunk once every chunk within that radius has
// completed the immediately preceding stage.
type Stage interface {
	Name() string
	NeighborRadius() int32
	Needs() Needs
	Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error
}

func (n Needs) options(strict bool, required voxel.Status) chunkstore.SpaceOptions {
	return chunkstore.SpaceOptions{
		Strict:        strict,
		RequiredStage: required,
		NeedVoxels:    n.Voxels,
		NeedLights:    n.Lights,
		NeedHeights:   n.Heights,
	}
}
