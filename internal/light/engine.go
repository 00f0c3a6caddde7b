// Package light implements the four-channel (sunlight + R/G/B
// torchlight) flood/unflood/propagate algorithms described in the
// engine's light model, grounded bit-for-bit on
// original_source/crates/core/src/light.rs and voxelize's lighter crate
// (flood_light/remove_light/propagate naming).
package light

import (
	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// MaxLevel is the ceiling for any light channel.
const MaxLevel = 15

// faceOrder is the fixed neighbor examination order required for
// deterministic propagation: +X, -X, +Z, -Z, +Y, -Y. The y-last order
// is what makes sunlight descent well-behaved, per the spec.
var faceOrder = [6]registry.Face{
	registry.FacePX, registry.FaceNX,
	registry.FacePZ, registry.FaceNZ,
	registry.FacePY, registry.FaceNY,
}

// Region bounds a flood/unflood/propagate operation; Max is exclusive.
type Region struct {
	Min, Max voxel.Vec3
}

// Contains reports whether v lies within the region.
func (r Region) Contains(v voxel.Vec3) bool {
	return v.X >= r.Min.X && v.X < r.Max.X &&
		v.Y >= r.Min.Y && v.Y < r.Max.Y &&
		v.Z >= r.Min.Z && v.Z < r.Max.Z
}

// Node is one entry in a flood/unflood BFS queue.
type Node struct {
	Pos   voxel.Vec3
	Level uint8
}

// Engine runs the flood/unflood/propagate algorithms over a Space,
// reading block transparency and emission from Registry.
type Engine struct {
	Reg *registry.Registry
}

// NewEngine constructs a light Engine bound to reg.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{Reg: reg}
}

// canExit reports whether light can leave a voxel of id through face f.
func (e *Engine) canExit(id uint32, f registry.Face) bool {
	return e.Reg.GetTransparency(id)[f]
}

// canEnter reports whether light can enter a voxel of id through face f
// (i.e. from the direction opposite f, crossing face f into the voxel).
func (e *Engine) canEnter(id uint32, f registry.Face) bool {
	return e.Reg.GetTransparency(id)[f]
}

func (e *Engine) level(space *chunkstore.Space, color voxel.LightColor, v voxel.Vec3) uint8 {
	if color == voxel.Sunlight {
		return space.GetRawLight(v).ExtractSunlight()
	}
	return space.GetRawLight(v).Extract(color)
}

func (e *Engine) setLevel(space *chunkstore.Space, color voxel.LightColor, v voxel.Vec3, level uint8) {
	cur := space.GetRawLight(v)
	if color == voxel.Sunlight {
		space.SetRawLight(v, cur.InsertSunlight(level))
		return
	}
	space.SetRawLight(v, cur.Insert(color, level))
}

// Flood runs the classic level-decrement BFS described in the spec: pop
// (voxel, level) from the FIFO queue, examine the six neighbors in
// faceOrder, and for each allowed step, if the neighbor's current level
// is lower than the new level, write it and enqueue the neighbor.
func (e *Engine) Flood(space *chunkstore.Space, color voxel.LightColor, queue []Node, region Region) {
	q := append([]Node(nil), queue...)
	for len(q) > 0 {
		n := q[0]
		q = q[1:]

		if !region.Contains(n.Pos) {
			continue
		}

		sourceID := voxel.ExtractID(space.GetRawVoxel(n.Pos))

		for _, f := range faceOrder {
			dx, dy, dz := f.Delta()
			np := voxel.Vec3{X: n.Pos.X + dx, Y: n.Pos.Y + dy, Z: n.Pos.Z + dz}
			if !region.Contains(np) {
				continue
			}
			if !e.canExit(sourceID, f) {
				continue
			}
			targetID := voxel.ExtractID(space.GetRawVoxel(np))
			if !e.canEnter(targetID, f.Opposite()) {
				continue
			}

			newLevel := n.Level - 1
			if n.Level == 0 {
				newLevel = 0
			}
			// Sunlight descent: a -Y step through a fully-transparent
			// source face does not decrement, so a clear sky column
			// stays at max level all the way down.
			if color == voxel.Sunlight && f == registry.FaceNY && n.Level == MaxLevel {
				newLevel = MaxLevel
			}

			if e.level(space, color, np) < newLevel {
				e.setLevel(space, color, np, newLevel)
				q = append(q, Node{Pos: np, Level: newLevel})
			}
		}
	}
}

// Unflood removes light originating from sources (each carrying its
// prior level) and then reflood the boundary so residual light from
// other, still-live sources refills correctly.
func (e *Engine) Unflood(space *chunkstore.Space, color voxel.LightColor, sources []Node, region Region) {
	removeQueue := append([]Node(nil), sources...)
	var refloodQueue []Node

	for _, s := range sources {
		e.setLevel(space, color, s.Pos, 0)
	}

	for len(removeQueue) > 0 {
		n := removeQueue[0]
		removeQueue = removeQueue[1:]

		if !region.Contains(n.Pos) {
			continue
		}

		for _, f := range faceOrder {
			dx, dy, dz := f.Delta()
			np := voxel.Vec3{X: n.Pos.X + dx, Y: n.Pos.Y + dy, Z: n.Pos.Z + dz}
			if !region.Contains(np) {
				continue
			}

			nLevel := e.level(space, color, np)
			if nLevel == 0 {
				continue
			}

			if nLevel < n.Level {
				// This neighbor's light can only have come from the
				// source we're unflooding: dim it to 0 and keep
				// removing from it.
				e.setLevel(space, color, np, 0)
				removeQueue = append(removeQueue, Node{Pos: np, Level: nLevel})
			} else {
				// This neighbor is at least as bright as the source
				// being removed, so it must have an independent (or
				// equally strong) light path: queue it to reflood the
				// region we just cleared.
				refloodQueue = append(refloodQueue, Node{Pos: np, Level: nLevel})
			}
		}
	}

	e.Flood(space, color, refloodQueue, region)
}

// Propagate fully (re)initializes all four light channels over the
// rectangular prism [min, min+shape): it clears the region, seeds every
// source voxel (emissive blocks and fully-lit sky columns) from block
// definitions, then floods all four channels. The space must be strict.
func (e *Engine) Propagate(space *chunkstore.Space, min, shape voxel.Vec3) error {
	region := Region{Min: min, Max: voxel.Vec3{X: min.X + shape.X, Y: min.Y + shape.Y, Z: min.Z + shape.Z}}

	for x := region.Min.X; x < region.Max.X; x++ {
		for y := region.Min.Y; y < region.Max.Y; y++ {
			for z := region.Min.Z; z < region.Max.Z; z++ {
				v := voxel.Vec3{X: x, Y: y, Z: z}
				space.SetRawLight(v, 0)
			}
		}
	}

	var sunQueue, redQueue, greenQueue, blueQueue []Node

	for x := region.Min.X; x < region.Max.X; x++ {
		for z := region.Min.Z; z < region.Max.Z; z++ {
			maxHeight := space.GetMaxHeight(x, z)
			for y := region.Max.Y - 1; y >= region.Min.Y; y-- {
				v := voxel.Vec3{X: x, Y: y, Z: z}
				id := voxel.ExtractID(space.GetRawVoxel(v))
				desc := e.Reg.BlockByID(id)

				if y >= maxHeight {
					e.setLevel(space, voxel.Sunlight, v, MaxLevel)
					sunQueue = append(sunQueue, Node{Pos: v, Level: MaxLevel})
				}

				if desc != nil && desc.IsEmissive() {
					if desc.EmitRed > 0 {
						e.setLevel(space, voxel.Red, v, desc.EmitRed)
						redQueue = append(redQueue, Node{Pos: v, Level: desc.EmitRed})
					}
					if desc.EmitGreen > 0 {
						e.setLevel(space, voxel.Green, v, desc.EmitGreen)
						greenQueue = append(greenQueue, Node{Pos: v, Level: desc.EmitGreen})
					}
					if desc.EmitBlue > 0 {
						e.setLevel(space, voxel.Blue, v, desc.EmitBlue)
						blueQueue = append(blueQueue, Node{Pos: v, Level: desc.EmitBlue})
					}
				}
			}
		}
	}

	e.Flood(space, voxel.Sunlight, sunQueue, region)
	e.Flood(space, voxel.Red, redQueue, region)
	e.Flood(space, voxel.Green, greenQueue, region)
	e.Flood(space, voxel.Blue, blueQueue, region)

	return nil
}
