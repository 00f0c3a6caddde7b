package mesher

import (
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// mergeKey groups quads that could potentially merge into a single
// rectangle: same material, same face plane, same layer along the
// face's normal axis, and identical per-vertex AO/light (merging cells
// whose corners differ would bake a visible seam into a single flat
// quad, so a mismatch simply keeps them separate).
type mergeKey struct {
	blockID uint32
	face    registry.Face
	layer   int32
	ao      [4]int
	light   [4]uint32
}

type cell struct {
	u, v int32
	q    quad
}

// greedyMerge merges axis-aligned (unrotated) quads sharing a face plane
// into larger rectangles, the standard 2D greedy-meshing sweep: group by
// plane and signature, then for each ungrouped cell expand first along u
// then along v while the signature keeps matching.
//
// Quads with axisAligned == false (rotated blocks) are passed through
// unmerged, matching the engine's documented simplification that greedy
// meshing only benefits the common unrotated terrain case.
func greedyMerge(quads []quad) []quad {
	var passthrough []quad
	groups := make(map[mergeKey][]cell)
	order := make([]mergeKey, 0)

	for _, q := range quads {
		if !q.axisAligned {
			passthrough = append(passthrough, q)
			continue
		}
		uAxis, vAxis := faceTangents(q.face)
		k := mergeKey{blockID: q.key.BlockID, face: q.face, layer: layerCoord(q.pos, q.face), ao: q.ao, light: q.light}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], cell{u: dotVec3(q.pos, uAxis), v: dotVec3(q.pos, vAxis), q: q})
	}

	out := passthrough
	for _, k := range order {
		out = append(out, mergePlane(k, groups[k])...)
	}
	return out
}

func dotVec3(p voxel.Vec3, axis [3]int32) int32 {
	return p.X*axis[0] + p.Y*axis[1] + p.Z*axis[2]
}

// layerCoord returns the coordinate along f's normal axis, the value
// that is constant across every quad sharing one face plane.
func layerCoord(pos voxel.Vec3, f registry.Face) int32 {
	dx, dy, dz := f.Delta()
	switch {
	case dx != 0:
		return pos.X
	case dy != 0:
		return pos.Y
	default:
		return pos.Z
	}
}

// mergePlane runs the 2D greedy rectangle sweep over one (material,
// face, layer, signature) group of unit cells.
func mergePlane(k mergeKey, cells []cell) []quad {
	if len(cells) == 0 {
		return nil
	}

	byPos := make(map[[2]int32]cell, len(cells))
	var minU, minV, maxU, maxV int32
	first := true
	for _, c := range cells {
		byPos[[2]int32{c.u, c.v}] = c
		if first {
			minU, maxU, minV, maxV = c.u, c.u, c.v, c.v
			first = false
		}
		if c.u < minU {
			minU = c.u
		}
		if c.u > maxU {
			maxU = c.u
		}
		if c.v < minV {
			minV = c.v
		}
		if c.v > maxV {
			maxV = c.v
		}
	}

	visited := make(map[[2]int32]bool, len(cells))
	var out []quad

	for v := minV; v <= maxV; v++ {
		for u := minU; u <= maxU; u++ {
			pos := [2]int32{u, v}
			if visited[pos] {
				continue
			}
			origin, ok := byPos[pos]
			if !ok {
				continue
			}

			width := int32(1)
			for {
				next := [2]int32{u + width, v}
				if visited[next] {
					break
				}
				if _, ok := byPos[next]; !ok {
					break
				}
				width++
			}

			height := int32(1)
		heightLoop:
			for {
				for w := int32(0); w < width; w++ {
					next := [2]int32{u + w, v + height}
					if visited[next] {
						break heightLoop
					}
					if _, ok := byPos[next]; !ok {
						break heightLoop
					}
				}
				height++
			}

			for dv := int32(0); dv < height; dv++ {
				for du := int32(0); du < width; du++ {
					visited[[2]int32{u + du, v + dv}] = true
				}
			}

			out = append(out, buildMergedQuad(origin.q, k.face, width, height))
		}
	}

	return out
}

// buildMergedQuad stretches origin's unit quad into a width x height
// rectangle along its face's tangent axes and tiles its UVs to match.
func buildMergedQuad(origin quad, f registry.Face, width, height int32) quad {
	uAxis, vAxis := faceTangents(f)
	uVec := [3]float32{float32(uAxis[0]), float32(uAxis[1]), float32(uAxis[2])}
	vVec := [3]float32{float32(vAxis[0]), float32(vAxis[1]), float32(vAxis[2])}

	base := origin.corners[0]
	w, h := float32(width), float32(height)

	q := origin
	q.corners[0] = base
	q.corners[1] = addScaled(base, uVec, w)
	q.corners[2] = addScaled(addScaled(base, uVec, w), vVec, h)
	q.corners[3] = addScaled(base, vVec, h)

	// Tile relative to origin's own UV span rather than assuming a raw
	// [0,1] unit square, so an atlas-remapped quad still repeats inside
	// its own sub-rectangle instead of spilling into a neighbor's.
	base2 := origin.uvs[0]
	stepU := [2]float32{origin.uvs[1][0] - base2[0], origin.uvs[1][1] - base2[1]}
	stepV := [2]float32{origin.uvs[3][0] - base2[0], origin.uvs[3][1] - base2[1]}

	q.uvs[0] = base2
	q.uvs[1] = [2]float32{base2[0] + stepU[0]*w, base2[1] + stepU[1]*w}
	q.uvs[2] = [2]float32{base2[0] + stepU[0]*w + stepV[0]*h, base2[1] + stepU[1]*w + stepV[1]*h}
	q.uvs[3] = [2]float32{base2[0] + stepV[0]*h, base2[1] + stepV[1]*h}

	return q
}

func addScaled(p [3]float32, axis [3]float32, s float32) [3]float32 {
	return [3]float32{p[0] + axis[0]*s, p[1] + axis[1]*s, p[2] + axis[2]*s}
}
