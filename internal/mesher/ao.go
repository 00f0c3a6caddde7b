package mesher

// VertexAO computes the 0..3 ambient-occlusion value for one mesh
// corner from the three neighbors sharing it (two edge-adjacent sides
// plus the diagonal corner voxel), grounded verbatim on
// original_source/crates/voxelize/src/mesher/vertex.rs's vertex_ao.
//
// side1, side2 and corner each report whether that neighbor is
// transparent (light/rendering passes through it). If both sides are
// opaque the corner is fully occluded regardless of the diagonal voxel,
// matching the documented rule "ao = 0 iff both adjacent sides are
// opaque".
func VertexAO(side1Transparent, side2Transparent, cornerTransparent bool) int {
	opaque1 := b2i(!side1Transparent)
	opaque2 := b2i(!side2Transparent)
	opaqueC := b2i(!cornerTransparent)

	if opaque1 == 1 && opaque2 == 1 {
		return 0
	}
	return 3 - (opaque1 + opaque2 + opaqueC)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
