package registry

// cubeCorner builds a Corner at local position (cu, cv) mapped onto axes
// uAxis/vAxis, offset from the face's base plane.
func cubeCorner(base [3]float32, uAxis, vAxis [3]float32, cu, cv float32, uv [2]float32) Corner {
	return Corner{
		Pos: [3]float32{
			base[0] + uAxis[0]*cu + vAxis[0]*cv,
			base[1] + uAxis[1]*cu + vAxis[1]*cv,
			base[2] + uAxis[2]*cu + vAxis[2]*cv,
		},
		UV: uv,
	}
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// StandardCubeFaces returns the six unrotated, full-cube face templates
// shared by every simple block (stone, dirt, ...), in PX,NX,PY,NY,PZ,NZ
// order, corners ordered CCW as seen from outside the cube. The (u,v)
// axis choice per face must match mesher.faceTangents so AO neighbor
// lookups line up with which corner is which.
func StandardCubeFaces() [6]FaceTemplate {
	mk := func(f Face, base [3]float32, uAxis, vAxis [3]float32) FaceTemplate {
		return FaceTemplate{
			Face: f,
			Corners: [4]Corner{
				cubeCorner(base, uAxis, vAxis, 0, 0, quadUVs[0]),
				cubeCorner(base, uAxis, vAxis, 1, 0, quadUVs[1]),
				cubeCorner(base, uAxis, vAxis, 1, 1, quadUVs[2]),
				cubeCorner(base, uAxis, vAxis, 0, 1, quadUVs[3]),
			},
		}
	}

	return [6]FaceTemplate{
		mk(FacePX, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}),
		mk(FaceNX, [3]float32{0, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}),
		mk(FacePY, [3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}),
		mk(FaceNY, [3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}),
		mk(FacePZ, [3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}),
		mk(FaceNZ, [3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}),
	}
}
