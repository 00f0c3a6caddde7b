package worldgen

// TerrainLayer maps a low-frequency 2D noise lookup through a pair of
// splines into a height bias and a height offset, grounded on
// original_source/server/world/generators/terrain.rs's TerrainLayer.
type TerrainLayer struct {
	Frequency float64
	biasSpline   *SplineMap
	offsetSpline *SplineMap
}

// NewTerrainLayer returns a layer sampling 2D noise at frequency.
func NewTerrainLayer(frequency float64) *TerrainLayer {
	return &TerrainLayer{
		Frequency:    frequency,
		biasSpline:   NewSplineMap(),
		offsetSpline: NewSplineMap(),
	}
}

// AddBiasPoint adds a control point to this layer's bias spline.
func (l *TerrainLayer) AddBiasPoint(t, value float64) *TerrainLayer {
	l.biasSpline.Add(t, value)
	return l
}

// AddOffsetPoint adds a control point to this layer's offset spline.
func (l *TerrainLayer) AddOffsetPoint(t, value float64) *TerrainLayer {
	l.offsetSpline.Add(t, value)
	return l
}

func (l *TerrainLayer) sampleBias(lookup float64) float64   { return l.biasSpline.Sample(lookup) }
func (l *TerrainLayer) sampleOffset(lookup float64) float64 { return l.offsetSpline.Sample(lookup) }

// Terrain combines a 3D density noise source with a stack of layers that
// bend it via averaged bias/offset, grounded on terrain.rs's
// SeededTerrain.density_at / get_bias_offset.
type Terrain struct {
	noise  *Noise
	layers []*TerrainLayer
}

// NewTerrain returns a Terrain seeded from seed.
func NewTerrain(seed int64) *Terrain {
	return &Terrain{noise: NewNoise(seed)}
}

// AddLayer appends a layer to the bias/offset stack.
func (t *Terrain) AddLayer(l *TerrainLayer) *Terrain {
	t.layers = append(t.layers, l)
	return t
}

// BiasOffset averages every layer's spline-mapped bias and offset at
// world column (x, z).
func (t *Terrain) BiasOffset(x, z int32) (bias, offset float64) {
	if len(t.layers) == 0 {
		return 1, 0
	}
	var sumBias, sumOffset float64
	for _, l := range t.layers {
		lookup := t.noise.Noise2D(float64(x)*l.Frequency, float64(z)*l.Frequency)
		sumBias += l.sampleBias(lookup)
		sumOffset += l.sampleOffset(lookup)
	}
	n := float64(len(t.layers))
	return sumBias / n, sumOffset / n
}

// DensityAt returns the 3D density field value at (x, y, z): 3D noise
// scaled by bias and shifted by offset. Solid voxels are where density is
// positive (the standard density-field-to-voxel convention).
func (t *Terrain) DensityAt(x, y, z int32) float64 {
	bias, offset := t.BiasOffset(x, z)
	return t.noise.Noise3D(float64(x)*0.03, float64(y)*0.03, float64(z)*0.03)*bias + offset
}
