// Package worldgen implements the Generate stage's terrain source:
// seeded hash-lattice value noise combined through spline-mapped
// bias/offset fields, adapted from the teacher's pkg/world noise
// generator shape and grounded on original_source/server/world/
// generators/{terrain,spline,noise}.rs for the layered bias/offset
// combination, with the noise kernel itself following
// dantero-ps-mini-mc-go's internal/world hash2/latticeValue/valueNoise2D
// SplitMix64 lattice approach instead of permutation-table gradient
// noise.
package worldgen

import "math"

// Noise is a seeded 2D/3D value-noise source: integer lattice points are
// hashed directly with a SplitMix64-style mix (no permutation table),
// and samples between lattice points are fade-interpolated across the
// surrounding corners.
type Noise struct {
	seed int64
}

// NewNoise builds a Noise source from seed.
func NewNoise(seed int64) *Noise {
	return &Noise{seed: seed}
}

// hash3 mixes a 3D integer lattice coordinate and the noise's seed into
// a 64-bit value, the 3D generalization of dantero-ps-mini-mc-go's
// hash2(x, z, seed).
func hash3(x, y, z, seed int64) uint64 {
	v := uint64(x) + uint64(y)*0x100000001b3 + uint64(z)<<1 + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// lattice3 returns the lattice value at integer point (x,y,z) as a
// float in [-1, 1].
func lattice3(x, y, z, seed int64) float64 {
	h := hash3(x, y, z, seed)
	return float64(h&0xFFFFFFFF)/float64(0x7FFFFFFF) - 1
}

// fade is the same quintic smoothstep dantero-ps-mini-mc-go's
// valueNoise2D interpolates corners with.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// Noise2D returns 2D value noise at (x, y), in [-1, 1], bilinearly
// interpolating the four surrounding lattice corners.
func (n *Noise) Noise2D(x, y float64) float64 {
	x0 := int64(math.Floor(x))
	y0 := int64(math.Floor(y))
	xf := fade(x - math.Floor(x))
	yf := fade(y - math.Floor(y))

	c00 := lattice3(x0, y0, 0, n.seed)
	c10 := lattice3(x0+1, y0, 0, n.seed)
	c01 := lattice3(x0, y0+1, 0, n.seed)
	c11 := lattice3(x0+1, y0+1, 0, n.seed)

	top := lerp(xf, c00, c10)
	bottom := lerp(xf, c01, c11)
	return lerp(yf, top, bottom)
}

// Noise3D returns 3D value noise at (x, y, z), in [-1, 1], trilinearly
// interpolating the eight surrounding lattice corners.
func (n *Noise) Noise3D(x, y, z float64) float64 {
	x0 := int64(math.Floor(x))
	y0 := int64(math.Floor(y))
	z0 := int64(math.Floor(z))
	xf := fade(x - math.Floor(x))
	yf := fade(y - math.Floor(y))
	zf := fade(z - math.Floor(z))

	c000 := lattice3(x0, y0, z0, n.seed)
	c100 := lattice3(x0+1, y0, z0, n.seed)
	c010 := lattice3(x0, y0+1, z0, n.seed)
	c110 := lattice3(x0+1, y0+1, z0, n.seed)
	c001 := lattice3(x0, y0, z0+1, n.seed)
	c101 := lattice3(x0+1, y0, z0+1, n.seed)
	c011 := lattice3(x0, y0+1, z0+1, n.seed)
	c111 := lattice3(x0+1, y0+1, z0+1, n.seed)

	x00 := lerp(xf, c000, c100)
	x10 := lerp(xf, c010, c110)
	x01 := lerp(xf, c001, c101)
	x11 := lerp(xf, c011, c111)

	y0v := lerp(yf, x00, x10)
	y1v := lerp(yf, x01, x11)

	return lerp(zf, y0v, y1v)
}

// Octave2D sums octaves of Noise2D at increasing frequency and decreasing
// amplitude, the standard fractal-noise combination, matching
// dantero-ps-mini-mc-go's octaveNoise2D.
func (n *Noise) Octave2D(x, y float64, octaves int, lacunarity, persistence float64) float64 {
	var total, amplitude, frequency, maxValue float64
	amplitude, frequency = 1, 1
	for i := 0; i < octaves; i++ {
		total += n.Noise2D(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}
