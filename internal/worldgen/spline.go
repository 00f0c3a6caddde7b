package worldgen

import (
	"math"
	"sort"
)

// splineKey is one control point of a SplineMap.
type splineKey struct {
	t, value float64
}

// SplineMap remaps a noise lookup value through a cosine-interpolated
// curve of control points, grounded on
// original_source/server/world/generators/spline.rs's SplineMap (same
// add/rescale/sample shape, cosine interpolation between keys instead of
// the Rust crate's generic spline library).
type SplineMap struct {
	keys   []splineKey
	sorted bool
}

// NewSplineMap returns an empty spline map.
func NewSplineMap() *SplineMap {
	return &SplineMap{}
}

// Add inserts a control point (t, value).
func (s *SplineMap) Add(t, value float64) *SplineMap {
	s.keys = append(s.keys, splineKey{t: t, value: value})
	s.sorted = false
	return s
}

func (s *SplineMap) ensureSorted() {
	if s.sorted {
		return
	}
	sort.Slice(s.keys, func(i, j int) bool { return s.keys[i].t < s.keys[j].t })
	s.sorted = true
}

// Sample interpolates the spline at t, clamping to the first/last key
// outside the defined range. An empty SplineMap samples to 0.
func (s *SplineMap) Sample(t float64) float64 {
	s.ensureSorted()
	if len(s.keys) == 0 {
		return 0
	}
	if len(s.keys) == 1 || t <= s.keys[0].t {
		return s.keys[0].value
	}
	last := s.keys[len(s.keys)-1]
	if t >= last.t {
		return last.value
	}

	for i := 1; i < len(s.keys); i++ {
		if t <= s.keys[i].t {
			a, b := s.keys[i-1], s.keys[i]
			span := b.t - a.t
			if span == 0 {
				return a.value
			}
			f := (t - a.t) / span
			return cosineInterp(f, a.value, b.value)
		}
	}
	return last.value
}

func cosineInterp(f, a, b float64) float64 {
	ft := f * math.Pi
	f2 := (1 - math.Cos(ft)) * 0.5
	return a*(1-f2) + b*f2
}
