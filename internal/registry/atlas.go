package registry

import "sync"

// UVRect is a sub-rectangle of a texture atlas in normalized [0,1]
// coordinates, the unit a mesher corner's UV is remapped into once an
// atlas entry exists for its block+face.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// AtlasKey names one block+face entry in a TextureAtlas.
type AtlasKey struct {
	BlockID uint32
	Face    Face
}

// TextureAtlas maps a block id and face to the UV sub-rectangle that
// block's face occupies in a shared atlas texture, letting every block
// share one texture binding instead of one per block, the same role
// GetTextureLayer plays for a texture-array renderer.
type TextureAtlas struct {
	mu      sync.RWMutex
	entries map[AtlasKey]UVRect
}

// NewTextureAtlas returns an empty TextureAtlas.
func NewTextureAtlas() *TextureAtlas {
	return &TextureAtlas{entries: make(map[AtlasKey]UVRect)}
}

// Set records the atlas rectangle for blockID's face.
func (a *TextureAtlas) Set(blockID uint32, face Face, rect UVRect) {
	a.mu.Lock()
	a.entries[AtlasKey{BlockID: blockID, Face: face}] = rect
	a.mu.Unlock()
}

// Rect returns the atlas rectangle for blockID's face, if one was set.
func (a *TextureAtlas) Rect(blockID uint32, face Face) (UVRect, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rect, ok := a.entries[AtlasKey{BlockID: blockID, Face: face}]
	return rect, ok
}

// Remap maps a face template's unit-square uv (each component in [0,1])
// into blockID's face's atlas rectangle. uv is returned unchanged if no
// rectangle was set, so an atlas-less mesher keeps emitting raw
// unit-square UVs.
func (a *TextureAtlas) Remap(blockID uint32, face Face, uv [2]float32) [2]float32 {
	rect, ok := a.Rect(blockID, face)
	if !ok {
		return uv
	}
	return [2]float32{
		rect.U0 + uv[0]*(rect.U1-rect.U0),
		rect.V0 + uv[1]*(rect.V1-rect.V0),
	}
}

// NewGridAtlas builds a TextureAtlas where every entry in assignments is
// placed on a tilesPerRow x tilesPerRow grid at its given tile index,
// the common "one texture per grid cell" atlas layout.
func NewGridAtlas(tilesPerRow int32, assignments map[AtlasKey]int32) *TextureAtlas {
	a := NewTextureAtlas()
	if tilesPerRow <= 0 {
		return a
	}
	step := float32(1) / float32(tilesPerRow)
	for key, tile := range assignments {
		col := tile % tilesPerRow
		row := tile / tilesPerRow
		a.Set(key.BlockID, key.Face, UVRect{
			U0: float32(col) * step,
			V0: float32(row) * step,
			U1: float32(col+1) * step,
			V1: float32(row+1) * step,
		})
	}
	return a
}
