// Package registry holds the immutable block catalog: face geometry,
// light emission, and per-face transparency, grounded on
// original_source/crates/voxelize/src/registry.rs and block/faces.rs.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrDuplicateID is returned by Register when a block id is already
// registered. The original Rust registry panics on this condition; the
// Go port turns it into a recoverable, fatal-at-startup error instead.
var ErrDuplicateID = errors.New("registry: duplicate block id")

// ErrDuplicateName is returned by Register when a block name (normalized
// lowercase) is already registered.
var ErrDuplicateName = errors.New("registry: duplicate block name")

// ErrSealed is returned by Register once the registry has been sealed.
var ErrSealed = errors.New("registry: registry is sealed")

// Face indexes the six cube faces as +X, -X, +Y, -Y, +Z, -Z; transparency
// masks and face templates use this index order. The light engine
// examines neighbors in its own order (+X, -X, +Z, -Z, +Y, -Y).
type Face uint8

const (
	FacePX Face = iota
	FaceNX
	FacePY
	FaceNY
	FacePZ
	FaceNZ
)

// FaceNames are the diagnostic names for each Face, also used as the
// second half of a mesher MaterialKey.
var FaceNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

func (f Face) String() string { return FaceNames[f] }

// Opposite returns the face directly across the voxel from f.
func (f Face) Opposite() Face {
	switch f {
	case FacePX:
		return FaceNX
	case FaceNX:
		return FacePX
	case FacePY:
		return FaceNY
	case FaceNY:
		return FacePY
	case FacePZ:
		return FaceNZ
	default:
		return FacePZ
	}
}

// Delta returns the unit offset (dx,dy,dz) for f.
func (f Face) Delta() (dx, dy, dz int32) {
	switch f {
	case FacePX:
		return 1, 0, 0
	case FaceNX:
		return -1, 0, 0
	case FacePY:
		return 0, 1, 0
	case FaceNY:
		return 0, -1, 0
	case FacePZ:
		return 0, 0, 1
	default:
		return 0, 0, -1
	}
}

// Corner is one vertex of a face geometry template: a local-space
// position offset plus a UV coordinate, per block/faces.rs's CornerData.
type Corner struct {
	Pos [3]float32
	UV  [2]float32
}

// FaceTemplate is one face's emission template: which direction it
// faces, whether it is meshed independent of neighbor occlusion (used
// for cross-quad foliage), and its four corners.
type FaceTemplate struct {
	Face        Face
	Independent bool
	Corners     [4]Corner
}

// Descriptor is one block's full definition.
type Descriptor struct {
	ID   uint32
	Name string

	// Light emitted by this block, 0..15 per channel.
	EmitRed, EmitGreen, EmitBlue uint8

	// Transparency[f] reports whether light/rendering can pass through
	// face f, in PX,NX,PY,NY,PZ,NZ order.
	Transparency [6]bool

	Passable   bool
	Fluid      bool
	SeeThrough bool

	// AABBs is the list of physics collision boxes, in block-local
	// [0,1]^3 space.
	AABBs [][6]float32 // minX,minY,minZ,maxX,maxY,maxZ

	// Faces is the face geometry template used by the default culled
	// mesher; HeightContributing controls whether this block counts
	// toward a column's max_height.
	Faces              [6]FaceTemplate
	HeightContributing bool

	// CustomMesher, when non-empty, is the name of a custom
	// per-block mesher that should be used instead of the default
	// culled/greedy path (e.g. "cross" for foliage).
	CustomMesher string
}

// IsEmissive reports whether the block emits any torchlight.
func (d Descriptor) IsEmissive() bool {
	return d.EmitRed > 0 || d.EmitGreen > 0 || d.EmitBlue > 0
}

// Registry is the immutable-after-seal block catalog.
type Registry struct {
	mu       sync.RWMutex
	byID     map[uint32]*Descriptor
	byName   map[string]*Descriptor
	sealed   bool
	airBlock uint32
}

// New returns an empty, unsealed Registry. Block id 0 ("air") is
// pre-registered as a fully transparent, passable, non-height
// contributing block, matching the data model's "0 = air" rule.
func New() *Registry {
	r := &Registry{
		byID:   make(map[uint32]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
	air := Descriptor{
		ID:           0,
		Name:         "air",
		Transparency: [6]bool{true, true, true, true, true, true},
		Passable:     true,
		SeeThrough:   true,
	}
	r.byID[0] = &air
	r.byName["air"] = &air
	return r
}

// Register adds a block descriptor to the registry. It fails with
// ErrDuplicateID or ErrDuplicateName (names are normalized lowercase)
// and with ErrSealed once the registry has been sealed.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("%w: %d (%s)", ErrDuplicateID, d.ID, d.Name)
	}
	name := strings.ToLower(d.Name)
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
	}

	cp := d
	r.byID[d.ID] = &cp
	r.byName[name] = &cp
	return nil
}

// Seal freezes the registry; further Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// BlockByID returns the descriptor for id, or nil if unregistered.
func (r *Registry) BlockByID(id uint32) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// BlockByName returns the descriptor for name (case-insensitive), or nil.
func (r *Registry) BlockByName(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[strings.ToLower(name)]
}

// IsAir reports whether id is the air block.
func (r *Registry) IsAir(id uint32) bool {
	return id == 0
}

// IsLight reports whether id emits any torchlight channel.
func (r *Registry) IsLight(id uint32) bool {
	d := r.BlockByID(id)
	return d != nil && d.IsEmissive()
}

// GetTransparency returns the six-face transparency mask for id, in
// PX,NX,PY,NY,PZ,NZ order. An unregistered id is treated as opaque on
// all faces (defensive default — it should never be meshed or lit
// through).
func (r *Registry) GetTransparency(id uint32) [6]bool {
	d := r.BlockByID(id)
	if d == nil {
		return [6]bool{}
	}
	return d.Transparency
}

// All returns every registered descriptor, used to build the INIT
// packet's registry snapshot.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, *d)
	}
	return out
}
