// Package voxel holds the packed voxel/light words and the Chunk that
// stores them, grounded on the 32-bit voxel layout and packed light word
// described in the engine's data model.
package voxel

// Voxel is the packed 32-bit word for a single block:
//
//	bits  0..15  block id          (u16, 0 = air)
//	bits 16..19  primary rotation face (0..5)
//	bits 20..23  yaw rotation segment  (0..YRotSegments-1)
//	bits 24..27  stage               (0..15)
//	bits 28..31  reserved
type Voxel uint32

const (
	idMask        = 0xFFFF
	idShift       = 0
	rotationMask  = 0xF
	rotationShift = 16
	yawMask       = 0xF
	yawShift      = 20
	stageMask     = 0xF
	stageShift    = 24
)

// YRotSegments is the number of yaw rotation segments a voxel can be
// rotated into.
const YRotSegments = 16

// RotationFace enumerates the six primary rotation faces in the order
// required by the data model: ±Y, ±X, ±Z.
type RotationFace uint8

const (
	RotationPY RotationFace = iota
	RotationNY
	RotationPX
	RotationNX
	RotationPZ
	RotationNZ
)

// ExtractID returns the block id packed into v.
func ExtractID(v Voxel) uint32 {
	return uint32(v>>idShift) & idMask
}

// InsertID returns v with its block id field replaced by id.
// id is masked to 16 bits; callers needing overflow detection should
// check id <= 0xFFFF themselves, matching the bit-packing round-trip
// property in the spec's testable properties.
func InsertID(v Voxel, id uint32) Voxel {
	return Voxel(uint32(v)&^(idMask<<idShift) | ((id & idMask) << idShift))
}

// ExtractRotation returns the primary rotation face packed into v.
func ExtractRotation(v Voxel) RotationFace {
	return RotationFace(uint32(v>>rotationShift) & rotationMask)
}

// InsertRotation returns v with its rotation field replaced by face.
func InsertRotation(v Voxel, face RotationFace) Voxel {
	return Voxel(uint32(v)&^(rotationMask<<rotationShift) | ((uint32(face) & rotationMask) << rotationShift))
}

// ExtractYRotation returns the yaw rotation segment packed into v.
func ExtractYRotation(v Voxel) uint32 {
	return uint32(v>>yawShift) & yawMask
}

// InsertYRotation returns v with its yaw segment replaced by seg.
func InsertYRotation(v Voxel, seg uint32) Voxel {
	return Voxel(uint32(v)&^(yawMask<<yawShift) | ((seg & yawMask) << yawShift))
}

// ExtractStage returns the stage field packed into v.
func ExtractStage(v Voxel) uint32 {
	return uint32(v>>stageShift) & stageMask
}

// InsertStage returns v with its stage field replaced by stage.
// It returns ErrOutOfRange if stage exceeds 15, per the registry's
// insert_stage contract.
func InsertStage(v Voxel, stage uint32) (Voxel, error) {
	if stage > stageMask {
		return v, ErrOutOfRange
	}
	return Voxel(uint32(v)&^(stageMask<<stageShift) | ((stage & stageMask) << stageShift)), nil
}

// IsAir reports whether the voxel's block id is 0.
func IsAir(v Voxel) bool {
	return ExtractID(v) == 0
}
