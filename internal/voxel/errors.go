package voxel

import "errors"

// ErrOutOfRange is returned by InsertStage when the requested stage value
// does not fit the 4-bit stage field.
var ErrOutOfRange = errors.New("voxel: stage value out of range")
