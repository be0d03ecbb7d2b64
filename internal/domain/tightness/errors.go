package tightness

import "errors"

// Sentinel kinds for tightness configuration errors.
var (
	ErrUnknownWorkingPoint = errors.New("unknown working point")
)
