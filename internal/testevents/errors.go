package testevents

import "errors"

// ErrInvalidConfig is returned when a generator configuration is unusable.
var ErrInvalidConfig = errors.New("invalid generator config")
