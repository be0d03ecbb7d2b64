package app

import "errors"

// ErrAlreadyRun is returned when Run is called twice on one Runner.
var ErrAlreadyRun = errors.New("runner already run")
