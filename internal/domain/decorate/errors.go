package decorate

import "errors"

// ErrNoRecord is returned when Decorate is called without an input record.
var ErrNoRecord = errors.New("no input record")
