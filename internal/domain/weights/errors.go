package weights

import "errors"

// ErrNoHistogram is returned when the generated-events histogram is disabled.
var ErrNoHistogram = errors.New("generated events histogram disabled")
