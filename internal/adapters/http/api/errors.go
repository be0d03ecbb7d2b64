package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNoRun            = errors.New("no run in progress")
)
