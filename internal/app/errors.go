package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrInvalidQuery = errors.New("invalid query")
	ErrNotStarted   = errors.New("service not started")
)
