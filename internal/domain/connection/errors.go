package connection

import "errors"

// Sentinel kinds for connection filter errors.
var (
	ErrUnknownOption = errors.New("unknown filter option")
)
