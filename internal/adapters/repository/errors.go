package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	ErrLoadSnapshot      = errors.New("load snapshot failed")
	ErrQuery             = errors.New("store query failed")
)
