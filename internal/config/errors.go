package config

import (
	"errors"
)

// Sentinel errors returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrMissingDSN is wrapped together with ErrInvalidConfig when a
	// relational store_driver has no database_dsn.
	ErrMissingDSN = errors.New("database_dsn is required")
)
