package repository

import (
	"github.com/okian/hopgraph/pkg/logger"
	gormlogger "gorm.io/gorm/logger"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type settings struct {
	log          logger.Logger
	autoMigrate  bool
	gormLogLevel gormlogger.LogLevel
	snapshotPath string
}

// Option applies a configuration option to a Store.
type Option func(*settings)

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAutoMigrate creates missing tables when a relational store opens.
func WithAutoMigrate(enabled bool) Option {
	return func(s *settings) {
		s.autoMigrate = enabled
	}
}

// WithGormLogLevel sets the SQL logging level of relational stores.
func WithGormLogLevel(level gormlogger.LogLevel) Option {
	return func(s *settings) {
		if level > 0 {
			s.gormLogLevel = level
		}
	}
}

// WithSnapshot sets the YAML snapshot loaded by the memory store and
// imported into an empty relational store.
func WithSnapshot(path string) Option {
	return func(s *settings) {
		s.snapshotPath = path
	}
}

func newSettings(opts []Option) settings {
	s := settings{gormLogLevel: gormlogger.Warn}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Named("repository")
	}
	return s
}
