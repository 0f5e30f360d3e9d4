package repository

import (
	"context"
	"fmt"
)

// Open returns the store selected by driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return OpenMemoryStore(ctx, opts...)
	case DriverPostgres, DriverSQLite:
		return OpenGorm(ctx, driver, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
