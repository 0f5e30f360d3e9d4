package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/okian/hopgraph/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func memoryDSN() string {
	return fmt.Sprintf("file:hopgraph%d?mode=memory&cache=shared", dbSeq.Add(1))
}

func TestGormStore(t *testing.T) {
	Convey("Given a sqlite store seeded from a snapshot", t, func() {
		ctx := context.Background()
		store, err := repository.OpenGorm(ctx, repository.DriverSQLite, memoryDSN(),
			repository.WithAutoMigrate(true),
			repository.WithGormLogLevel(gormlogger.Silent),
			repository.WithSnapshot("testdata/snapshot.yaml"))
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		exerciseStore(store)

		Convey("A second import leaves the data untouched", func() {
			snap, err := repository.LoadSnapshot("testdata/snapshot.yaml")
			So(err, ShouldBeNil)
			So(store.Import(ctx, snap), ShouldBeNil)

			people, err := store.People(ctx, []int64{1, 2, 3})
			So(err, ShouldBeNil)
			So(people, ShouldHaveLength, 3)
		})

		Convey("Queries on a closed store fail with ErrQuery", func() {
			So(store.Close(), ShouldBeNil)
			_, err := store.Organizations(ctx)
			So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
		})
	})

	Convey("OpenGorm rejects the memory driver", t, func() {
		_, err := repository.OpenGorm(context.Background(), repository.DriverMemory, "")
		So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
	})
}
