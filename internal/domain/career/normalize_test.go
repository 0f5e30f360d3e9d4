package career_test

import (
	"testing"
	"time"

	"github.com/okian/hopgraph/internal/domain/career"
	"github.com/okian/hopgraph/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	orgS  = 1
	orgT1 = 2
	orgT2 = 3
)

func stint(id, org int64, role int64, start, end *time.Time) model.Stint {
	s := model.Stint{ID: id, PersonID: 100, OrganizationID: model.ID(org), Start: start, End: end}
	if role != 0 {
		s.RoleID = model.ID(role)
	}
	return s
}

func d(y int, m time.Month) *time.Time { return model.DatePtr(y, m, 1) }

func TestNormalize(t *testing.T) {
	Convey("Given a person who left S for T1 and then T2", t, func() {
		exit := stint(1, orgS, 10, d(2015, time.January), d(2019, time.March))
		stints := []model.Stint{
			exit,
			stint(2, orgT1, 11, d(2019, time.April), d(2020, time.February)),
			stint(3, orgT2, 12, d(2020, time.March), nil),
		}

		path := career.Normalize(stints, exit, orgS)

		Convey("Then it has two hops in order", func() {
			So(path.Len(), ShouldEqual, 2)
			So(path.Hops[0].OrganizationID, ShouldEqual, orgT1)
			So(path.Hops[1].OrganizationID, ShouldEqual, orgT2)
			So(path.Hops[0].Start, ShouldEqual, *d(2019, time.April))
			So(path.Internal, ShouldBeEmpty)
		})

		Convey("Then hops are addressable by 1-based number", func() {
			h, ok := path.At(2)
			So(ok, ShouldBeTrue)
			So(h.OrganizationID, ShouldEqual, orgT2)
			_, ok = path.At(3)
			So(ok, ShouldBeFalse)
			_, ok = path.At(0)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given role changes inside one organization", t, func() {
		exit := stint(1, orgS, 0, d(2015, time.January), d(2019, time.March))
		stints := []model.Stint{
			exit,
			stint(2, orgT1, 21, d(2019, time.April), d(2020, time.January)),
			stint(3, orgT1, 20, d(2020, time.January), d(2021, time.January)),
			stint(4, orgT1, 21, d(2021, time.January), nil),
		}

		path := career.Normalize(stints, exit, orgS)

		Convey("Then they fold into a single hop with the union of roles", func() {
			So(path.Len(), ShouldEqual, 1)
			So(path.Hops[0].RoleIDs, ShouldResemble, []int64{20, 21})
			So(path.Hops[0].StintIDs, ShouldResemble, []int64{2, 3, 4})
			So(path.Hops[0].HasAnyRole(map[int64]struct{}{20: {}}), ShouldBeTrue)
			So(path.Hops[0].HasAnyRole(map[int64]struct{}{99: {}}), ShouldBeFalse)
		})
	})

	Convey("Given a role change at the source before actually leaving", t, func() {
		exit := stint(1, orgS, 10, d(2015, time.January), d(2018, time.January))
		stints := []model.Stint{
			exit,
			stint(2, orgS, 11, d(2018, time.January), d(2019, time.June)),
			stint(3, orgT1, 12, d(2019, time.July), nil),
		}

		path := career.Normalize(stints, exit, orgS)

		Convey("Then the leading source hop is dropped and remembered as internal", func() {
			So(path.Len(), ShouldEqual, 1)
			So(path.Hops[0].OrganizationID, ShouldEqual, orgT1)
			So(path.Internal, ShouldResemble, []int64{2})
		})

		Convey("Then labels mark source, internal and hop stints", func() {
			labels := path.Labels(exit.ID)
			So(career.SegmentOf(labels, 1), ShouldEqual, career.SegmentSource)
			So(career.SegmentOf(labels, 2), ShouldEqual, career.SegmentInternal)
			So(career.SegmentOf(labels, 3), ShouldEqual, career.HopSegment(1))
			So(career.SegmentOf(labels, 42), ShouldEqual, career.SegmentPrior)
		})
	})

	Convey("Given a return to the source after another employer", t, func() {
		exit := stint(1, orgS, 0, d(2015, time.January), d(2018, time.January))
		stints := []model.Stint{
			exit,
			stint(2, orgT1, 0, d(2018, time.February), d(2019, time.January)),
			stint(3, orgS, 0, d(2019, time.February), nil),
		}

		path := career.Normalize(stints, exit, orgS)

		Convey("Then the later source hop is kept as a transition", func() {
			So(path.Len(), ShouldEqual, 2)
			So(path.Hops[1].OrganizationID, ShouldEqual, orgS)
		})
	})

	Convey("Given stints without dates or organizations", t, func() {
		exit := stint(1, orgS, 0, d(2015, time.January), d(2018, time.January))
		noOrg := model.Stint{ID: 3, PersonID: 100, Start: d(2018, time.June)}
		stints := []model.Stint{
			exit,
			stint(2, orgT1, 0, d(2018, time.February), d(2018, time.May)),
			noOrg,
			stint(4, orgT1, 0, d(2018, time.July), nil),
			stint(5, orgT2, 0, nil, nil),
			stint(6, orgT2, 0, d(2010, time.January), d(2012, time.January)),
		}

		path := career.Normalize(stints, exit, orgS)

		Convey("Then they neither start nor extend a hop", func() {
			So(path.Len(), ShouldEqual, 1)
			So(path.Hops[0].StintIDs, ShouldResemble, []int64{2, 4})
		})
	})

	Convey("Given a person who never worked anywhere after the exit", t, func() {
		exit := stint(1, orgS, 0, d(2015, time.January), d(2018, time.January))

		Convey("Then the path is empty", func() {
			So(career.Normalize([]model.Stint{exit}, exit, orgS).Len(), ShouldEqual, 0)
		})
	})

	Convey("Given an anchor without an end date", t, func() {
		current := stint(1, orgS, 0, d(2015, time.January), nil)
		later := stint(2, orgT1, 0, d(2016, time.January), nil)

		Convey("Then nothing is normalized", func() {
			So(career.Normalize([]model.Stint{current, later}, current, orgS).Len(), ShouldEqual, 0)
		})
	})
}

func TestNormalizeInvariants(t *testing.T) {
	Convey("Given a noisy history with ties and alternating employers", t, func() {
		exit := stint(1, orgS, 0, d(2010, time.January), d(2012, time.January))
		stints := []model.Stint{
			stint(9, orgT2, 0, d(2014, time.January), nil),
			stint(8, orgT1, 0, d(2014, time.January), nil),
			exit,
			stint(7, orgS, 0, d(2012, time.January), d(2012, time.June)),
			stint(6, orgT1, 0, d(2012, time.July), d(2013, time.January)),
			stint(5, orgT1, 0, d(2013, time.January), d(2013, time.December)),
		}

		path := career.Normalize(stints, exit, orgS)

		Convey("Then starts never decrease and adjacent hops differ", func() {
			for i := 1; i < len(path.Hops); i++ {
				So(path.Hops[i].Start.Before(path.Hops[i-1].Start), ShouldBeFalse)
				So(path.Hops[i].OrganizationID, ShouldNotEqual, path.Hops[i-1].OrganizationID)
			}
		})

		Convey("Then no leading hop is the source organization", func() {
			So(path.Hops[0].OrganizationID, ShouldNotEqual, orgS)
		})

		Convey("Then ties on start date are broken by stint id", func() {
			So(path.Hops[0].StintIDs, ShouldResemble, []int64{6, 5, 8})
			So(path.Hops[1].OrganizationID, ShouldEqual, orgT2)
		})
	})
}
