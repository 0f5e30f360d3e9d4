package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/okian/hopgraph/internal/adapters/repository"
	service "github.com/okian/hopgraph/internal/app"
	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/model"
	"github.com/okian/hopgraph/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func stint(id, person, org, role int64, start, end *time.Time) model.Stint {
	return model.Stint{ID: id, PersonID: person, OrganizationID: model.ID(org), RoleID: model.ID(role), Start: start, End: end}
}

func education(id, person, school int64, degree string, from, to int) model.EducationRecord {
	return model.EducationRecord{
		ID: id, PersonID: person, SchoolID: model.ID(school), Degree: degree,
		Start: model.DatePtr(from, time.September, 1), End: model.DatePtr(to, time.June, 30),
	}
}

// snapshot: Alice and Bob left Source for Initech; Alice then moved to
// Globex. Vic is the viewer. Eve and Frank are at Globex.
func snapshot() *repository.Snapshot {
	d := model.DatePtr
	return &repository.Snapshot{
		People: []model.Person{
			{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}, {ID: 3, Name: "Carol"},
			{ID: 5, Name: "Eve"}, {ID: 6, Name: "Frank"}, {ID: 9, Name: "Vic"},
		},
		Organizations: []model.Organization{
			{ID: 1, Name: "Source Inc"}, {ID: 2, Name: "Initech"}, {ID: 3, Name: "Globex"}, {ID: 4, Name: "Hooli"},
		},
		Roles:   []model.Role{{ID: 1, Name: "Engineer"}, {ID: 2, Name: "Designer"}},
		Schools: []model.School{{ID: 1, Name: "State University"}, {ID: 2, Name: "Tech Institute"}},
		Stints: []model.Stint{
			stint(10, 1, 1, 1, d(2015, time.January, 1), d(2019, time.June, 30)),
			stint(11, 1, 2, 1, d(2019, time.July, 1), d(2020, time.April, 30)),
			stint(12, 1, 3, 1, d(2020, time.May, 1), nil),
			stint(20, 2, 1, 2, d(2016, time.January, 1), d(2019, time.March, 31)),
			stint(21, 2, 2, 2, d(2019, time.April, 1), nil),
			stint(30, 3, 1, 1, d(2017, time.January, 1), nil),
			stint(50, 5, 3, 2, d(2018, time.January, 1), nil),
			stint(60, 6, 2, 1, d(2013, time.January, 1), d(2016, time.December, 31)),
			stint(61, 6, 3, 1, d(2017, time.January, 1), nil),
			stint(90, 9, 2, 1, d(2012, time.January, 1), d(2014, time.December, 31)),
			stint(91, 9, 4, 1, d(2015, time.January, 1), nil),
		},
		Educations: []model.EducationRecord{
			education(500, 5, 1, "BSc Design", 2010, 2014),
			education(900, 9, 1, "BSc Computer Science", 2010, 2014),
		},
	}
}

func newService() *service.Service {
	svc := service.New(
		service.WithStore(repository.NewMemoryStore(snapshot())),
		service.WithClock(func() time.Time { return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC) }),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then queries fail with ErrNotStarted", func() {
			_, err := svc.SearchOrganizations(context.Background(), "acme")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a service with the default memory store", t, func() {
		svc := service.New(service.WithDefaultHops(2), service.WithMaxHops(5))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then it reports its settings", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["defaultHops"], ShouldEqual, 2)
			So(stats["maxHops"], ShouldEqual, 5)
		})

		Convey("Then an empty store answers with empty results", func() {
			orgs, err := svc.SearchOrganizations(context.Background(), "acme")
			So(err, ShouldBeNil)
			So(orgs, ShouldBeEmpty)
		})
	})

	Convey("Given an unsupported store driver", t, func() {
		svc := service.New(service.WithStoreDriver("mongo", ""))

		Convey("Then Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}

func TestService_SearchOrganizations(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then a fragment matches case-insensitively", func() {
			orgs, err := svc.SearchOrganizations(ctx, "GLOB")
			So(err, ShouldBeNil)
			So(orgs, ShouldHaveLength, 1)
			So(orgs[0].Name, ShouldEqual, "Globex")
		})

		Convey("Then an empty name is rejected", func() {
			_, err := svc.SearchOrganizations(ctx, "  ")
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})
	})
}

func TestService_Transitions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When aggregating the Source cohort", func() {
			out, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1})
			So(err, ShouldBeNil)

			Convey("Then hop 1 is Initech for both leavers", func() {
				So(out, ShouldHaveLength, 2)
				So(out["1"], ShouldHaveLength, 1)
				So(out["1"][0].OrganizationName, ShouldEqual, "Initech")
				So(out["1"][0].Count, ShouldEqual, 2)
				So(out["1"][0].Years, ShouldResemble, []int{2019})
			})

			Convey("Then hop 2 is Globex for Alice", func() {
				So(out["2"], ShouldHaveLength, 1)
				So(out["2"][0].OrganizationID, ShouldEqual, int64(3))
				So(out["2"][0].Years, ShouldResemble, []int{2020})
			})
		})

		Convey("When a role fragment is given", func() {
			out, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1, Role: "design"})
			So(err, ShouldBeNil)
			So(out["1"][0].RoleMatch, ShouldBeTrue)
			So(out["2"][0].RoleMatch, ShouldBeFalse)
		})

		Convey("When the role fragment matches no role", func() {
			out, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1, Role: "astronaut"})
			So(err, ShouldBeNil)
			So(out["1"][0].RoleMatch, ShouldBeFalse)
		})

		Convey("When the window excludes Alice's exit", func() {
			end := model.Date(2019, time.April, 30)
			out, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1, EndDate: &end})
			So(err, ShouldBeNil)
			So(out["1"][0].Count, ShouldEqual, 1)
			So(out, ShouldNotContainKey, "2")
		})

		Convey("When the hop count is limited to one", func() {
			out, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1, Hops: 1})
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1)
		})

		Convey("When the query is invalid", func() {
			start := model.Date(2020, time.January, 1)
			end := model.Date(2019, time.January, 1)
			_, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1, StartDate: &start, EndDate: &end})
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)

			_, err = svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 1, Hops: 99})
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)

			_, err = svc.Transitions(ctx, service.TransitionsQuery{})
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})

		Convey("When nobody left the organization", func() {
			out, err := svc.Transitions(ctx, service.TransitionsQuery{SourceOrgID: 4})
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestService_EmployeeTransitions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		defer svc.Stop()
		ctx := context.Background()
		query := service.EmployeeQuery{SourceOrgID: 1, DestOrgID: 3, Hop: 2}

		Convey("When asking who reached Globex at hop 2", func() {
			out, err := svc.EmployeeTransitions(ctx, query)
			So(err, ShouldBeNil)

			Convey("Then Alice is listed with a labelled history", func() {
				So(out, ShouldHaveLength, 1)
				e := out[0]
				So(e.PersonName, ShouldEqual, "Alice")
				So(e.ExitDate, ShouldEqual, "2019-06-30")
				So(e.TransitionDate, ShouldEqual, "2020-05-01")
				So(e.IsMatch, ShouldBeTrue)
				So(e.FilterMatchDetails, ShouldBeEmpty)
				So(e.History, ShouldHaveLength, 3)
				So(e.History[0].TransitionSegment, ShouldEqual, "source")
				So(e.History[1].TransitionSegment, ShouldEqual, "hop_1")
				So(e.History[2].TransitionSegment, ShouldEqual, "hop_2")
				So(*e.History[2].Role, ShouldEqual, "Engineer")
				So(e.History[2].EndDate, ShouldBeNil)
			})
		})

		Convey("When the viewer filters on a shared past company", func() {
			q := query
			q.ViewerID = model.ID(9)
			q.Filters = connection.Filters{PastCompanies: []string{"Initech"}, TenureOptions: []connection.TenureOption{connection.TenureAnyTime}}
			out, err := svc.EmployeeTransitions(ctx, q)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			So(out[0].IsMatch, ShouldBeTrue)
			So(out[0].FilterMatchDetails, ShouldHaveLength, 1)
			So(out[0].FilterMatchDetails[0].Name, ShouldEqual, "Initech")
		})

		Convey("When the viewer filters on a college Alice never attended", func() {
			q := query
			q.ViewerID = model.ID(9)
			q.Filters = connection.Filters{Colleges: []string{"State University"}}
			out, err := svc.EmployeeTransitions(ctx, q)
			So(err, ShouldBeNil)
			So(out[0].IsMatch, ShouldBeFalse)
		})

		Convey("When the hop is invalid", func() {
			q := query
			q.Hop = 0
			_, err := svc.EmployeeTransitions(ctx, q)
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})
	})
}

func TestService_RelatedBackground(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		defer svc.Stop()
		ctx := context.Background()
		query := service.RelatedQuery{DestOrgIDs: []int64{3, 2}, ViewerID: 9, SourceOrgID: model.ID(1)}

		Convey("When looking up Globex and Initech from the Source cohort", func() {
			out, err := svc.RelatedBackground(ctx, query)
			So(err, ShouldBeNil)

			Convey("Then direct arrivals are excluded", func() {
				So(out["2"].Count, ShouldEqual, 0)
				So(out["2"].Related, ShouldBeEmpty)
			})

			Convey("Then Globex lists Eve by college and Frank by past company", func() {
				g := out["3"]
				So(g.Count, ShouldEqual, 2)
				So(g.MatchCount, ShouldEqual, 2)
				So(g.Related[0].PersonName, ShouldEqual, "Eve")
				So(g.Related[0].ConnectionType, ShouldEqual, "college")
				So(g.Related[1].PersonName, ShouldEqual, "Frank")
				So(g.Related[1].ConnectionType, ShouldEqual, "past_company")
			})
		})

		Convey("When no source organization is given", func() {
			q := query
			q.SourceOrgID = nil
			out, err := svc.RelatedBackground(ctx, q)
			So(err, ShouldBeNil)
			So(out["3"].Count, ShouldEqual, 3)
			So(out["2"].Count, ShouldEqual, 1)
			So(out["2"].Related[0].PersonName, ShouldEqual, "Bob")
		})

		Convey("When filtering on the viewer's college", func() {
			q := query
			q.Filters = connection.Filters{Colleges: []string{"State University"}}
			out, err := svc.RelatedBackground(ctx, q)
			So(err, ShouldBeNil)
			g := out["3"]
			So(g.MatchCount, ShouldEqual, 1)
			So(g.Related[0].PersonName, ShouldEqual, "Eve")
			So(g.Related[0].IsMatch, ShouldBeTrue)
			So(g.Related[1].IsMatch, ShouldBeFalse)
		})

		Convey("When filtering on tenure with-me", func() {
			q := query
			q.Filters = connection.Filters{TenureOptions: []connection.TenureOption{connection.TenureWithMe}}
			out, err := svc.RelatedBackground(ctx, q)
			So(err, ShouldBeNil)

			Convey("Then only people who overlapped the viewer at a shared organization match", func() {
				g := out["3"]
				So(g.Count, ShouldEqual, 2)
				So(g.MatchCount, ShouldEqual, 1)
				So(g.Related[0].PersonName, ShouldEqual, "Frank")
				So(g.Related[0].IsMatch, ShouldBeTrue)
				So(g.Related[0].FilterMatchDetails[0].Name, ShouldEqual, "Initech")
				So(g.Related[1].PersonName, ShouldEqual, "Eve")
				So(g.Related[1].IsMatch, ShouldBeFalse)
			})
		})

		Convey("When filtering on tenure near-me", func() {
			q := query
			q.Filters = connection.Filters{TenureOptions: []connection.TenureOption{connection.TenureNearMe}}

			Convey("Then Frank, who left Initech two years after the viewer, matches by default", func() {
				out, err := svc.RelatedBackground(ctx, q)
				So(err, ShouldBeNil)
				So(out["3"].MatchCount, ShouldEqual, 1)
				So(out["3"].Related[0].PersonName, ShouldEqual, "Frank")
			})

			Convey("Then a one-year tolerance excludes him", func() {
				narrow := service.New(
					service.WithStore(repository.NewMemoryStore(snapshot())),
					service.WithNearMeYears(1),
				)
				So(narrow.Start(ctx), ShouldBeNil)
				defer narrow.Stop()
				out, err := narrow.RelatedBackground(ctx, q)
				So(err, ShouldBeNil)
				So(out["3"].MatchCount, ShouldEqual, 0)
			})
		})

		Convey("When the viewer is missing", func() {
			q := query
			q.ViewerID = 0
			_, err := svc.RelatedBackground(ctx, q)
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})
	})
}
