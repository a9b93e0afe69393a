package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	service "github.com/okian/matchscout/internal/app"
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
	"github.com/okian/matchscout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func shootSchema() *schema.Schema {
	return schema.MustNew(schema.Definition{
		Name:    "service-test",
		Actions: []schema.ActionDef{{Key: "shoot", Auto: 1, Teleop: 1}},
		Toggles: schema.ToggleDefs{
			Endgame: []schema.ToggleDef{
				{Key: "climbL1", Points: 10, Group: "climb"},
				{Key: "climbL2", Points: 20, Group: "climb"},
			},
		},
	})
}

const endToEndEntry = `{
	"id": "m1-b1",
	"autoData": {"shootCount": 4},
	"teleopData": {"shootCount": 2},
	"endgameRobotStatus": {"climbL2": true},
	"comments": "solid"
}`

func TestService_New(t *testing.T) {
	Convey("Given a service with default options", t, func() {
		svc := service.New()

		Convey("Then it scores the rebuilt-2026 season", func() {
			So(svc.Schema().Name(), ShouldEqual, schema.SeasonRebuilt2026)
			stats := svc.GetStats(context.Background())
			So(stats.Started, ShouldBeFalse)
			So(stats.StoreDriver, ShouldEqual, "memory")
		})
	})

	Convey("Given a service with custom options", t, func() {
		svc := service.New(
			service.WithSchema(shootSchema()),
			service.WithWorkerCount(3),
			service.WithQueueSize(50),
			service.WithDedupeSize(25),
			service.WithStrictExclusivity(true),
		)

		Convey("Then they are reflected in its stats", func() {
			stats := svc.GetStats(context.Background())
			So(stats.Season, ShouldEqual, "service-test")
			So(stats.WorkerCount, ShouldEqual, 3)
			So(stats.QueueSize, ShouldEqual, 50)
			So(stats.DedupeSize, ShouldEqual, 25)
			So(stats.StrictExclusivity, ShouldBeTrue)
		})
	})
}

func TestService_Score(t *testing.T) {
	Convey("Given a stopped service", t, func() {
		svc := service.New(service.WithSchema(shootSchema()))
		ctx := context.Background()

		Convey("When scoring a raw entry synchronously", func() {
			scored, err := svc.Score(ctx, []byte(endToEndEntry))

			Convey("Then the phase totals match", func() {
				So(err, ShouldBeNil)
				So(scored.ID, ShouldEqual, "m1-b1")
				So(scored.Season, ShouldEqual, "service-test")
				So(scored.Points, ShouldResemble, model.Points{Auto: 4, Teleop: 2, Endgame: 20, Total: 26})
				So(scored.Violations, ShouldBeEmpty)
			})

			Convey("And the id is not passed through as extra data", func() {
				So(scored.Record.Extra, ShouldResemble, map[string]any{"comments": "solid"})
			})
		})

		Convey("When the entry is malformed", func() {
			_, err := svc.Score(ctx, []byte(`{"autoActions": 3}`))
			So(errors.Is(err, model.ErrInvalidEntry), ShouldBeTrue)
		})

		Convey("When two climb levels are set", func() {
			scored, err := svc.Score(ctx, []byte(`{"endgameRobotStatus": {"climbL1": true, "climbL2": true}}`))

			Convey("Then both count and the violation is reported", func() {
				So(err, ShouldBeNil)
				So(scored.Points.Endgame, ShouldEqual, 30)
				So(scored.Violations, ShouldHaveLength, 1)
				So(scored.Violations[0].Group, ShouldEqual, "climb")
			})
		})
	})

	Convey("Given a strict service", t, func() {
		svc := service.New(service.WithSchema(shootSchema()), service.WithStrictExclusivity(true))

		Convey("When two climb levels are set", func() {
			_, err := svc.Score(context.Background(), []byte(`{"endgameRobotStatus": {"climbL1": true, "climbL2": true}}`))

			Convey("Then the entry is rejected", func() {
				So(errors.Is(err, service.ErrExclusivity), ShouldBeTrue)
			})
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then submissions and queries fail", func() {
			_, err := svc.Submit(ctx, []byte(`{}`))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.TopN(ctx, 10)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.Get(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("And stopping is a no-op", func() {
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_StartErrors(t *testing.T) {
	Convey("Given an unknown store driver", t, func() {
		svc := service.New(service.WithStore("postgres", ""))

		Convey("Then Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrUnknownStoreDriver), ShouldBeTrue)
		})
	})

	Convey("Given the sqlite driver without a path", t, func() {
		svc := service.New(service.WithStore("sqlite", ""))

		Convey("Then Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestResolveSchema(t *testing.T) {
	ctx := context.Background()

	Convey("Given a builtin season name", t, func() {
		s, err := service.ResolveSchema(ctx, schema.SeasonTemplate, "")
		So(err, ShouldBeNil)
		So(s.Name(), ShouldEqual, schema.SeasonTemplate)
	})

	Convey("Given an unknown season name", t, func() {
		_, err := service.ResolveSchema(ctx, "1999", "")
		So(errors.Is(err, schema.ErrUnknownSeason), ShouldBeTrue)
	})

	Convey("Given a schema file", t, func() {
		path := filepath.Join(t.TempDir(), "season.yaml")
		err := os.WriteFile(path, []byte("name: custom\nactions:\n  - {key: shoot, auto: 2, teleop: 1}\n"), 0o600)
		So(err, ShouldBeNil)

		Convey("Then it takes precedence over the season name", func() {
			s, err := service.ResolveSchema(ctx, schema.SeasonRebuilt2026, path)
			So(err, ShouldBeNil)
			So(s.Name(), ShouldEqual, "custom")
			So(s.ActionPoints("shoot", schema.PhaseAuto), ShouldEqual, 2)
		})
	})
}
