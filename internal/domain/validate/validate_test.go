package validate_test

import (
	"testing"

	"github.com/okian/matchscout/internal/domain/aggregate"
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
	"github.com/okian/matchscout/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChecker_Check(t *testing.T) {
	Convey("Given the rebuilt-2026 season", t, func() {
		s := schema.MustNew(schema.Rebuilt2026())
		agg := aggregate.New(s)
		checker := validate.New(s)

		Convey("When a single climb level is set", func() {
			rec := agg.Aggregate(model.Entry{EndgameStatus: map[string]bool{"climbL2": true, "climbFailed": true}})

			Convey("Then there is nothing to report", func() {
				So(checker.Check(rec), ShouldBeNil)
			})
		})

		Convey("When two climb levels are set", func() {
			rec := agg.Aggregate(model.Entry{EndgameStatus: map[string]bool{"climbL3": true, "climbL1": true}})
			got := checker.Check(rec)

			Convey("Then the group is reported with its members in declaration order", func() {
				So(got, ShouldResemble, []model.Violation{{
					Phase: schema.PhaseEndgame,
					Group: "climb",
					Keys:  []string{"climbL1", "climbL3"},
				}})
			})

			Convey("And the record itself is untouched", func() {
				So(rec.Toggle(schema.PhaseEndgame, "climbL1"), ShouldBeTrue)
				So(rec.Toggle(schema.PhaseEndgame, "climbL3"), ShouldBeTrue)
			})
		})

		Convey("When noClimb is set together with a climb", func() {
			rec := agg.Aggregate(model.Entry{EndgameStatus: map[string]bool{"noClimb": true, "climbL1": true}})
			So(checker.Check(rec), ShouldHaveLength, 1)
		})
	})

	Convey("Given a schema with groups in several phases", t, func() {
		s := schema.MustNew(schema.Definition{
			Name: "groups",
			Toggles: schema.ToggleDefs{
				Auto: []schema.ToggleDef{
					{Key: "left", Group: "side"},
					{Key: "right", Group: "side"},
				},
				Endgame: []schema.ToggleDef{
					{Key: "parked", Group: "end"},
					{Key: "hung", Group: "end"},
				},
			},
		})
		checker := validate.New(s)
		rec := aggregate.New(s).Aggregate(model.Entry{
			AutoStatus:    map[string]bool{"left": true, "right": true},
			EndgameStatus: map[string]bool{"parked": true, "hung": true},
		})

		Convey("Then violations come out in phase order", func() {
			got := checker.Check(rec)
			So(got, ShouldHaveLength, 2)
			So(got[0].Phase, ShouldEqual, schema.PhaseAuto)
			So(got[0].Group, ShouldEqual, "side")
			So(got[1].Phase, ShouldEqual, schema.PhaseEndgame)
		})
	})

	Convey("Given a schema without groups", t, func() {
		checker := validate.New(schema.MustNew(schema.Definition{Name: "flat"}))
		So(checker.Check(model.Record{}), ShouldBeNil)
	})
}
