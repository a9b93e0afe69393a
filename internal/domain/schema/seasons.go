package schema

// Built-in season names.
const (
	SeasonRebuilt2026 = "rebuilt-2026"
	SeasonTemplate    = "template"
)

// Rebuilt2026 returns the 2026 season definition: fuel is worth one point in
// either scored phase, the auto climb 15 and tower levels 10/20/30.
func Rebuilt2026() Definition {
	return Definition{
		Name: SeasonRebuilt2026,
		Actions: []ActionDef{
			{Key: "fuelScored", Auto: 1, Teleop: 1},
			{Key: "fuelPassed"},
		},
		Toggles: ToggleDefs{
			Auto: []ToggleDef{
				{Key: "leftStartZone"},
				{Key: "autoClimbL1", Points: 15},
			},
			Teleop: []ToggleDef{
				{Key: "playedDefense"},
				{Key: "underTrench"},
				{Key: "overBump"},
			},
			Endgame: []ToggleDef{
				{Key: "climbL1", Points: 10, Group: "climb"},
				{Key: "climbL2", Points: 20, Group: "climb"},
				{Key: "climbL3", Points: 30, Group: "climb"},
				{Key: "noClimb", Group: "climb"},
				{Key: "climbFailed"},
			},
		},
	}
}

// Template returns the placeholder season new game years start from.
func Template() Definition {
	return Definition{
		Name: SeasonTemplate,
		Actions: []ActionDef{
			{Key: "action1", Auto: 4, Teleop: 2},
			{Key: "action2", Auto: 3, Teleop: 2},
			{Key: "action3", Auto: 2, Teleop: 1},
			{Key: "action4", Auto: 1},
		},
		Toggles: ToggleDefs{
			Endgame: []ToggleDef{
				{Key: "option1", Points: 2, Group: "endgame"},
				{Key: "option2", Points: 6, Group: "endgame"},
				{Key: "option3", Points: 12, Group: "endgame"},
				{Key: "toggle1"},
				{Key: "toggle2"},
			},
		},
	}
}
