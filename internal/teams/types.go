package teams

import (
	"errors"
	"strings"
)

var (
	ErrInvalidTeamSize     = errors.New("team size must be at least 1")
	ErrInvalidLevel        = errors.New("player has no valid level")
	ErrUnknownDistribution = errors.New("unknown distribution")
	ErrUnknownVestPolicy   = errors.New("unknown vest policy")
)

// Distribution selects how sorted attendees are dealt onto teams.
type Distribution string

const (
	// Even deals players round-robin by descending level so every team gets a share of the top.
	Even Distribution = "even"
	// Grouped fills teams one at a time by ascending level, producing tiered teams.
	Grouped Distribution = "grouped"
)

// ParseDistribution accepts the wire names of a distribution.
func ParseDistribution(s string) (Distribution, error) {
	switch Distribution(strings.ToLower(strings.TrimSpace(s))) {
	case Even:
		return Even, nil
	case Grouped:
		return Grouped, nil
	default:
		return "", ErrUnknownDistribution
	}
}

// VestPolicy decides which of a team's two alternating groups wears vests.
type VestPolicy string

const (
	// Weaker gives vests to the group with the lower skill sum.
	Weaker VestPolicy = "weaker"
	// Stronger gives vests to the group with the higher skill sum.
	Stronger VestPolicy = "stronger"
)

// ParseVestPolicy accepts the wire names of a vest policy.
func ParseVestPolicy(s string) (VestPolicy, error) {
	switch VestPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case Weaker:
		return Weaker, nil
	case Stronger:
		return Stronger, nil
	default:
		return "", ErrUnknownVestPolicy
	}
}

// Color is a team color from the fixed palette.
type Color string

const (
	Blue   Color = "blue"
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Purple Color = "purple"
	Pink   Color = "pink"
)

// Palette is cycled when there are more teams than colors.
var Palette = []Color{Blue, Red, Green, Yellow, Purple, Pink}

// Label is the display name of the color.
func (c Color) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Team is one generated team.
type Team struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Color Color  `json:"color" msgpack:"color"`
}

// Player is an attendee placed on a team.
type Player struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"name" msgpack:"name"`
	Level  float64 `json:"level" msgpack:"level"`
	Vest   bool    `json:"vest" msgpack:"vest"`
	TeamID string  `json:"teamId" msgpack:"team_id"`
}

// Result is the output of one partition.
type Result struct {
	Teams   []Team   `json:"teams"`
	Players []Player `json:"players"`
}

// TeamSummary holds the per-team averages shown next to a lineup.
type TeamSummary struct {
	TeamID        string  `json:"teamId"`
	Name          string  `json:"name"`
	Color         Color   `json:"color"`
	Players       int     `json:"players"`
	Average       float64 `json:"average"`
	VestPlayers   int     `json:"vestPlayers"`
	VestAverage   float64 `json:"vestAverage"`
	NoVestPlayers int     `json:"noVestPlayers"`
	NoVestAverage float64 `json:"noVestAverage"`
}
