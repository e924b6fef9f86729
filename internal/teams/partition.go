// Package teams splits attendees into teams and balances vests within each team.
// Everything here is a pure transform: inputs are never mutated and nothing is retained.
package teams

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/mauv0809/sportsdiff/internal/roster"
)

type options struct {
	newID      func() string
	vestPolicy VestPolicy
}

// Option configures Partition, BalanceVests and MovePlayer.
type Option func(*options)

// WithIDGenerator replaces the UUID generator used for team and player IDs.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithVestPolicy selects which alternating group gets vests.
func WithVestPolicy(policy VestPolicy) Option {
	return func(o *options) {
		if policy == Weaker || policy == Stronger {
			o.vestPolicy = policy
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		newID:      uuid.NewString,
		vestPolicy: Weaker,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Partition splits attendees into ceil(n/teamSize) teams using the given distribution.
// Every attendee becomes exactly one player with a fresh ID and no vest.
func Partition(attendees []roster.Attendee, teamSize int, distribution Distribution, opts ...Option) (Result, error) {
	if teamSize < 1 {
		return Result{}, ErrInvalidTeamSize
	}
	if distribution != Even && distribution != Grouped {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownDistribution, distribution)
	}
	for _, a := range attendees {
		if !a.Valid() {
			return Result{}, fmt.Errorf("%w: %q", ErrInvalidLevel, a.Name)
		}
	}
	if len(attendees) == 0 {
		return Result{Teams: []Team{}, Players: []Player{}}, nil
	}

	o := newOptions(opts)
	numTeams := (len(attendees) + teamSize - 1) / teamSize
	teams := newTeams(numTeams, o.newID)

	sorted := slices.Clone(attendees)
	var assign func(i int) int
	switch distribution {
	case Even:
		slices.SortStableFunc(sorted, func(a, b roster.Attendee) int { return cmp.Compare(b.Level, a.Level) })
		assign = func(i int) int { return i % numTeams }
	case Grouped:
		slices.SortStableFunc(sorted, func(a, b roster.Attendee) int { return cmp.Compare(a.Level, b.Level) })
		assign = sequentialFill(teamSize, numTeams)
	}

	players := make([]Player, len(sorted))
	for i, a := range sorted {
		players[i] = Player{
			ID:     o.newID(),
			Name:   a.Name,
			Level:  a.Level,
			TeamID: teams[assign(i)].ID,
		}
	}
	return Result{Teams: teams, Players: players}, nil
}

// sequentialFill returns an assigner that fills each team up to teamSize before moving on.
// The last team takes whatever is left.
func sequentialFill(teamSize, numTeams int) func(int) int {
	counts := make([]int, numTeams)
	current := 0
	return func(int) int {
		for counts[current] >= teamSize && current < numTeams-1 {
			current++
		}
		counts[current]++
		return current
	}
}

func newTeams(n int, newID func() string) []Team {
	teams := make([]Team, n)
	for i := range teams {
		color := Palette[i%len(Palette)]
		teams[i] = Team{
			ID:    newID(),
			Name:  fmt.Sprintf("Team %d - %s", i+1, color.Label()),
			Color: color,
		}
	}
	return teams
}
