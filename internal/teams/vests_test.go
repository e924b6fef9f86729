package teams_test

import (
	"testing"

	"github.com/mauv0809/sportsdiff/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vests(players []teams.Player) map[string]bool {
	flags := make(map[string]bool, len(players))
	for _, p := range players {
		flags[p.ID] = p.Vest
	}
	return flags
}

func TestBalanceVests_LowerSumGetsVests(t *testing.T) {
	players := []teams.Player{
		{ID: "d", Level: 1, TeamID: "t1"},
		{ID: "a", Level: 4, TeamID: "t1"},
		{ID: "c", Level: 2, TeamID: "t1"},
		{ID: "b", Level: 3, TeamID: "t1"},
	}

	balanced := teams.BalanceVests(players)

	// Alternating groups by descending level: {a, c} sums 6, {b, d} sums 4.
	assert.Equal(t, map[string]bool{"a": false, "b": true, "c": false, "d": true}, vests(balanced))
}

func TestBalanceVests_TieGoesToFirstGroup(t *testing.T) {
	players := []teams.Player{
		{ID: "p0", Level: 5, TeamID: "t1"},
		{ID: "p1", Level: 5, TeamID: "t1"},
		{ID: "p2", Level: 5, TeamID: "t1"},
		{ID: "p3", Level: 5, TeamID: "t1"},
	}

	balanced := teams.BalanceVests(players)

	assert.Equal(t, map[string]bool{"p0": true, "p1": false, "p2": true, "p3": false}, vests(balanced))
}

func TestBalanceVests_StrongerPolicy(t *testing.T) {
	players := []teams.Player{
		{ID: "a", Level: 4, TeamID: "t1"},
		{ID: "b", Level: 3, TeamID: "t1"},
		{ID: "c", Level: 2, TeamID: "t1"},
		{ID: "d", Level: 1, TeamID: "t1"},
	}

	balanced := teams.BalanceVests(players, teams.WithVestPolicy(teams.Stronger))
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": true, "d": false}, vests(balanced))

	tied := []teams.Player{
		{ID: "x", Level: 2, TeamID: "t1"},
		{ID: "y", Level: 2, TeamID: "t1"},
	}
	assert.Equal(t, map[string]bool{"x": true, "y": false}, vests(teams.BalanceVests(tied, teams.WithVestPolicy(teams.Stronger))))
}

func TestBalanceVests_TeamsAreIndependent(t *testing.T) {
	players := []teams.Player{
		{ID: "a1", Level: 4, TeamID: "t1"},
		{ID: "b1", Level: 9, TeamID: "t2"},
		{ID: "a2", Level: 1, TeamID: "t1"},
		{ID: "u1", Level: 3, TeamID: ""},
		{ID: "b2", Level: 2, TeamID: "t2"},
		{ID: "u2", Level: 3, TeamID: ""},
	}

	balanced := teams.BalanceVests(players)

	assert.Equal(t, map[string]bool{
		"a1": false, "a2": true,
		"b1": false, "b2": true,
		"u1": true, "u2": false,
	}, vests(balanced))
}

func TestBalanceVests_KeepsOrderAndInput(t *testing.T) {
	players := []teams.Player{
		{ID: "c", Level: 2, TeamID: "t1"},
		{ID: "a", Level: 4, TeamID: "t1", Vest: true},
		{ID: "b", Level: 3, TeamID: "t1"},
	}
	original := append([]teams.Player(nil), players...)

	balanced := teams.BalanceVests(players)

	require.Len(t, balanced, 3)
	assert.Equal(t, "c", balanced[0].ID)
	assert.Equal(t, "a", balanced[1].ID)
	assert.Equal(t, "b", balanced[2].ID)
	assert.Equal(t, original, players, "input must not be mutated")
}

func TestBalanceVests_Idempotent(t *testing.T) {
	result, err := teams.Partition(attendeesWithLevels(3, 1.5, 2, 2, 4.5, 1, 3, 2.5, 1.2), 4, teams.Even)
	require.NoError(t, err)

	once := teams.BalanceVests(result.Players)
	twice := teams.BalanceVests(once)
	assert.Equal(t, once, twice)
}

func TestBalanceVests_Empty(t *testing.T) {
	assert.Empty(t, teams.BalanceVests(nil))
}

func TestClearVests(t *testing.T) {
	players := []teams.Player{{ID: "a", Vest: true}, {ID: "b"}}
	cleared := teams.ClearVests(players)
	assert.Equal(t, map[string]bool{"a": false, "b": false}, vests(cleared))
	assert.True(t, players[0].Vest)
}

func TestParseVestPolicy(t *testing.T) {
	p, err := teams.ParseVestPolicy("STRONGER")
	require.NoError(t, err)
	assert.Equal(t, teams.Stronger, p)

	_, err = teams.ParseVestPolicy("")
	assert.ErrorIs(t, err, teams.ErrUnknownVestPolicy)
}
