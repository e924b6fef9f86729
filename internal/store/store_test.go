package store_test

import (
	"database/sql"
	"math"
	"testing"

	"github.com/mauv0809/sportsdiff/internal/database"
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/store"
	"github.com/mauv0809/sportsdiff/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (store.Store, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return store.New(db), db, teardown
}

func TestProfile(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	profile, err := s.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "", profile.RosterText, "unknown users get an empty profile")

	require.NoError(t, s.SaveRosterText("u1", "Alice 1\nBob 2"))
	require.NoError(t, s.SaveAttendanceText("u1", "Alice"))
	require.NoError(t, s.SaveRosterText("u1", "Alice 1\nBob 3"))

	profile, err = s.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice 1\nBob 3", profile.RosterText)
	assert.Equal(t, "Alice", profile.AttendanceText)

	other, err := s.GetProfile("u2")
	require.NoError(t, err)
	assert.Empty(t, other.RosterText)
}

func TestCreatePlayerList(t *testing.T) {
	s, db, teardown := setupTestDB(t)
	defer teardown()

	players := []roster.Attendee{
		{Name: "Alice Smith", Level: 1},
		{Name: "Bob", Level: 2.5},
		{Name: "Broken", Level: math.NaN()},
		{Name: "Carl", Level: 3},
	}
	list, err := s.CreatePlayerList("u1", "Tuesday", players)
	require.NoError(t, err)
	assert.Equal(t, "Tuesday", list.Name)

	rows, err := s.GetListPlayers("u1", list.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3, "rows without a valid level are skipped")
	assert.Equal(t, "Alice Smith", rows[0].Name)
	assert.Equal(t, list.ID+"-alice-smith", rows[0].ID)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 2.5, rows[1].Level)
	assert.Equal(t, "Carl", rows[2].Name)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM list_players WHERE user_id = 'u1'`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestCreatePlayerList_DuplicateNamesKeepLastLevel(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	list, err := s.CreatePlayerList("u1", "Dupes", []roster.Attendee{
		{Name: "Alice", Level: 1},
		{Name: "Bob", Level: 2},
		{Name: "Alice", Level: 4},
	})
	require.NoError(t, err)

	rows, err := s.GetListPlayers("u1", list.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, 4.0, rows[0].Level)
}

func TestGetPlayerLists_NewestFirstAndScopedToUser(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	_, err := s.CreatePlayerList("u1", "first", nil)
	require.NoError(t, err)
	_, err = s.CreatePlayerList("u1", "second", nil)
	require.NoError(t, err)
	_, err = s.CreatePlayerList("u2", "other", nil)
	require.NoError(t, err)

	lists, err := s.GetPlayerLists("u1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "second", lists[0].Name)
	assert.Equal(t, "first", lists[1].Name)
}

func TestGetListPlayers_OtherUsersListIsNotFound(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	list, err := s.CreatePlayerList("u1", "mine", []roster.Attendee{{Name: "Alice", Level: 1}})
	require.NoError(t, err)

	_, err = s.GetListPlayers("u2", list.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetListPlayers("u1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertPlayerLevels(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	list, err := s.CreatePlayerList("u1", "Tuesday", []roster.Attendee{
		{Name: "Alice", Level: 1},
		{Name: "Bob", Level: 2},
	})
	require.NoError(t, err)

	err = s.UpsertPlayerLevels("u1", list.ID, []roster.Attendee{
		{Name: "Bob", Level: 1.5},
		{Name: "Dana", Level: 3},
	})
	require.NoError(t, err)

	rows, err := s.GetListPlayers("u1", list.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, 1.0, rows[0].Level)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 1.5, rows[1].Level)
	assert.Equal(t, "Dana", rows[2].Name, "new players are appended")

	err = s.UpsertPlayerLevels("u2", list.ID, []roster.Attendee{{Name: "Alice", Level: 9}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSavedTeams(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	snapshot := store.Snapshot{
		Teams: []teams.Team{{ID: "t1", Name: "Team 1 - Blue", Color: teams.Blue}},
		Players: []teams.Player{
			{ID: "p1", Name: "Alice", Level: 1, Vest: true, TeamID: "t1"},
			{ID: "p2", Name: "Bob", Level: 2, TeamID: "t1"},
		},
	}
	saved, err := s.SaveTeamSnapshot("u1", "Tuesday teams", snapshot)
	require.NoError(t, err)
	_, err = s.SaveTeamSnapshot("u1", "Later", store.Snapshot{})
	require.NoError(t, err)

	all, err := s.GetSavedTeams("u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Later", all[0].Name)

	got, err := s.GetSavedTeam("u1", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot, got.Snapshot)

	_, err = s.GetSavedTeam("u2", saved.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteSavedTeam("u1", saved.ID))
	assert.ErrorIs(t, s.DeleteSavedTeam("u1", saved.ID), store.ErrNotFound)

	all, err = s.GetSavedTeams("u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPremium(t *testing.T) {
	s, _, teardown := setupTestDB(t)
	defer teardown()

	premium, err := s.IsPremium("u1")
	require.NoError(t, err)
	assert.False(t, premium)

	require.NoError(t, s.GrantPremium("u1"))
	require.NoError(t, s.GrantPremium("u1"), "granting twice is a no-op")

	premium, err = s.IsPremium("u1")
	require.NoError(t, err)
	assert.True(t, premium)
}
