package store

import "github.com/mauv0809/sportsdiff/internal/roster"

// Store defines the persistence operations behind rosters, player lists, saved teams and premium access.
type Store interface {
	GetProfile(userID string) (*Profile, error)
	SaveRosterText(userID, text string) error
	SaveAttendanceText(userID, text string) error

	CreatePlayerList(userID, name string, players []roster.Attendee) (*PlayerList, error)
	GetPlayerLists(userID string) ([]PlayerList, error)
	GetListPlayers(userID, listID string) ([]ListPlayer, error)
	UpsertPlayerLevels(userID, listID string, updates []roster.Attendee) error

	SaveTeamSnapshot(userID, name string, snapshot Snapshot) (*SavedTeams, error)
	GetSavedTeams(userID string) ([]SavedTeams, error)
	GetSavedTeam(userID, id string) (*SavedTeams, error)
	DeleteSavedTeam(userID, id string) error

	IsPremium(userID string) (bool, error)
	GrantPremium(userID string) error
}
