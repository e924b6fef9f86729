package session

import (
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/store"
)

// Store is the persistence a session needs. store.Store satisfies it.
type Store interface {
	GetProfile(userID string) (*store.Profile, error)
	SaveRosterText(userID, text string) error
	SaveAttendanceText(userID, text string) error
	CreatePlayerList(userID, name string, players []roster.Attendee) (*store.PlayerList, error)
	GetListPlayers(userID, listID string) ([]store.ListPlayer, error)
	UpsertPlayerLevels(userID, listID string, updates []roster.Attendee) error
	SaveTeamSnapshot(userID, name string, snapshot store.Snapshot) (*store.SavedTeams, error)
	GetSavedTeam(userID, id string) (*store.SavedTeams, error)
}
