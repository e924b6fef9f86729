package store

import (
	"sync"

	"github.com/mauv0809/sportsdiff/internal/roster"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetProfileFunc         func(userID string) (*Profile, error)
	SaveRosterTextFunc     func(userID, text string) error
	SaveAttendanceTextFunc func(userID, text string) error
	CreatePlayerListFunc   func(userID, name string, players []roster.Attendee) (*PlayerList, error)
	GetPlayerListsFunc     func(userID string) ([]PlayerList, error)
	GetListPlayersFunc     func(userID, listID string) ([]ListPlayer, error)
	UpsertPlayerLevelsFunc func(userID, listID string, updates []roster.Attendee) error
	SaveTeamSnapshotFunc   func(userID, name string, snapshot Snapshot) (*SavedTeams, error)
	GetSavedTeamsFunc      func(userID string) ([]SavedTeams, error)
	GetSavedTeamFunc       func(userID, id string) (*SavedTeams, error)
	DeleteSavedTeamFunc    func(userID, id string) error
	IsPremiumFunc          func(userID string) (bool, error)
	GrantPremiumFunc       func(userID string) error

	// Call records
	SaveRosterTextCalls     []string
	SaveAttendanceTextCalls []string
	UpsertPlayerLevelsCalls []struct {
		ListID  string
		Updates []roster.Attendee
	}
	SaveTeamSnapshotCalls []struct {
		Name     string
		Snapshot Snapshot
	}
	GrantPremiumCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRosterTextCalls = nil
	m.SaveAttendanceTextCalls = nil
	m.UpsertPlayerLevelsCalls = nil
	m.SaveTeamSnapshotCalls = nil
	m.GrantPremiumCalls = nil
}

func (m *MockStore) GetProfile(userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(userID)
	}
	return &Profile{UserID: userID}, nil
}

func (m *MockStore) SaveRosterText(userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRosterTextCalls = append(m.SaveRosterTextCalls, text)
	if m.SaveRosterTextFunc != nil {
		return m.SaveRosterTextFunc(userID, text)
	}
	return nil
}

func (m *MockStore) SaveAttendanceText(userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveAttendanceTextCalls = append(m.SaveAttendanceTextCalls, text)
	if m.SaveAttendanceTextFunc != nil {
		return m.SaveAttendanceTextFunc(userID, text)
	}
	return nil
}

func (m *MockStore) CreatePlayerList(userID, name string, players []roster.Attendee) (*PlayerList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreatePlayerListFunc != nil {
		return m.CreatePlayerListFunc(userID, name, players)
	}
	return &PlayerList{ID: "list-1", UserID: userID, Name: name}, nil
}

func (m *MockStore) GetPlayerLists(userID string) ([]PlayerList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerListsFunc != nil {
		return m.GetPlayerListsFunc(userID)
	}
	return []PlayerList{}, nil
}

func (m *MockStore) GetListPlayers(userID, listID string) ([]ListPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetListPlayersFunc != nil {
		return m.GetListPlayersFunc(userID, listID)
	}
	return []ListPlayer{}, nil
}

func (m *MockStore) UpsertPlayerLevels(userID, listID string, updates []roster.Attendee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerLevelsCalls = append(m.UpsertPlayerLevelsCalls, struct {
		ListID  string
		Updates []roster.Attendee
	}{listID, updates})
	if m.UpsertPlayerLevelsFunc != nil {
		return m.UpsertPlayerLevelsFunc(userID, listID, updates)
	}
	return nil
}

func (m *MockStore) SaveTeamSnapshot(userID, name string, snapshot Snapshot) (*SavedTeams, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveTeamSnapshotCalls = append(m.SaveTeamSnapshotCalls, struct {
		Name     string
		Snapshot Snapshot
	}{name, snapshot})
	if m.SaveTeamSnapshotFunc != nil {
		return m.SaveTeamSnapshotFunc(userID, name, snapshot)
	}
	return &SavedTeams{ID: "saved-1", UserID: userID, Name: name, Snapshot: snapshot}, nil
}

func (m *MockStore) GetSavedTeams(userID string) ([]SavedTeams, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSavedTeamsFunc != nil {
		return m.GetSavedTeamsFunc(userID)
	}
	return []SavedTeams{}, nil
}

func (m *MockStore) GetSavedTeam(userID, id string) (*SavedTeams, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSavedTeamFunc != nil {
		return m.GetSavedTeamFunc(userID, id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) DeleteSavedTeam(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteSavedTeamFunc != nil {
		return m.DeleteSavedTeamFunc(userID, id)
	}
	return nil
}

func (m *MockStore) IsPremium(userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsPremiumFunc != nil {
		return m.IsPremiumFunc(userID)
	}
	return false, nil
}

func (m *MockStore) GrantPremium(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantPremiumCalls = append(m.GrantPremiumCalls, userID)
	if m.GrantPremiumFunc != nil {
		return m.GrantPremiumFunc(userID)
	}
	return nil
}

// UpsertCount returns the number of recorded level write-backs.
func (m *MockStore) UpsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.UpsertPlayerLevelsCalls)
}
