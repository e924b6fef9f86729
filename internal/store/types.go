package store

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mauv0809/sportsdiff/internal/teams"
)

// ErrNotFound is returned when a requested record does not exist for the user.
var ErrNotFound = errors.New("not found")

// store handles all database operations.
type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Profile holds the last roster and attendance text a user worked with.
type Profile struct {
	UserID         string    `json:"userId"`
	RosterText     string    `json:"rosterText"`
	AttendanceText string    `json:"attendanceText"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PlayerList is a named, imported roster.
type PlayerList struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListPlayer is one normalized roster row of a player list.
type ListPlayer struct {
	ID     string  `json:"id"`
	ListID string  `json:"listId"`
	Name   string  `json:"name"`
	Level  float64 `json:"level"`
}

// Snapshot is the team state stored under a saved team list.
type Snapshot struct {
	Teams   []teams.Team   `msgpack:"teams" json:"teams"`
	Players []teams.Player `msgpack:"players" json:"players"`
}

// SavedTeams is a named snapshot of generated teams.
type SavedTeams struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"createdAt"`
}
