package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/teams"
)

var (
	ErrPlayerNotFound = errors.New("player not on roster")
	ErrNoTeams        = errors.New("no teams generated")
	ErrEmptyRoster    = errors.New("roster has no valid players")
)

// DefaultAutosaveDelay is how long level edits sit before they are written back to the active list.
const DefaultAutosaveDelay = 10 * time.Second

// Settings are the generation parameters a user picks.
type Settings struct {
	TeamSize     int                `json:"teamSize"`
	Distribution teams.Distribution `json:"distribution"`
	Vests        bool               `json:"vests"`
	VestPolicy   teams.VestPolicy   `json:"vestPolicy"`
}

// DefaultSettings returns six-a-side even teams with vests on the weaker half.
func DefaultSettings() Settings {
	return Settings{
		TeamSize:     6,
		Distribution: teams.Even,
		Vests:        true,
		VestPolicy:   teams.Weaker,
	}
}

// Validate checks the settings and normalizes the enum fields.
func (s Settings) Validate() (Settings, error) {
	if s.TeamSize < 1 {
		return s, fmt.Errorf("%w: got %d", teams.ErrInvalidTeamSize, s.TeamSize)
	}
	distribution, err := teams.ParseDistribution(string(s.Distribution))
	if err != nil {
		return s, fmt.Errorf("%w: %q", err, s.Distribution)
	}
	s.Distribution = distribution
	if s.VestPolicy == "" {
		s.VestPolicy = teams.Weaker
	}
	policy, err := teams.ParseVestPolicy(string(s.VestPolicy))
	if err != nil {
		return s, fmt.Errorf("%w: %q", err, s.VestPolicy)
	}
	s.VestPolicy = policy
	return s, nil
}

// Issue is a roster line that could not be parsed.
type Issue struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// PlayerTrend compares a player's level with the level it had when the list was loaded.
type PlayerTrend struct {
	Name    string       `json:"name"`
	Initial float64      `json:"initial"`
	Current float64      `json:"current"`
	Trend   roster.Trend `json:"trend"`
}

// State is a copy of everything a client renders.
type State struct {
	RosterText     string              `json:"rosterText"`
	AttendanceText string              `json:"attendanceText"`
	Settings       Settings            `json:"settings"`
	ActiveListID   string              `json:"activeListId,omitempty"`
	Teams          []teams.Team        `json:"teams"`
	Players        []teams.Player      `json:"players"`
	Summaries      []teams.TeamSummary `json:"summaries"`
	Issues         []Issue             `json:"issues"`
	Trends         []PlayerTrend       `json:"trends"`
	PendingEdits   int                 `json:"pendingEdits"`
}

type options struct {
	autosaveDelay time.Duration
	settings      Settings
	newID         func() string
	foldNames     bool
}

// Option configures a Session or a Manager.
type Option func(*options)

// WithAutosaveDelay sets the debounce before pending level edits are written.
func WithAutosaveDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.autosaveDelay = d
		}
	}
}

// WithSettings sets the initial settings of new sessions.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithIDGenerator replaces the team and player ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithFoldedNames makes attendance matching ignore diacritics.
func WithFoldedNames() Option {
	return func(o *options) {
		o.foldNames = true
	}
}

func newOptions(opts []Option) options {
	o := options{
		autosaveDelay: DefaultAutosaveDelay,
		settings:      DefaultSettings(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Session is the working state of one user.
type Session struct {
	userID  string
	store   Store
	metrics metrics.Metrics
	opts    options

	mu             sync.Mutex
	rosterText     string
	attendanceText string
	settings       Settings
	activeListID   string
	teams          []teams.Team
	players        []teams.Player
	issues         []Issue

	// initial is the roster as loaded from the active list.
	initial []roster.Attendee
	// pending holds unsaved level edits keyed by lowercased name.
	pending map[string]roster.Attendee

	timer    *time.Timer
	// timerSeq identifies the armed timer; callbacks of replaced timers see a newer value.
	timerSeq uint64
	closed   bool
}

// Manager hands out one Session per user.
type Manager struct {
	store    Store
	metrics  metrics.Metrics
	opts     []Option
	mu       sync.Mutex
	sessions map[string]*Session
}
