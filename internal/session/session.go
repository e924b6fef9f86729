package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/store"
	"github.com/mauv0809/sportsdiff/internal/teams"
)

// New creates an empty session for userID.
func New(userID string, st Store, m metrics.Metrics, opts ...Option) *Session {
	o := newOptions(opts)
	return &Session{
		userID:   userID,
		store:    st,
		metrics:  m,
		opts:     o,
		settings: o.settings,
		teams:    []teams.Team{},
		players:  []teams.Player{},
		pending:  make(map[string]roster.Attendee),
	}
}

// SetRoster replaces the roster text and regenerates.
func (s *Session) SetRoster(ctx context.Context, text string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	s.rosterText = text
	if err := s.store.SaveRosterText(s.userID, text); err != nil {
		return s.stateLocked(), fmt.Errorf("failed to persist roster: %w", err)
	}
	err := s.refreshLocked()
	return s.stateLocked(), err
}

// SetAttendance replaces the attendance text and regenerates.
func (s *Session) SetAttendance(ctx context.Context, text string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	s.attendanceText = text
	if err := s.store.SaveAttendanceText(s.userID, text); err != nil {
		return s.stateLocked(), fmt.Errorf("failed to persist attendance: %w", err)
	}
	err := s.refreshLocked()
	return s.stateLocked(), err
}

// UpdateSettings validates and applies new settings, then regenerates.
func (s *Session) UpdateSettings(ctx context.Context, settings Settings) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	valid, err := settings.Validate()
	if err != nil {
		return s.stateLocked(), err
	}
	s.settings = valid
	err = s.refreshLocked()
	return s.stateLocked(), err
}

// Generate runs one generation cycle over the current roster and attendance.
// On invalid input the previous teams are kept and the error is returned.
func (s *Session) Generate(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	err := s.generateLocked()
	return s.stateLocked(), err
}

// Move puts a player on another team. It reports false when either ID is unknown.
func (s *Session) Move(ctx context.Context, playerID, teamID string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moved bool
	if s.settings.Vests {
		s.players, moved = teams.MovePlayer(s.players, s.teams, teamID, playerID, teams.WithVestPolicy(s.settings.VestPolicy))
	} else {
		s.players, moved = teams.Reassign(s.players, s.teams, teamID, playerID)
	}
	if moved {
		s.metrics.IncManualMoves()
		log.Debug("Moved player", "user_id", s.userID, "player_id", playerID, "team_id", teamID)
	}
	return s.stateLocked(), moved
}

// EditLevel sets a roster player's level and regenerates. With an active list the
// edit is queued and written back once no further edit arrives for the autosave delay.
func (s *Session) EditLevel(ctx context.Context, name string, level float64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return s.stateLocked(), fmt.Errorf("%w: %v", teams.ErrInvalidLevel, level)
	}

	canonical, ok := findName(roster.Parse(s.rosterText), name)
	if !ok {
		return s.stateLocked(), fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	text, _ := roster.SetLevel(s.rosterText, canonical, level)
	s.rosterText = text
	if err := s.store.SaveRosterText(s.userID, text); err != nil {
		return s.stateLocked(), fmt.Errorf("failed to persist roster: %w", err)
	}

	if s.activeListID != "" {
		s.pending[nameKey(canonical)] = roster.Attendee{Name: canonical, Level: level}
		s.armTimerLocked()
	}
	err := s.refreshLocked()
	return s.stateLocked(), err
}

// Flush writes pending level edits to the active list now.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	s.stopTimerLocked()
	return s.flushLocked()
}

// ResetLevels restores the levels the active list had when it was loaded
// and discards pending edits.
func (s *Session) ResetLevels(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	s.stopTimerLocked()
	clear(s.pending)

	s.rosterText = roster.RestoreLevels(s.rosterText, s.initial)
	if err := s.store.SaveRosterText(s.userID, s.rosterText); err != nil {
		return s.stateLocked(), fmt.Errorf("failed to persist roster: %w", err)
	}
	if s.activeListID != "" && len(s.initial) > 0 {
		if err := s.store.UpsertPlayerLevels(s.userID, s.activeListID, lastByName(s.initial)); err != nil {
			return s.stateLocked(), fmt.Errorf("failed to restore list levels: %w", err)
		}
	}
	log.Info("Reset player levels", "user_id", s.userID, "players", len(s.initial))
	err := s.refreshLocked()
	return s.stateLocked(), err
}

// ImportList stores the current roster as a new player list and makes it active.
func (s *Session) ImportList(ctx context.Context, name string) (*store.PlayerList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	valid := validAttendees(roster.Parse(s.rosterText))
	if len(valid) == 0 {
		return nil, ErrEmptyRoster
	}
	if strings.TrimSpace(name) == "" {
		name = "Imported " + time.Now().Format("2006-01-02 15:04")
	}

	if err := s.switchListLocked(); err != nil {
		return nil, err
	}
	list, err := s.store.CreatePlayerList(s.userID, name, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to import player list: %w", err)
	}
	s.activeListID = list.ID
	s.initial = valid
	log.Info("Imported player list", "user_id", s.userID, "list_id", list.ID, "players", len(valid))
	return list, nil
}

// LoadList replaces the roster with a stored player list and makes it active.
func (s *Session) LoadList(ctx context.Context, listID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	rows, err := s.store.GetListPlayers(s.userID, listID)
	if err != nil {
		return s.stateLocked(), fmt.Errorf("failed to load player list: %w", err)
	}
	if err := s.switchListLocked(); err != nil {
		return s.stateLocked(), err
	}

	attendees := make([]roster.Attendee, 0, len(rows))
	for _, row := range rows {
		attendees = append(attendees, roster.Attendee{Name: row.Name, Level: row.Level})
	}
	s.rosterText = roster.Format(attendees)
	s.activeListID = listID
	s.initial = attendees
	if err := s.store.SaveRosterText(s.userID, s.rosterText); err != nil {
		return s.stateLocked(), fmt.Errorf("failed to persist roster: %w", err)
	}
	log.Info("Loaded player list", "user_id", s.userID, "list_id", listID, "players", len(attendees))
	err = s.refreshLocked()
	return s.stateLocked(), err
}

// SaveTeams stores the current teams under name.
func (s *Session) SaveTeams(ctx context.Context, name string) (*store.SavedTeams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.teams) == 0 {
		return nil, ErrNoTeams
	}
	if strings.TrimSpace(name) == "" {
		name = "Teams " + time.Now().Format("2006-01-02 15:04")
	}
	snapshot := store.Snapshot{
		Teams:   slices.Clone(s.teams),
		Players: slices.Clone(s.players),
	}
	saved, err := s.store.SaveTeamSnapshot(s.userID, name, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to save teams: %w", err)
	}
	return saved, nil
}

// LoadSavedTeams replaces the current teams with a saved snapshot.
func (s *Session) LoadSavedTeams(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.stateLocked(), err
	}
	saved, err := s.store.GetSavedTeam(s.userID, id)
	if err != nil {
		return s.stateLocked(), fmt.Errorf("failed to load saved teams: %w", err)
	}
	s.teams = nonNil(slices.Clone(saved.Snapshot.Teams))
	s.players = nonNil(slices.Clone(saved.Snapshot.Players))
	log.Info("Loaded saved teams", "user_id", s.userID, "id", id, "teams", len(s.teams))
	return s.stateLocked(), nil
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Close stops the autosave timer and writes pending edits.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.stopTimerLocked()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.flushLocked()
}

// refreshLocked regenerates when both texts are present and clears the teams otherwise.
func (s *Session) refreshLocked() error {
	if strings.TrimSpace(s.rosterText) != "" && strings.TrimSpace(s.attendanceText) != "" {
		return s.generateLocked()
	}
	_, lineErrs := roster.ParseLines(s.rosterText)
	s.issues = toIssues(lineErrs)
	s.teams = []teams.Team{}
	s.players = []teams.Player{}
	return nil
}

func (s *Session) generateLocked() error {
	start := time.Now()

	all, lineErrs := roster.ParseLines(s.rosterText)
	s.issues = toIssues(lineErrs)

	var matchOpts []roster.MatchOption
	if s.opts.foldNames {
		matchOpts = append(matchOpts, roster.WithFoldedNames())
	}
	attending := roster.MatchAttendance(all, s.attendanceText, matchOpts...)

	var teamOpts []teams.Option
	if s.opts.newID != nil {
		teamOpts = append(teamOpts, teams.WithIDGenerator(s.opts.newID))
	}
	result, err := teams.Partition(attending, s.settings.TeamSize, s.settings.Distribution, teamOpts...)
	if err != nil {
		s.metrics.IncGenerationFailures()
		log.Warn("Team generation blocked", "user_id", s.userID, "error", err)
		return fmt.Errorf("failed to generate teams: %w", err)
	}

	players := result.Players
	if s.settings.Vests {
		players = teams.BalanceVests(players, teams.WithVestPolicy(s.settings.VestPolicy))
	} else {
		players = teams.ClearVests(players)
	}
	s.teams = result.Teams
	s.players = players

	s.metrics.IncGenerations()
	s.metrics.AddPlayersPartitioned(len(players))
	s.metrics.ObserveGenerationDuration(time.Since(start).Seconds())
	log.Debug("Generated teams", "user_id", s.userID, "teams", len(s.teams), "players", len(s.players))
	return nil
}

// switchListLocked writes edits pending for the current list before another one becomes active.
func (s *Session) switchListLocked() error {
	s.stopTimerLocked()
	if err := s.flushLocked(); err != nil {
		return err
	}
	s.activeListID = ""
	s.initial = nil
	return nil
}

func (s *Session) flushLocked() error {
	if s.activeListID == "" || len(s.pending) == 0 {
		return nil
	}
	updates := make([]roster.Attendee, 0, len(s.pending))
	for _, a := range s.pending {
		updates = append(updates, a)
	}
	slices.SortFunc(updates, func(a, b roster.Attendee) int {
		return strings.Compare(a.Name, b.Name)
	})
	if err := s.store.UpsertPlayerLevels(s.userID, s.activeListID, updates); err != nil {
		return fmt.Errorf("failed to save level edits: %w", err)
	}
	clear(s.pending)
	s.metrics.IncAutosaveWrites()
	log.Info("Saved level edits", "user_id", s.userID, "list_id", s.activeListID, "count", len(updates))
	return nil
}

func (s *Session) armTimerLocked() {
	if s.closed {
		return
	}
	s.stopTimerLocked()
	seq := s.timerSeq
	s.timer = time.AfterFunc(s.opts.autosaveDelay, func() { s.autosave(seq) })
}

func (s *Session) stopTimerLocked() {
	s.timerSeq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// autosave runs when the timer armed as seq fires. A timer that was stopped or
// replaced while its callback waited for the lock does nothing.
func (s *Session) autosave(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.timerSeq {
		return
	}
	s.timer = nil
	if err := s.flushLocked(); err != nil {
		log.Error("Autosave failed", "user_id", s.userID, "error", err)
	}
}

func (s *Session) stateLocked() State {
	current := roster.Parse(s.rosterText)
	return State{
		RosterText:     s.rosterText,
		AttendanceText: s.attendanceText,
		Settings:       s.settings,
		ActiveListID:   s.activeListID,
		Teams:          slices.Clone(s.teams),
		Players:        slices.Clone(s.players),
		Summaries:      teams.Summarize(s.teams, s.players),
		Issues:         nonNil(slices.Clone(s.issues)),
		Trends:         trends(s.initial, current),
		PendingEdits:   len(s.pending),
	}
}

func trends(initial, current []roster.Attendee) []PlayerTrend {
	out := []PlayerTrend{}
	if len(initial) == 0 {
		return out
	}
	before := roster.Levels(initial)
	seen := make(map[string]bool, len(current))
	for _, a := range current {
		key := nameKey(a.Name)
		was, ok := before[key]
		if !ok || seen[key] || !a.Valid() {
			continue
		}
		seen[key] = true
		out = append(out, PlayerTrend{
			Name:    a.Name,
			Initial: was,
			Current: a.Level,
			Trend:   roster.TrendOf(was, a.Level),
		})
	}
	return out
}

func toIssues(lineErrs []roster.LineError) []Issue {
	issues := make([]Issue, 0, len(lineErrs))
	for _, le := range lineErrs {
		issues = append(issues, Issue{Line: le.Line, Text: le.Text, Message: le.Err.Error()})
	}
	return issues
}

func findName(attendees []roster.Attendee, name string) (string, bool) {
	want := nameKey(name)
	for _, a := range attendees {
		if a.Name != "" && nameKey(a.Name) == want {
			return a.Name, true
		}
	}
	return "", false
}

func validAttendees(attendees []roster.Attendee) []roster.Attendee {
	valid := make([]roster.Attendee, 0, len(attendees))
	for _, a := range attendees {
		if a.Valid() && a.Name != "" {
			valid = append(valid, a)
		}
	}
	return valid
}

// lastByName keeps one attendee per name with the level of its last occurrence,
// matching how a player list stores repeated names.
func lastByName(attendees []roster.Attendee) []roster.Attendee {
	index := make(map[string]int, len(attendees))
	out := make([]roster.Attendee, 0, len(attendees))
	for _, a := range attendees {
		key := nameKey(a.Name)
		if i, ok := index[key]; ok {
			out[i].Level = a.Level
			continue
		}
		index[key] = len(out)
		out = append(out, a)
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// IsInputError reports whether err was caused by user input rather than a failing dependency.
func IsInputError(err error) bool {
	return errors.Is(err, teams.ErrInvalidTeamSize) ||
		errors.Is(err, teams.ErrInvalidLevel) ||
		errors.Is(err, teams.ErrUnknownDistribution) ||
		errors.Is(err, teams.ErrUnknownVestPolicy) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrNoTeams) ||
		errors.Is(err, ErrEmptyRoster)
}
