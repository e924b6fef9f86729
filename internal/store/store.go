package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a new Store.
func New(db *sql.DB) Store {
	return &store{
		db:  db,
		now: time.Now,
	}
}

// GetProfile returns the stored texts of a user. A user without a profile gets an empty one.
func (s *store) GetProfile(userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile := &Profile{UserID: userID}
	var updatedAt int64
	err := s.db.QueryRow(`SELECT roster_text, attendance_text, updated_at FROM profiles WHERE user_id = ?`, userID).
		Scan(&profile.RosterText, &profile.AttendanceText, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	profile.UpdatedAt = time.Unix(updatedAt, 0)
	return profile, nil
}

// SaveRosterText upserts the roster text of a user's profile.
func (s *store) SaveRosterText(userID, text string) error {
	return s.saveProfileColumn(userID, "roster_text", text)
}

// SaveAttendanceText upserts the attendance text of a user's profile.
func (s *store) SaveAttendanceText(userID, text string) error {
	return s.saveProfileColumn(userID, "attendance_text", text)
}

func (s *store) saveProfileColumn(userID, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// column is one of two constants above, never user input.
	query := fmt.Sprintf(`
		INSERT INTO profiles (user_id, %[1]s, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = excluded.updated_at;
	`, column)
	if _, err := s.db.Exec(query, userID, value, s.now().Unix()); err != nil {
		return fmt.Errorf("failed to save %s: %w", column, err)
	}
	log.Debug("Saved profile text", "user_id", userID, "column", column)
	return nil
}

// CreatePlayerList stores a named list and its roster rows in one transaction.
// Players without a valid level are skipped, and a repeated name keeps its last level.
func (s *store) CreatePlayerList(userID, name string, players []roster.Attendee) (*PlayerList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	list := &PlayerList{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Unix(now.Unix(), 0),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO player_lists (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		list.ID, list.UserID, list.Name, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to create player list: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO list_players (id, player_list_id, user_id, name, level, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET level = excluded.level, updated_at = excluded.updated_at;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer stmt.Close()

	skipped := 0
	for position, p := range players {
		if !p.Valid() || p.Name == "" {
			skipped++
			continue
		}
		if _, err := stmt.Exec(rowID(list.ID, p.Name), list.ID, userID, p.Name, p.Level, position, now.Unix(), now.Unix()); err != nil {
			return nil, fmt.Errorf("failed to insert player %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit player list: %w", err)
	}
	log.Info("Created player list", "id", list.ID, "name", name, "players", len(players)-skipped, "skipped", skipped)
	return list, nil
}

// GetPlayerLists returns a user's lists, newest first.
func (s *store) GetPlayerLists(userID string) ([]PlayerList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, user_id, name, created_at FROM player_lists
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player lists: %w", err)
	}
	defer rows.Close()

	lists := []PlayerList{}
	for rows.Next() {
		var list PlayerList
		var createdAt int64
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan player list row: %w", err)
		}
		list.CreatedAt = time.Unix(createdAt, 0)
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// GetListPlayers returns the rows of one of the user's lists in roster order.
func (s *store) GetListPlayers(userID, listID string) ([]ListPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ensureList(userID, listID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, player_list_id, name, level FROM list_players
		WHERE player_list_id = ? AND user_id = ?
		ORDER BY position ASC, rowid ASC
	`, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list players: %w", err)
	}
	defer rows.Close()

	players := []ListPlayer{}
	for rows.Next() {
		var p ListPlayer
		if err := rows.Scan(&p.ID, &p.ListID, &p.Name, &p.Level); err != nil {
			return nil, fmt.Errorf("failed to scan list player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpsertPlayerLevels writes edited levels back to a list, adding players it does not have yet.
// Rows are keyed by the kebab-cased name, so names differing only in case or spacing share a row.
func (s *store) UpsertPlayerLevels(userID, listID string, updates []roster.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureList(userID, listID); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO list_players (id, player_list_id, user_id, name, level, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM list_players WHERE player_list_id = ?), ?, ?)
		ON CONFLICT(id) DO UPDATE SET level = excluded.level, updated_at = excluded.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare level upsert: %w", err)
	}
	defer stmt.Close()

	now := s.now().Unix()
	for _, u := range updates {
		if !u.Valid() {
			continue
		}
		if _, err := stmt.Exec(rowID(listID, u.Name), listID, userID, u.Name, u.Level, listID, now, now); err != nil {
			return fmt.Errorf("failed to upsert level for %s: %w", u.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit level updates: %w", err)
	}
	log.Info("Saved player levels", "list_id", listID, "count", len(updates))
	return nil
}

// SaveTeamSnapshot stores generated teams under a name.
func (s *store) SaveTeamSnapshot(userID, name string, snapshot Snapshot) (*SavedTeams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := msgpack.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team snapshot: %w", err)
	}

	now := s.now()
	saved := &SavedTeams{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Snapshot:  snapshot,
		CreatedAt: time.Unix(now.Unix(), 0),
	}
	if _, err := s.db.Exec(`INSERT INTO saved_teams (id, user_id, name, team_data, created_at) VALUES (?, ?, ?, ?, ?)`,
		saved.ID, userID, name, blob, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to save teams: %w", err)
	}
	log.Info("Saved teams", "id", saved.ID, "name", name, "teams", len(snapshot.Teams), "players", len(snapshot.Players))
	return saved, nil
}

// GetSavedTeams returns a user's saved teams, newest first.
func (s *store) GetSavedTeams(userID string) ([]SavedTeams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, user_id, name, team_data, created_at FROM saved_teams
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved teams: %w", err)
	}
	defer rows.Close()

	saved := []SavedTeams{}
	for rows.Next() {
		st, err := scanSavedTeams(rows)
		if err != nil {
			log.Error("Failed to scan saved teams row", "error", err)
			continue
		}
		saved = append(saved, *st)
	}
	return saved, rows.Err()
}

// GetSavedTeam returns one saved snapshot of the user.
func (s *store) GetSavedTeam(userID, id string) (*SavedTeams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, user_id, name, team_data, created_at FROM saved_teams WHERE id = ? AND user_id = ?`, id, userID)
	saved, err := scanSavedTeams(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("saved teams %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get saved teams: %w", err)
	}
	return saved, nil
}

// DeleteSavedTeam removes one saved snapshot of the user.
func (s *store) DeleteSavedTeam(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM saved_teams WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved teams: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("saved teams %s: %w", id, ErrNotFound)
	}
	log.Info("Deleted saved teams", "id", id)
	return nil
}

// IsPremium reports whether the user has been granted premium access.
func (s *store) IsPremium(userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM premium_users WHERE user_id = ?`, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check premium access: %w", err)
	}
	return true, nil
}

// GrantPremium marks a user as premium. Granting twice is a no-op.
func (s *store) GrantPremium(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO premium_users (user_id, granted_at) VALUES (?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to grant premium: %w", err)
	}
	log.Info("Granted premium access", "user_id", userID)
	return nil
}

// ensureList checks that listID belongs to userID. Callers hold the lock.
func (s *store) ensureList(userID, listID string) error {
	var owner string
	err := s.db.QueryRow(`SELECT user_id FROM player_lists WHERE id = ?`, listID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("player list %s: %w", listID, ErrNotFound)
		}
		return fmt.Errorf("failed to get player list: %w", err)
	}
	if owner != userID {
		return fmt.Errorf("player list %s: %w", listID, ErrNotFound)
	}
	return nil
}

// scanSavedTeams is a helper function to scan a single saved_teams row.
func scanSavedTeams(scanner interface{ Scan(...any) error }) (*SavedTeams, error) {
	var saved SavedTeams
	var blob []byte
	var createdAt int64
	if err := scanner.Scan(&saved.ID, &saved.UserID, &saved.Name, &blob, &createdAt); err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(blob, &saved.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team snapshot %s: %w", saved.ID, err)
	}
	saved.CreatedAt = time.Unix(createdAt, 0)
	return &saved, nil
}

// rowID builds the list row key from the list ID and the kebab-cased lowercase name.
func rowID(listID, name string) string {
	return listID + "-" + strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
