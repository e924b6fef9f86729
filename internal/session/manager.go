package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/sportsdiff/internal/metrics"
)

// NewManager creates a Manager. opts apply to every session it creates.
func NewManager(st Store, m metrics.Metrics, opts ...Option) *Manager {
	return &Manager{
		store:    st,
		metrics:  m,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session of userID, creating it from the stored profile on first use.
func (m *Manager) Get(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profile, err := m.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	s := New(userID, m.store, m.metrics, m.opts...)
	s.rosterText = profile.RosterText
	s.attendanceText = profile.AttendanceText
	if err := s.refreshLocked(); err != nil {
		// The stored roster may hold lines that block generation; the session still opens.
		log.Warn("Restored session without teams", "user_id", userID, "error", err)
	}
	m.sessions[userID] = s
	log.Info("Opened session", "user_id", userID)
	return s, nil
}

// Close closes every session, writing their pending edits.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for userID, s := range m.sessions {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", userID, err))
		}
		delete(m.sessions, userID)
	}
	return errors.Join(errs...)
}
