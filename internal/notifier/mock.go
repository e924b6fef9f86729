package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendLineupFunc func(lineup Lineup, dryRun bool) error

	// Call records
	SendLineupCalls []struct {
		Lineup Lineup
		DryRun bool
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLineupCalls = nil
}

func (m *Mock) SendLineup(lineup Lineup, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLineupCalls = append(m.SendLineupCalls, struct {
		Lineup Lineup
		DryRun bool
	}{lineup, dryRun})
	if m.SendLineupFunc != nil {
		return m.SendLineupFunc(lineup, dryRun)
	}
	return nil
}
