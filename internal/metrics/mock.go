package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	generations         int
	playersPartitioned  int
	generationFailures  int
	generationDurations []float64
	manualMoves         int
	autosaveWrites      int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		generationDurations: make([]float64, 0),
	}
}

func (m *Mock) IncGenerations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations++
}

func (m *Mock) AddPlayersPartitioned(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersPartitioned += count
}

func (m *Mock) IncGenerationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationFailures++
}

func (m *Mock) ObserveGenerationDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationDurations = append(m.generationDurations, duration)
}

func (m *Mock) IncManualMoves() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manualMoves++
}

func (m *Mock) IncAutosaveWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autosaveWrites++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Generations returns the number of times IncGenerations was called.
func (m *Mock) Generations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations
}

// PlayersPartitioned returns the sum passed to AddPlayersPartitioned.
func (m *Mock) PlayersPartitioned() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersPartitioned
}

// GenerationFailures returns the number of times IncGenerationFailures was called.
func (m *Mock) GenerationFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generationFailures
}

// ManualMoves returns the number of times IncManualMoves was called.
func (m *Mock) ManualMoves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manualMoves
}

// AutosaveWrites returns the number of times IncAutosaveWrites was called.
func (m *Mock) AutosaveWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autosaveWrites
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
