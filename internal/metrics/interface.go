package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncGenerations()
	AddPlayersPartitioned(count int)
	IncGenerationFailures()
	ObserveGenerationDuration(duration float64)
	IncManualMoves()
	IncAutosaveWrites()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// UsageStore persists lifetime usage counters across restarts.
type UsageStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
