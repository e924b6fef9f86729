package metrics

import (
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Usage counter keys.
const (
	KeyTeamsGenerated = "teams_generated"
	KeyListsImported  = "lists_imported"
	KeyTeamsSaved     = "teams_saved"
	KeyLineupsShared  = "lineups_shared"
)

// Service holds all the Prometheus metrics for the application.
type Service struct {
	Generations        prometheus.Counter
	PlayersPartitioned prometheus.Counter
	GenerationFailures prometheus.Counter
	GenerationDuration prometheus.Histogram
	ManualMoves        prometheus.Counter
	AutosaveWrites     prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// store handles usage counter database operations.
type store struct {
	db *sql.DB
	mu sync.Mutex
}
