package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RecordsOnItsOwnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncGenerations()
	s.IncGenerations()
	s.AddPlayersPartitioned(12)
	s.IncManualMoves()
	s.ObserveGenerationDuration(0.002)

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "sportsdiff_generations_total 2")
	assert.Contains(t, string(body), "sportsdiff_players_partitioned_total 12")
	assert.Contains(t, string(body), "sportsdiff_manual_moves_total 1")
	assert.Contains(t, string(body), "sportsdiff_autosave_writes_total 0")
	assert.Contains(t, string(body), "sportsdiff_generation_duration_seconds_count 1")
}
