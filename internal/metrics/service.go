package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_generations_total",
			Help: "The total number of team generation cycles that produced teams.",
		}),
		PlayersPartitioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_players_partitioned_total",
			Help: "The total number of players placed on a team by generation.",
		}),
		GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_generation_failures_total",
			Help: "The total number of generation cycles rejected by invalid input.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sportsdiff_generation_duration_seconds",
			Help:    "The duration of a team generation cycle.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ManualMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_manual_moves_total",
			Help: "The total number of players moved between teams by hand.",
		}),
		AutosaveWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_autosave_writes_total",
			Help: "The total number of debounced level write-backs to player lists.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportsdiff_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sportsdiff_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Generations,
		s.PlayersPartitioned,
		s.GenerationFailures,
		s.GenerationDuration,
		s.ManualMoves,
		s.AutosaveWrites,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncGenerations() {
	s.Generations.Inc()
}

func (s *Service) AddPlayersPartitioned(count int) {
	s.PlayersPartitioned.Add(float64(count))
}

func (s *Service) IncGenerationFailures() {
	s.GenerationFailures.Inc()
}

func (s *Service) ObserveGenerationDuration(duration float64) {
	s.GenerationDuration.Observe(duration)
}

func (s *Service) IncManualMoves() {
	s.ManualMoves.Inc()
}

func (s *Service) IncAutosaveWrites() {
	s.AutosaveWrites.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
