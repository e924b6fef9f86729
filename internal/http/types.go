package http

import (
	"net/http"

	"github.com/mauv0809/sportsdiff/internal/config"
	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/notifier"
	"github.com/mauv0809/sportsdiff/internal/premium"
	"github.com/mauv0809/sportsdiff/internal/pubsub"
	"github.com/mauv0809/sportsdiff/internal/session"
	"github.com/mauv0809/sportsdiff/internal/store"
)

type Server struct {
	Sessions       *session.Manager
	Store          store.Store
	Usage          metrics.UsageStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Gate           *premium.Gate
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Text string `json:"text"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`
}

type moveResponse struct {
	Moved bool          `json:"moved"`
	State session.State `json:"state"`
}

// levelRequest carries the level as text so "2,5" is accepted like in a roster line.
type levelRequest struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type shareRequest struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error string         `json:"error"`
	State *session.State `json:"state,omitempty"`
}
