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

func NewServer(sessions *session.Manager, store store.Store, usage metrics.UsageStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, gate *premium.Gate, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Sessions:       sessions,
		Store:          store,
		Usage:          usage,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Gate:           gate,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	user := []Middleware{paramsMiddleware, userMiddleware}
	paid := []Middleware{paramsMiddleware, userMiddleware, premiumMiddleware(s.Gate)}

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))

	s.Router.Handle("GET /roster", Chain(s.GetRosterHandler(), user...))
	s.Router.Handle("PUT /roster", Chain(s.PutRosterHandler(), user...))
	s.Router.Handle("GET /attendance", Chain(s.GetAttendanceHandler(), user...))
	s.Router.Handle("PUT /attendance", Chain(s.PutAttendanceHandler(), user...))
	s.Router.Handle("PUT /settings", Chain(s.PutSettingsHandler(), user...))
	s.Router.Handle("POST /generate", Chain(s.GenerateHandler(), user...))
	s.Router.Handle("GET /teams", Chain(s.GetTeamsHandler(), user...))
	s.Router.Handle("POST /teams/move", Chain(s.MovePlayerHandler(), user...))
	s.Router.Handle("POST /levels", Chain(s.EditLevelHandler(), user...))
	s.Router.Handle("POST /levels/reset", Chain(s.ResetLevelsHandler(), user...))
	s.Router.Handle("POST /levels/flush", Chain(s.FlushLevelsHandler(), user...))

	s.Router.Handle("POST /teams/share", Chain(s.ShareTeamsHandler(), paid...))
	s.Router.Handle("GET /lists", Chain(s.ListPlayerListsHandler(), paid...))
	s.Router.Handle("POST /lists", Chain(s.ImportListHandler(), paid...))
	s.Router.Handle("POST /lists/{id}/load", Chain(s.LoadListHandler(), paid...))
	s.Router.Handle("GET /saved-teams", Chain(s.ListSavedTeamsHandler(), paid...))
	s.Router.Handle("POST /saved-teams", Chain(s.SaveTeamsHandler(), paid...))
	s.Router.Handle("POST /saved-teams/{id}/load", Chain(s.LoadSavedTeamsHandler(), paid...))
	s.Router.Handle("DELETE /saved-teams/{id}", Chain(s.DeleteSavedTeamsHandler(), paid...))

	s.Router.Handle("POST /pubsub/share-lineup", Chain(s.ShareLineupPushHandler(), paramsMiddleware))
	s.Router.Handle("POST /webhooks/checkout", Chain(s.CheckoutWebhookHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
