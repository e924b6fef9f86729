package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/sportsdiff/internal/config"
	"github.com/mauv0809/sportsdiff/internal/database"
	server "github.com/mauv0809/sportsdiff/internal/http"
	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/notifier/slack"
	"github.com/mauv0809/sportsdiff/internal/premium"
	"github.com/mauv0809/sportsdiff/internal/pubsub"
	"github.com/mauv0809/sportsdiff/internal/session"
	"github.com/mauv0809/sportsdiff/internal/store"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if cfg.DevMode {
		log.SetLevel(log.DebugLevel)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	st := store.New(db)
	usage := metrics.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	var ps pubsub.PubSubClient
	if cfg.ProjectID == "" {
		log.Warn("GCP_PROJECT is not set, shared lineups will not be published")
		ps = pubsub.NewNoop()
	} else {
		ps, err = pubsub.New(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
	}
	defer func() {
		if err := ps.Close(); err != nil {
			log.Error("Failed to close pubsub client", "error", err)
		}
	}()

	gate := premium.NewGate(st, cfg.Premium.EmailDomain, cfg.DevMode, cfg.Premium.WebhookSecret)
	sessionOpts := []session.Option{session.WithAutosaveDelay(cfg.AutosaveDelay)}
	if cfg.FoldNames {
		sessionOpts = append(sessionOpts, session.WithFoldedNames())
	}
	sessions := session.NewManager(st, metricsSvc, sessionOpts...)

	s := server.NewServer(
		sessions,
		st,
		usage,
		metricsSvc,
		metricsHandler,
		cfg,
		notifier,
		gate,
		ps,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// Pending level edits are written before the database closes.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sessions.Close(ctx); err != nil {
		log.Error("Failed to flush sessions", "error", err)
	}

	log.Info("Server process shutting down")
}
