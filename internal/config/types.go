package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	Port          string
	AutosaveDelay time.Duration
	DevMode       bool
	FoldNames     bool
	Slack         SlackConfig
	Turso         TursoConfig
	Premium       PremiumConfig
	ProjectID     string
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type PremiumConfig struct {
	EmailDomain   string
	WebhookSecret string
}
