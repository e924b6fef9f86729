package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const defaultAutosaveDelay = 10 * time.Second

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// FromEnv builds the configuration from lookup. DB_NAME and PORT are required.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key string) string {
		value, _ := lookup(key)
		return value
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		Port:          getEnv("PORT"),
		AutosaveDelay: defaultAutosaveDelay,
		Slack: SlackConfig{
			Token:     optional("SLACK_BOT_TOKEN"),
			ChannelID: optional("SLACK_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL"),
			AuthToken:  optional("TURSO_AUTH_TOKEN"),
		},
		Premium: PremiumConfig{
			EmailDomain:   optional("PREMIUM_EMAIL_DOMAIN"),
			WebhookSecret: optional("CHECKOUT_WEBHOOK_SECRET"),
		},
		ProjectID: optional("GCP_PROJECT"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}

	if raw := optional("DEV_MODE"); raw != "" {
		devMode, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEV_MODE %q: %w", raw, err)
		}
		cfg.DevMode = devMode
	}
	if raw := optional("FOLD_NAMES"); raw != "" {
		foldNames, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FOLD_NAMES %q: %w", raw, err)
		}
		cfg.FoldNames = foldNames
	}
	if raw := optional("AUTOSAVE_DELAY"); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil || delay <= 0 {
			return Config{}, fmt.Errorf("invalid AUTOSAVE_DELAY %q", raw)
		}
		cfg.AutosaveDelay = delay
	}
	return cfg, nil
}
