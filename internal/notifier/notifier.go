package notifier

import "github.com/mauv0809/sportsdiff/internal/teams"

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// SendLineup posts generated teams to the team channel.
	SendLineup(lineup Lineup, dryRun bool) error
}

// Lineup is a set of generated teams ready to be shared.
type Lineup struct {
	Title   string         `json:"title"`
	Teams   []teams.Team   `json:"teams"`
	Players []teams.Player `json:"players"`
}
