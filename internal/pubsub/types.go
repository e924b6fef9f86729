package pubsub

import (
	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/sportsdiff/internal/teams"
)

type client struct {
	client *pubsub.Client
}

// noop drops published messages. Used when no Google Cloud project is configured.
type noop struct{}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventShareLineup EventType = "share-lineup"
)

// ShareLineup asks for a generated lineup to be posted to the team channel.
type ShareLineup struct {
	UserID  string         `msgpack:"user_id"`
	Title   string         `msgpack:"title"`
	Teams   []teams.Team   `msgpack:"teams"`
	Players []teams.Player `msgpack:"players"`
}

// PushEnvelope is the JSON body of a Pub/Sub push delivery.
type PushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"` // base64-encoded message payload
		MessageID string `json:"messageId"`
	} `json:"message"`
}
