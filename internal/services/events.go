package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/cliptube/apiserver/types"
)

// Account lifecycle event types.
const (
	EventRegistered = "account.registered"
	EventLoggedIn   = "account.logged_in"
	EventLoggedOut  = "account.logged_out"
)

// Publisher sends a payload to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// AccountEvent is the payload published for account lifecycle changes.
type AccountEvent struct {
	Type     string    `json:"type"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// EventPublisher publishes account events best-effort: publish failures are
// logged and never fail the request. A nil EventPublisher drops everything.
type EventPublisher struct {
	pub     Publisher
	channel string
}

func NewEventPublisher(pub Publisher, channel string) *EventPublisher {
	return &EventPublisher{pub: pub, channel: channel}
}

// Emit publishes one account event for the given user.
func (p *EventPublisher) Emit(ctx context.Context, eventType string, user types.User) {
	if p == nil || p.pub == nil {
		return
	}
	data, err := json.Marshal(AccountEvent{
		Type:     eventType,
		UserID:   user.ID,
		Username: user.Username,
		At:       time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to encode %s event: %v", eventType, err)
		return
	}
	if _, err := p.pub.Publish(ctx, p.channel, data, map[string]string{"type": eventType}); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
