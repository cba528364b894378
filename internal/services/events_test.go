package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cliptube/apiserver/types"
)

type capturePublisher struct {
	channel string
	data    []byte
	attrs   map[string]string
	err     error
}

func (c *capturePublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	c.channel = channel
	c.data = data
	c.attrs = attrs
	return "msg-1", c.err
}

func TestEmitPublishesAccountEvent(t *testing.T) {
	pub := &capturePublisher{}
	events := NewEventPublisher(pub, "account-events")

	events.Emit(context.Background(), EventLoggedIn, types.User{ID: 7, Username: "alice"})

	if pub.channel != "account-events" {
		t.Fatalf("unexpected channel %q", pub.channel)
	}
	if pub.attrs["type"] != EventLoggedIn {
		t.Fatalf("unexpected attrs %v", pub.attrs)
	}

	var event AccountEvent
	if err := json.Unmarshal(pub.data, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Type != EventLoggedIn || event.UserID != 7 || event.Username != "alice" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.At.IsZero() {
		t.Fatal("expected event timestamp to be set")
	}
}

func TestEmitToleratesNilPublisherAndErrors(t *testing.T) {
	var events *EventPublisher
	events.Emit(context.Background(), EventRegistered, types.User{ID: 1})

	failing := NewEventPublisher(&capturePublisher{err: errors.New("broker down")}, "account-events")
	failing.Emit(context.Background(), EventRegistered, types.User{ID: 1})
}
