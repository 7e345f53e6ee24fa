// Package events announces changes to tasks, appointments and categories.
package events

import (
	"context"
	"fmt"
	"time"
)

type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// Event describes one committed change.
type Event struct {
	Entity string    `json:"entity"`
	Action Action    `json:"action"`
	ID     uint      `json:"id"`
	At     time.Time `json:"at"`
}

// Subject is the NATS subject the event is published on.
func (e Event) Subject() string {
	return fmt.Sprintf("taskflow.%s.%s", e.Entity, e.Action)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
