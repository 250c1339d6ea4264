// Package audit persists Resolver and Switch Controller decision events
// (ResolveResult and SwitchAction) for after-the-fact review, and keeps a
// bounded in-memory window of recent events for a status/history
// endpoint.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quartzmkt/resolver-core/pkg/types"
)

// Event is a single audit record: either a resolve decision or a switch
// action, never both.
type Event struct {
	ID         string               `json:"id"`
	Series     string               `json:"series"`
	OccurredAt time.Time            `json:"occurred_at"`
	Resolve    *types.ResolveResult `json:"resolve,omitempty"`
	Action     *types.SwitchAction  `json:"action,omitempty"`
}

// Storage is the interface for persisting audit events.
type Storage interface {
	// RecordResolve stores a Resolver decision.
	RecordResolve(ctx context.Context, series string, result types.ResolveResult) error

	// RecordAction stores a Switch Controller action.
	RecordAction(ctx context.Context, series string, action types.SwitchAction) error

	// Close closes the storage connection.
	Close() error
}

// newEvent builds the common Event envelope; callers set exactly one of
// Resolve or Action.
func newEvent(series string) Event {
	return Event{
		ID:         uuid.NewString(),
		Series:     series,
		OccurredAt: time.Now(),
	}
}
