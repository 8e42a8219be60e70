package core

import "context"

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Kind EventKind
	// Address matches events where it is the caller, sender or recipient.
	Address Address
	// Limit caps the result to the most recent entries. Zero means no cap.
	Limit int
}

// Store persists a token between process runs.
type Store interface {
	SaveState(ctx context.Context, st TokenState) error
	LoadState(ctx context.Context) (TokenState, error)
	AppendEvents(ctx context.Context, events []Event) error
	// Commit saves st and appends events atomically.
	Commit(ctx context.Context, st TokenState, events []Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	Close() error
}
