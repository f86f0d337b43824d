package store

import "context"

// Store is the persistence contract the notification core depends on:
// snapshot reads of the user and pairing directories, point existence
// checks and point writes of individual dedup flags, and a retention purge.
//
// Flag semantics are the core invariant: once SetFlag succeeds for a key,
// FlagExists must report true for that key from then on, so the guarded
// event never fires again for that date.
type Store interface {
	// ListUsers returns a snapshot of every registered user.
	ListUsers(ctx context.Context) ([]User, error)

	// ListPairs returns a snapshot of the pairing directory keyed by pair id.
	ListPairs(ctx context.Context) (map[string]Pair, error)

	// FlagExists reports whether a dedup flag is set on a user's document.
	FlagExists(ctx context.Context, userID string, key FlagKey) (bool, error)

	// SetFlag sets a dedup flag on a user's document. Setting an already
	// set flag is a no-op, not an error.
	SetFlag(ctx context.Context, userID string, key FlagKey) error

	// PurgeFlagsBefore removes flags whose date component is strictly
	// before cutoffDate (YYYY-MM-DD) and returns the number of users whose
	// documents were trimmed.
	PurgeFlagsBefore(ctx context.Context, cutoffDate string) (int64, error)

	// Ping verifies the backing service is reachable.
	Ping(ctx context.Context) error
}
