// Package store declares the EventStore contract the dispatcher and
// subscription runner depend on, kept deliberately small: persist,
// conditionally persist the newest contact list, and scan a time range.
package store

import (
	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/utils/context"
)

// I is the capability set an EventStore implementation provides. The
// relay core treats it as an opaque collaborator; concrete
// implementations live in sub-packages (badger for production, mem for
// tests).
type I interface {
	// Put persists ev unconditionally, keyed by its id.
	Put(ctx context.T, ev *event.E) error

	// PutContactListIfNewer persists ev (expected Kind == 3) into the
	// contact_lists table, replacing the stored record only if none
	// exists yet or the stored CreatedAt is strictly older than ev's.
	// The check-and-set MUST be atomic.
	PutContactListIfNewer(ctx context.T, ev *event.E) error

	// Scan returns every stored event with CreatedAt within [since,
	// until] (either bound may be nil, meaning unbounded on that side).
	// Callers apply their own Filter matching and ordering afterward.
	Scan(ctx context.T, since, until *int64) ([]*event.E, error)

	// GetContactList returns the latest kind-3 event for pubkey, or nil
	// if none is stored.
	GetContactList(ctx context.T, pubkey ident.Pubkey) (*event.E, error)

	// Close releases underlying resources.
	Close() error
}
