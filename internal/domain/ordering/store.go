package ordering

import (
	"context"
	"time"
)

// Store reads and rewrites the sort orders of one collection.
type Store interface {
	// Collection is the scope collection served by the store.
	Collection() string
	// ListEntries returns the scope ascending by sort order.
	ListEntries(ctx context.Context, scope Scope) ([]Entry, error)
	// UpdateOrders applies every update or none. A non-empty expectedVersion
	// must match Version of the scope as read inside the transaction.
	UpdateOrders(ctx context.Context, scope Scope, updates []Update, expectedVersion string) ([]Entry, error)
}

// ScopeLocker grants short exclusive holds on a scope so that two batches for
// the same scope never run at once.
type ScopeLocker interface {
	// TryLock returns ok=false without error when the scope is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
