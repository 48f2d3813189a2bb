// Package reorder keeps an admin-side copy of one ordered scope. Moves are
// applied to the local copy at once and persisted in the background; a
// rejected persist restores the order the move started from.
package reorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot is a scope as returned by the server.
type Snapshot struct {
	Scope   string
	Entries []ordering.Entry
	Version string
}

// Transport loads scopes and persists batches.
type Transport interface {
	Load(ctx context.Context, resource, scope string) (Snapshot, error)
	// Persist applies updates atomically and returns the new scope version.
	// A non-empty expectedVersion makes the write conditional.
	Persist(ctx context.Context, resource, scope string, updates []ordering.Update, expectedVersion string) (string, error)
}

// Result reports the outcome of one persisted command.
type Result struct {
	Command ordering.Command
	// Entries is the order after the outcome: the command's result on
	// success, the restored snapshot on rollback.
	Entries    []ordering.Entry
	Version    string
	Err        error
	RolledBack bool
}

// Option configures a List
type Option func(*List)

// WithCompareAndSwap sends the last known version with every batch.
func WithCompareAndSwap(enabled bool) Option {
	return func(l *List) { l.cas = enabled }
}

// OnResult registers a callback run after each persist outcome.
func OnResult(fn func(Result)) Option {
	return func(l *List) { l.onResult = fn }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *List) { l.logger = logger }
}

// WithPersistTimeout bounds one persist call.
func WithPersistTimeout(d time.Duration) Option {
	return func(l *List) { l.timeout = d }
}

// WithResultBuffer sets the capacity of the Results channel.
func WithResultBuffer(n int) Option {
	return func(l *List) { l.buffer = n }
}

// List is the optimistic local copy of one scope. It is safe for
// concurrent use.
type List struct {
	transport Transport
	resource  string
	scope     string

	cas      bool
	onResult func(Result)
	logger   *zap.Logger
	timeout  time.Duration
	buffer   int

	mu         sync.Mutex
	entries    []ordering.Entry
	version    string
	state      State
	generation uint64 // bumped by every applied move
	results    chan Result
	wg         sync.WaitGroup
}

// NewList creates an empty Clean list. Call Load to fetch the scope.
func NewList(transport Transport, resource, scope string, opts ...Option) *List {
	l := &List{
		transport: transport,
		resource:  resource,
		scope:     scope,
		logger:    zap.NewNop(),
		timeout:   10 * time.Second,
		buffer:    16,
		entries:   []ordering.Entry{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.results = make(chan Result, l.buffer)
	return l
}

// Load replaces the local order with the server's. It fails with
// ErrPersistInFlight while a batch is in flight and with ErrStaleLoad when a
// move started during the fetch.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.state == StatePersisting {
		l.mu.Unlock()
		return ErrPersistInFlight
	}
	generation := l.generation
	l.mu.Unlock()

	snap, err := l.transport.Load(ctx, l.resource, l.scope)
	if err != nil {
		return fmt.Errorf("load %s: %w", l.resource, err)
	}

	entries := ordering.Clone(snap.Entries)
	if entries == nil {
		entries = []ordering.Entry{}
	}
	ordering.SortEntries(entries)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StatePersisting {
		return ErrPersistInFlight
	}
	if l.generation != generation {
		return ErrStaleLoad
	}
	l.entries = entries
	l.version = snap.Version
	l.setState(StateClean)
	return nil
}

// Entries returns a copy of the current local order.
func (l *List) Entries() []ordering.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ordering.Clone(l.entries)
}

// IDs returns the ids in the current local order.
func (l *List) IDs() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ordering.IDs(l.entries)
}

// Version returns the last version confirmed by the server.
func (l *List) Version() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// State returns the current lifecycle state.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Results delivers one Result per persisted command.
func (l *List) Results() <-chan Result {
	return l.results
}

// CanMoveUp reports whether id is present and not first.
func (l *List) CanMoveUp(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ordering.CanMoveUp(l.entries, id)
}

// CanMoveDown reports whether id is present and not last.
func (l *List) CanMoveDown(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ordering.CanMoveDown(l.entries, id)
}

// MoveUp swaps id with its predecessor.
func (l *List) MoveUp(id uuid.UUID) (ordering.Command, error) {
	return l.apply(func(entries []ordering.Entry) (ordering.Command, error) {
		return ordering.MoveUp(entries, id)
	})
}

// MoveDown swaps id with its successor.
func (l *List) MoveDown(id uuid.UUID) (ordering.Command, error) {
	return l.apply(func(entries []ordering.Entry) (ordering.Command, error) {
		return ordering.MoveDown(entries, id)
	})
}

// MoveTo moves id to the zero-based index and renumbers the scope 1..N.
func (l *List) MoveTo(id uuid.UUID, index int) (ordering.Command, error) {
	return l.apply(func(entries []ordering.Entry) (ordering.Command, error) {
		return ordering.MoveTo(entries, id, index)
	})
}

// Wait blocks until the in-flight persist, if any, has reported.
func (l *List) Wait() {
	l.wg.Wait()
}

// apply builds the command on the local order, shows its result at once and
// persists it in the background. Rejected commands leave the list as is.
func (l *List) apply(build func([]ordering.Entry) (ordering.Command, error)) (ordering.Command, error) {
	l.mu.Lock()
	if l.state == StatePersisting {
		l.mu.Unlock()
		return ordering.Command{}, ErrPersistInFlight
	}
	cmd, err := build(l.entries)
	if err != nil {
		l.mu.Unlock()
		return ordering.Command{}, err
	}

	snapshot := ordering.Clone(l.entries)
	l.entries = ordering.Clone(cmd.After)
	l.generation++
	l.setState(StateDirty)
	expected := ""
	if l.cas {
		expected = l.version
	}
	l.setState(StatePersisting)
	l.wg.Add(1)
	l.mu.Unlock()

	go l.persist(cmd, snapshot, expected)
	return cmd, nil
}

func (l *List) persist(cmd ordering.Command, snapshot []ordering.Entry, expected string) {
	defer l.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	version, err := l.transport.Persist(ctx, l.resource, l.scope, cmd.Updates, expected)

	result := Result{Command: cmd, Err: err}
	l.mu.Lock()
	if err != nil {
		l.entries = snapshot
		l.setState(StateRolledBack)
		result.RolledBack = true
		result.Version = l.version
	} else {
		l.version = version
		l.setState(StateClean)
		result.Version = version
	}
	result.Entries = ordering.Clone(l.entries)
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("Reorder rejected, local order restored",
			zap.String("resource", l.resource),
			zap.String("scope", l.scope),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err),
		)
	} else {
		l.logger.Debug("Reorder persisted",
			zap.String("resource", l.resource),
			zap.String("scope", l.scope),
			zap.Int("updates", len(cmd.Updates)),
			zap.String("version", version),
		)
	}

	if l.onResult != nil {
		l.onResult(result)
	}
	select {
	case l.results <- result:
	default:
		l.logger.Warn("Result channel full, dropping result", zap.String("resource", l.resource))
	}
}

// setState moves the FSM. Callers hold mu.
func (l *List) setState(next State) {
	if !CanTransition(l.state, next) {
		panic(fmt.Sprintf("reorder: invalid transition %s -> %s", l.state, next))
	}
	l.state = next
}
