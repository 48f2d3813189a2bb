// Package ordering applies reorder batches to the orderable collections.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/cms/backend/internal/infrastructure/logger"
	"github.com/cms/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrUnknownResource is returned for resource names nothing was registered for.
var ErrUnknownResource = shared.NewDomainError("UNKNOWN_RESOURCE", "Unknown orderable resource")

// Resource binds a public resource name to the store of its collection.
type Resource struct {
	// Name is the URL segment, e.g. "friend-links".
	Name string
	// Keyed resources are ordered per page key and need a scope key.
	Keyed bool
	Store ordering.Store
}

// Config holds reorder limits.
type Config struct {
	LockTTL      time.Duration
	MaxBatchSize int
}

// DefaultConfig returns the default reorder limits.
func DefaultConfig() Config {
	return Config{
		LockTTL:      10 * time.Second,
		MaxBatchSize: ordering.DefaultMaxBatchSize,
	}
}

// Service lists and reorders every registered resource through one locked,
// atomic path.
type Service struct {
	resources map[string]Resource
	locker    ordering.ScopeLocker
	metrics   *telemetry.ReorderMetrics
	logger    *zap.Logger
	config    Config
}

// NewService creates a Service. metrics may be nil.
func NewService(locker ordering.ScopeLocker, metrics *telemetry.ReorderMetrics, log *zap.Logger, cfg Config, resources ...Resource) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultConfig().LockTTL
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultConfig().MaxBatchSize
	}
	s := &Service{
		resources: make(map[string]Resource, len(resources)),
		locker:    locker,
		metrics:   metrics,
		logger:    log,
		config:    cfg,
	}
	for _, r := range resources {
		s.resources[r.Name] = r
	}
	return s
}

// Resources returns the registered resource names, sorted.
func (s *Service) Resources() []string {
	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the resource and the scope addressed by key.
func (s *Service) Resolve(resource, key string) (Resource, ordering.Scope, error) {
	r, ok := s.resources[resource]
	if !ok {
		return Resource{}, ordering.Scope{}, shared.NewDomainError(ErrUnknownResource.Code,
			fmt.Sprintf("unknown resource %q", resource))
	}
	switch {
	case r.Keyed && key == "":
		return Resource{}, ordering.Scope{}, shared.NewDomainError(ordering.CodeInvalidScope,
			fmt.Sprintf("%s requires a scope", resource))
	case !r.Keyed && key != "":
		return Resource{}, ordering.Scope{}, shared.NewDomainError(ordering.CodeInvalidScope,
			fmt.Sprintf("%s has a single scope; scope must be empty", resource))
	}
	scope, err := ordering.NewScope(r.Store.Collection(), key)
	if err != nil {
		return Resource{}, ordering.Scope{}, err
	}
	return r, scope, nil
}

// List returns the scope ascending by sort order with its version.
func (s *Service) List(ctx context.Context, resource, key string) (*ListResult, error) {
	r, scope, err := s.Resolve(resource, key)
	if err != nil {
		return nil, err
	}
	entries, err := r.Store.ListEntries(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Scope:   scope.String(),
		Entries: entries,
		Version: ordering.Version(entries),
	}, nil
}

// Reorder applies one client batch atomically. A second batch for a scope
// that is still being written fails with ordering.ErrReorderInProgress.
func (s *Service) Reorder(ctx context.Context, req ReorderRequest) (result *ReorderResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ordering", "reorder",
		telemetry.WithAttribute(telemetry.SpanAttrResource, req.Resource),
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(req.Updates)),
		telemetry.WithAttribute(telemetry.SpanAttrCAS, req.ExpectedVersion != ""),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		s.record(ctx, req.Resource, len(req.Updates), start, err)
		telemetry.RecordError(span, err)
	}()

	r, scope, err := s.Resolve(req.Resource, req.ScopeKey)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrScope, scope.String())

	if err := ordering.ValidateBatch(req.Updates, s.config.MaxBatchSize); err != nil {
		return nil, err
	}

	var entries []ordering.Entry
	err = s.withScopeLock(ctx, scope, func(ctx context.Context) error {
		var uerr error
		entries, uerr = r.Store.UpdateOrders(ctx, scope, req.Updates, req.ExpectedVersion)
		return uerr
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Scope reordered",
		zap.String("resource", req.Resource),
		zap.String("scope", scope.String()),
		zap.Int("updates", len(req.Updates)),
	)

	return newReorderResult(scope, len(req.Updates), entries), nil
}

// Move runs the command builder on the stored scope and persists its batch
// through the same path as Reorder.
func (s *Service) Move(ctx context.Context, req MoveRequest) (result *ReorderResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ordering", "move",
		telemetry.WithAttribute(telemetry.SpanAttrResource, req.Resource),
		telemetry.WithAttribute(telemetry.SpanAttrEntryID, req.ID.String()),
	)
	defer span.End()

	var size int
	start := time.Now()
	defer func() {
		s.record(ctx, req.Resource, size, start, err)
		telemetry.RecordError(span, err)
	}()

	r, scope, err := s.Resolve(req.Resource, req.ScopeKey)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	var entries []ordering.Entry
	err = s.withScopeLock(ctx, scope, func(ctx context.Context) error {
		current, lerr := r.Store.ListEntries(ctx, scope)
		if lerr != nil {
			return lerr
		}
		version := ordering.Version(current)
		if req.ExpectedVersion != "" && req.ExpectedVersion != version {
			return ordering.ErrVersionMismatch
		}

		cmd, berr := req.build(current)
		if berr != nil {
			return berr
		}
		size = len(cmd.Updates)

		var uerr error
		entries, uerr = r.Store.UpdateOrders(ctx, scope, cmd.Updates, version)
		return uerr
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Entry moved",
		zap.String("resource", req.Resource),
		zap.String("scope", scope.String()),
		zap.String("id", req.ID.String()),
		zap.Int("updates", size),
	)

	return newReorderResult(scope, size, entries), nil
}

func (s *Service) withScopeLock(ctx context.Context, scope ordering.Scope, fn func(context.Context) error) error {
	release, ok, err := s.locker.TryLock(ctx, scope.String(), s.config.LockTTL)
	if err != nil {
		return fmt.Errorf("lock scope %s: %w", scope, err)
	}
	if !ok {
		return ordering.ErrReorderInProgress
	}
	telemetry.AddEvent(trace.SpanFromContext(ctx), "scope_locked", telemetry.SpanAttrScope, scope.String())
	defer func() {
		// release even when the request context is already cancelled
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			logger.FromContext(ctx).Warn("Failed to release scope lock",
				zap.String("scope", scope.String()), zap.Error(rerr))
		}
	}()
	return fn(ctx)
}

func (s *Service) record(ctx context.Context, resource string, size int, start time.Time, err error) {
	outcome := Outcome(err)
	s.metrics.RecordBatch(ctx, resource, outcome, size, time.Since(start))
	if err != nil && outcome == telemetry.OutcomeError {
		logger.FromContext(ctx).Error("Reorder failed",
			zap.String("resource", resource), zap.Error(err))
	}
}

// Outcome classifies a reorder error for metrics.
func Outcome(err error) string {
	if err == nil {
		return telemetry.OutcomeOK
	}
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return telemetry.OutcomeError
	}
	switch de.Code {
	case ordering.CodeEntryNotFound, shared.ErrNotFound.Code:
		return telemetry.OutcomeNotFound
	case ordering.CodeSortOrderConflict, ordering.CodeReorderInProgress,
		ordering.CodeVersionMismatch, shared.ErrAlreadyExists.Code:
		return telemetry.OutcomeConflict
	default:
		return telemetry.OutcomeValidation
	}
}

