// Package content provides create, read, update and delete for the orderable
// content entities. Reordering is handled by the ordering package.
package content

import (
	"context"
	"errors"
	"time"

	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/cms/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// appendAttempts bounds retries when two creates race for the same tail slot.
const appendAttempts = 3

// Entity constrains PT to a pointer to T that carries a position.
type Entity[T any] interface {
	*T
	content.Orderable
}

// Service manages one entity type.
type Service[T any, PT Entity[T]] struct {
	repo    content.Repository[T]
	backoff time.Duration
}

// NewService creates a Service backed by repo.
func NewService[T any, PT Entity[T]](repo content.Repository[T]) *Service[T, PT] {
	return &Service[T, PT]{repo: repo, backoff: 20 * time.Millisecond}
}

// Create appends entity at the end of its scope.
func (s *Service[T, PT]) Create(ctx context.Context, entity PT) (PT, error) {
	scope := entity.OrderScope()
	backoff := retry.WithMaxRetries(appendAttempts-1, retry.NewConstant(s.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		next, err := s.repo.NextSortOrder(ctx, scope)
		if err != nil {
			return err
		}
		if err := entity.SetSortOrder(next); err != nil {
			return err
		}
		err = s.repo.Create(ctx, (*T)(entity))
		if errors.Is(err, shared.ErrAlreadyExists) {
			// another create took the same tail position
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Content entry created",
		zap.String("scope", scope.String()),
		zap.String("id", entity.GetID().String()),
		zap.Int("sort_order", entity.GetSortOrder()),
	)
	return entity, nil
}

// Get returns one entry.
func (s *Service[T, PT]) Get(ctx context.Context, id uuid.UUID) (PT, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return PT(entity), nil
}

// List returns one page of a scope, ascending by sort order unless the filter
// names another sortable column.
func (s *Service[T, PT]) List(ctx context.Context, scope ordering.Scope, filter shared.Filter) (shared.Paginated[T], error) {
	filter = filter.Normalize()
	items, total, err := s.repo.FindAll(ctx, scope, filter)
	if err != nil {
		return shared.Paginated[T]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListVersioned returns one page together with the version of the scope the
// page was read from. The version is read before and after the page; a
// reorder landing in between makes it read again.
func (s *Service[T, PT]) ListVersioned(ctx context.Context, scope ordering.Scope, filter shared.Filter) (shared.Paginated[T], string, error) {
	var (
		page    shared.Paginated[T]
		version string
	)
	backoff := retry.WithMaxRetries(appendAttempts-1, retry.NewConstant(s.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		before, err := s.repo.ListEntries(ctx, scope)
		if err != nil {
			return err
		}
		page, err = s.List(ctx, scope, filter)
		if err != nil {
			return err
		}
		after, err := s.repo.ListEntries(ctx, scope)
		if err != nil {
			return err
		}
		version = ordering.Version(after)
		if ordering.Version(before) != version {
			return retry.RetryableError(ordering.ErrReorderInProgress)
		}
		return nil
	})
	if err != nil {
		return shared.Paginated[T]{}, "", err
	}
	return page, version, nil
}

// Update loads the entry, applies mutate and saves it. The position is not
// touched; use the ordering service to move entries.
func (s *Service[T, PT]) Update(ctx context.Context, id uuid.UUID, mutate func(PT) error) (PT, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(entity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, (*T)(entity)); err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes the entry. Remaining sort orders keep their gap.
func (s *Service[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Content entry deleted", zap.String("id", id.String()))
	return nil
}

// Type aliases for the four managed collections
type (
	FriendLinkService     = Service[content.FriendLink, *content.FriendLink]
	CorporateHonorService = Service[content.CorporateHonor, *content.CorporateHonor]
	PageService           = Service[content.Page, *content.Page]
)

// NewFriendLinkService creates the friend link service
func NewFriendLinkService(repo content.Repository[content.FriendLink]) *FriendLinkService {
	return NewService[content.FriendLink, *content.FriendLink](repo)
}

// NewCorporateHonorService creates the corporate honor service
func NewCorporateHonorService(repo content.Repository[content.CorporateHonor]) *CorporateHonorService {
	return NewService[content.CorporateHonor, *content.CorporateHonor](repo)
}

// NewPageService creates a product or solution page service
func NewPageService(repo content.Repository[content.Page]) *PageService {
	return NewService[content.Page, *content.Page](repo)
}
