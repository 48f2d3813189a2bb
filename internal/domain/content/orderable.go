// Package content contains the admin-managed content entities whose display
// order is set by hand: friend links, corporate honors, product pages and
// solution pages.
package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Collections backed by one table each.
const (
	CollectionFriendLinks     = "friend_links"
	CollectionCorporateHonors = "corporate_honors"
	CollectionProductPages    = "product_pages"
	CollectionSolutionPages   = "solution_pages"
)

// Status controls whether an entry is published.
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusEnabled || s == StatusDisabled
}

// Orderable is implemented by every entity the ordering subsystem can move.
type Orderable interface {
	GetID() uuid.UUID
	OrderScope() ordering.Scope
	GetSortOrder() int
	SetSortOrder(order int) error
}

// Positioned carries the identity, scope and position shared by every
// orderable entity.
type Positioned struct {
	shared.BaseEntity
	Scope     ordering.Scope
	SortOrder int
	Status    Status
}

func newPositioned(scope ordering.Scope) Positioned {
	return Positioned{
		BaseEntity: shared.NewBaseEntity(),
		Scope:      scope,
		Status:     StatusEnabled,
	}
}

// OrderScope returns the scope the entity is ordered within
func (p *Positioned) OrderScope() ordering.Scope {
	return p.Scope
}

// GetSortOrder returns the display position
func (p *Positioned) GetSortOrder() int {
	return p.SortOrder
}

// SetSortOrder sets the display position.
func (p *Positioned) SetSortOrder(order int) error {
	if order < 0 {
		return shared.NewDomainError("INVALID_SORT_ORDER", "Sort order cannot be negative")
	}
	if order > ordering.MaxSortOrder {
		return shared.NewDomainError("INVALID_SORT_ORDER", fmt.Sprintf("Sort order cannot exceed %d", ordering.MaxSortOrder))
	}
	p.SortOrder = order
	p.Touch()
	return nil
}

// SetStatus publishes or hides the entry.
func (p *Positioned) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("unknown status %q", status))
	}
	p.Status = status
	p.Touch()
	return nil
}

// Repository persists one orderable entity type. T is the entity struct;
// ordering of the rows is handled through the ordering.Store half.
type Repository[T any] interface {
	ordering.Store
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, scope ordering.Scope, filter shared.Filter) ([]T, int64, error)
	// NextSortOrder returns max(sort_order in scope) + 1, or 1 for an empty scope.
	NextSortOrder(ctx context.Context, scope ordering.Scope) (int, error)
	Create(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func requireText(field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", shared.NewDomainError("INVALID_"+strings.ToUpper(field), field+" cannot be empty")
	}
	if utf8.RuneCountInString(value) > maxLen {
		return "", shared.NewDomainError("INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s cannot exceed %d characters", field, maxLen))
	}
	return value, nil
}

func optionalText(field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) > maxLen {
		return "", shared.NewDomainError("INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s cannot exceed %d characters", field, maxLen))
	}
	return value, nil
}

// optionalURL accepts an empty value or an absolute http(s) URL.
func optionalURL(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	return requireURL(field, value)
}

func requireURL(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || len(value) > 500 {
		return "", shared.NewDomainError("INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s must be an absolute http(s) URL", field))
	}
	return value, nil
}
