package ordering

import (
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Move directions
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// ListResult is one scope in display order.
type ListResult struct {
	Scope   string
	Entries []ordering.Entry
	Version string
}

// ReorderRequest is a client batch for one scope.
type ReorderRequest struct {
	Resource        string
	ScopeKey        string
	Updates         []ordering.Update
	ExpectedVersion string
}

// MoveRequest moves one entry either a step (Direction) or to an index.
// Exactly one of Direction and Index is set.
type MoveRequest struct {
	Resource        string
	ScopeKey        string
	ID              uuid.UUID
	Direction       string
	Index           *int
	ExpectedVersion string
}

func (r MoveRequest) validate() error {
	switch {
	case r.ID == uuid.Nil:
		return shared.NewDomainError(ordering.CodeInvalidBatch, "id is required")
	case r.Direction != "" && r.Index != nil:
		return shared.NewDomainError(ordering.CodeInvalidBatch, "direction and index are mutually exclusive")
	case r.Direction == "" && r.Index == nil:
		return shared.NewDomainError(ordering.CodeInvalidBatch, "either direction or index is required")
	case r.Direction != "" && r.Direction != DirectionUp && r.Direction != DirectionDown:
		return shared.NewDomainError(ordering.CodeInvalidBatch, `direction must be "up" or "down"`)
	}
	return nil
}

func (r MoveRequest) build(current []ordering.Entry) (ordering.Command, error) {
	switch {
	case r.Index != nil:
		return ordering.MoveTo(current, r.ID, *r.Index)
	case r.Direction == DirectionUp:
		return ordering.MoveUp(current, r.ID)
	default:
		return ordering.MoveDown(current, r.ID)
	}
}

// ReorderResult reports an applied batch.
type ReorderResult struct {
	Scope   string
	Updated int
	Entries []ordering.Entry
	Version string
}

func newReorderResult(scope ordering.Scope, updated int, entries []ordering.Entry) *ReorderResult {
	return &ReorderResult{
		Scope:   scope.String(),
		Updated: updated,
		Entries: entries,
		Version: ordering.Version(entries),
	}
}
