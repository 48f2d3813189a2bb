package ordering

import (
	"fmt"

	"github.com/cms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultMaxBatchSize bounds a batch when no limit is configured.
const DefaultMaxBatchSize = 500

// ValidateBatch rejects malformed batches before any storage is touched.
// maxSize <= 0 disables the size check.
func ValidateBatch(updates []Update, maxSize int) error {
	if len(updates) == 0 {
		return ErrEmptyBatch
	}
	if maxSize > 0 && len(updates) > maxSize {
		return shared.NewDomainError(CodeBatchTooLarge,
			fmt.Sprintf("order batch has %d updates, maximum is %d", len(updates), maxSize))
	}
	seen := make(map[uuid.UUID]struct{}, len(updates))
	for i, u := range updates {
		if u.ID == uuid.Nil {
			return shared.NewDomainError(CodeInvalidBatch, fmt.Sprintf("update %d has no id", i))
		}
		if u.SortOrder < 0 {
			return shared.NewDomainError(CodeInvalidBatch,
				fmt.Sprintf("update %d has negative sort_order %d", i, u.SortOrder))
		}
		if u.SortOrder > MaxSortOrder {
			return shared.NewDomainError(CodeInvalidBatch,
				fmt.Sprintf("update %d has sort_order %d above %d", i, u.SortOrder, MaxSortOrder))
		}
		if _, dup := seen[u.ID]; dup {
			return shared.NewDomainError(CodeInvalidBatch, fmt.Sprintf("id %s appears more than once", u.ID))
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}

// Apply merges updates into the current state of a scope and returns the
// resulting ascending list. It fails when an id is not part of current or
// when two entries would end up sharing a sort order.
func Apply(current []Entry, updates []Update) ([]Entry, error) {
	index := make(map[uuid.UUID]int, len(current))
	for i, e := range current {
		index[e.ID] = i
	}

	result := Clone(current)
	for _, u := range updates {
		i, ok := index[u.ID]
		if !ok {
			return nil, shared.NewDomainError(CodeEntryNotFound, fmt.Sprintf("entry %s does not belong to the scope", u.ID))
		}
		result[i].SortOrder = u.SortOrder
	}

	owners := make(map[int]uuid.UUID, len(result))
	for _, e := range result {
		if other, taken := owners[e.SortOrder]; taken {
			return nil, shared.NewDomainError(CodeSortOrderConflict,
				fmt.Sprintf("entries %s and %s would both have sort_order %d", other, e.ID, e.SortOrder))
		}
		owners[e.SortOrder] = e.ID
	}

	SortEntries(result)
	return result, nil
}

// Changed filters updates down to the ones that differ from current.
func Changed(current []Entry, updates []Update) []Update {
	values := make(map[uuid.UUID]int, len(current))
	for _, e := range current {
		values[e.ID] = e.SortOrder
	}
	out := make([]Update, 0, len(updates))
	for _, u := range updates {
		if v, ok := values[u.ID]; ok && v == u.SortOrder {
			continue
		}
		out = append(out, u)
	}
	return out
}
