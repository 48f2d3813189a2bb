// Package ordering holds the reorderable-list model shared by every orderable
// collection: entries, scopes, move commands and batch validation.
package ordering

import (
	"cmp"
	"math"
	"slices"

	"github.com/google/uuid"
)

// MaxSortOrder is the largest value the sort_order column can hold.
const MaxSortOrder = math.MaxInt32

// Entry is the ordering view of one record.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	SortOrder int       `json:"sort_order"`
}

// Update assigns a new sort order to one record.
type Update struct {
	ID        uuid.UUID `json:"id"`
	SortOrder int       `json:"sort_order"`
}

// SortEntries orders entries ascending by SortOrder. Equal values fall back
// to the id so legacy duplicates still list deterministically.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// Clone returns a copy of entries.
func Clone(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	return slices.Clone(entries)
}

// IndexOf returns the position of id, or -1.
func IndexOf(entries []Entry, id uuid.UUID) int {
	return slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
}

// IDs returns the ids in list order.
func IDs(entries []Entry) []uuid.UUID {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// IsAscending reports whether entries are strictly ascending by SortOrder.
func IsAscending(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].SortOrder <= entries[i-1].SortOrder {
			return false
		}
	}
	return true
}
