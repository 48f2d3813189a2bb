package ordering

import (
	"fmt"

	"github.com/cms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Command is the result of a move: the list before and after, and the
// updates that turn one into the other, in new-position order.
type Command struct {
	Before  []Entry
	After   []Entry
	Updates []Update
}

// IsEmpty reports whether the command changes nothing.
func (c Command) IsEmpty() bool {
	return len(c.Updates) == 0
}

// CanMoveUp reports whether id has a predecessor.
func CanMoveUp(list []Entry, id uuid.UUID) bool {
	return IndexOf(list, id) > 0
}

// CanMoveDown reports whether id has a successor.
func CanMoveDown(list []Entry, id uuid.UUID) bool {
	pos := IndexOf(list, id)
	return pos >= 0 && pos < len(list)-1
}

// MoveUp swaps id with the entry before it.
func MoveUp(list []Entry, id uuid.UUID) (Command, error) {
	return swapAdjacent(list, id, -1)
}

// MoveDown swaps id with the entry after it.
func MoveDown(list []Entry, id uuid.UUID) (Command, error) {
	return swapAdjacent(list, id, 1)
}

func swapAdjacent(list []Entry, id uuid.UUID, delta int) (Command, error) {
	pos, err := locate(list, id)
	if err != nil {
		return Command{}, err
	}
	target := pos + delta
	if target < 0 || target >= len(list) {
		return Command{}, ErrAtBoundary
	}

	// Equal values cannot be swapped into a different order; renumber instead.
	if list[pos].SortOrder == list[target].SortOrder {
		return MoveTo(list, id, target)
	}

	after := Clone(list)
	after[target] = Entry{ID: list[pos].ID, SortOrder: list[target].SortOrder}
	after[pos] = Entry{ID: list[target].ID, SortOrder: list[pos].SortOrder}

	return Command{
		Before:  Clone(list),
		After:   after,
		Updates: Diff(list, after),
	}, nil
}

// MoveTo removes id from its position, inserts it at newIndex and renumbers
// every entry to position+1.
func MoveTo(list []Entry, id uuid.UUID, newIndex int) (Command, error) {
	pos, err := locate(list, id)
	if err != nil {
		return Command{}, err
	}
	if newIndex < 0 || newIndex >= len(list) {
		return Command{}, shared.NewDomainError(CodeIndexOutOfRange,
			fmt.Sprintf("index %d is outside 0..%d", newIndex, len(list)-1))
	}

	moved := list[pos]
	rest := make([]Entry, 0, len(list)-1)
	rest = append(rest, list[:pos]...)
	rest = append(rest, list[pos+1:]...)

	after := make([]Entry, 0, len(list))
	after = append(after, rest[:newIndex]...)
	after = append(after, moved)
	after = append(after, rest[newIndex:]...)
	for i := range after {
		after[i].SortOrder = i + 1
	}

	updates := Diff(list, after)
	if len(updates) == 0 {
		return Command{}, ErrNoChange
	}
	return Command{
		Before:  Clone(list),
		After:   after,
		Updates: updates,
	}, nil
}

// Diff lists every entry of after whose sort order differs from before.
func Diff(before, after []Entry) []Update {
	previous := make(map[uuid.UUID]int, len(before))
	for _, e := range before {
		previous[e.ID] = e.SortOrder
	}
	updates := make([]Update, 0, len(after))
	for _, e := range after {
		if old, ok := previous[e.ID]; ok && old == e.SortOrder {
			continue
		}
		updates = append(updates, Update(e))
	}
	return updates
}

func locate(list []Entry, id uuid.UUID) (int, error) {
	if len(list) == 0 {
		return -1, ErrEmptyList
	}
	pos := IndexOf(list, id)
	if pos < 0 {
		return -1, shared.NewDomainError(CodeEntryNotFound, fmt.Sprintf("entry %s is not in the list", id))
	}
	return pos, nil
}
