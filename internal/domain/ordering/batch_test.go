package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBatch(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		updates []Update
		max     int
		wantErr error
	}{
		{"valid", []Update{{ID: id, SortOrder: 0}}, 10, nil},
		{"empty", nil, 10, ErrEmptyBatch},
		{"too large", []Update{{ID: id, SortOrder: 1}, {ID: uuid.New(), SortOrder: 2}}, 1, ErrBatchTooLarge},
		{"no limit", []Update{{ID: id, SortOrder: 1}, {ID: uuid.New(), SortOrder: 2}}, 0, nil},
		{"missing id", []Update{{SortOrder: 1}}, 10, ErrInvalidBatch},
		{"negative", []Update{{ID: id, SortOrder: -1}}, 10, ErrInvalidBatch},
		{"at column limit", []Update{{ID: id, SortOrder: MaxSortOrder}}, 10, nil},
		{"above column limit", []Update{{ID: id, SortOrder: MaxSortOrder + 1}}, 10, ErrInvalidBatch},
		{"duplicate id", []Update{{ID: id, SortOrder: 1}, {ID: id, SortOrder: 2}}, 10, ErrInvalidBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(tt.updates, tt.max)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApply_SwapKeepsUniqueness(t *testing.T) {
	f := newFixture()

	result, err := Apply(f.list, []Update{{ID: f.c, SortOrder: 2}, {ID: f.b, SortOrder: 3}})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{f.a, f.c, f.b}, IDs(result))
	assert.True(t, IsAscending(result))
}

func TestApply_UnknownID(t *testing.T) {
	f := newFixture()

	_, err := Apply(f.list, []Update{{ID: uuid.New(), SortOrder: 9}})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestApply_CollisionWithUntouchedEntry(t *testing.T) {
	f := newFixture()

	_, err := Apply(f.list, []Update{{ID: f.c, SortOrder: 1}})
	assert.ErrorIs(t, err, ErrSortOrderConflict)
}

func TestApply_IsIdempotent(t *testing.T) {
	f := newFixture()
	batch := []Update{{ID: f.c, SortOrder: 1}, {ID: f.a, SortOrder: 2}, {ID: f.b, SortOrder: 3}}

	once, err := Apply(f.list, batch)
	require.NoError(t, err)
	twice, err := Apply(once, batch)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestApply_DoesNotMutateCurrent(t *testing.T) {
	f := newFixture()
	original := Clone(f.list)

	_, err := Apply(f.list, []Update{{ID: f.a, SortOrder: 7}})
	require.NoError(t, err)

	assert.Equal(t, original, f.list)
}

func TestChanged(t *testing.T) {
	f := newFixture()

	got := Changed(f.list, []Update{{ID: f.a, SortOrder: 1}, {ID: f.b, SortOrder: 5}})
	assert.Equal(t, []Update{{ID: f.b, SortOrder: 5}}, got)
}

func TestSortEntries_TieBreaksByID(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	entries := []Entry{{ID: b, SortOrder: 1}, {ID: a, SortOrder: 1}, {ID: uuid.New(), SortOrder: 0}}

	SortEntries(entries)

	assert.Equal(t, 0, entries[0].SortOrder)
	assert.Equal(t, a, entries[1].ID)
	assert.Equal(t, b, entries[2].ID)
}
