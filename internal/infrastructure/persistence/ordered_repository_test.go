package persistence

import (
	"context"
	"testing"

	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/cms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupContentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createFriendLink(t *testing.T, repo *FriendLinkRepository, name string, sortOrder int) *content.FriendLink {
	t.Helper()
	link, err := content.NewFriendLink(name, "https://"+name+".example.com", "")
	require.NoError(t, err)
	require.NoError(t, link.SetSortOrder(sortOrder))
	require.NoError(t, repo.Create(context.Background(), link))
	return link
}

func TestOrderedRepository_ListEntriesAscending(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()

	c := createFriendLink(t, repo, "c", 3)
	a := createFriendLink(t, repo, "a", 1)
	b := createFriendLink(t, repo, "b", 2)

	entries, err := repo.ListEntries(ctx, content.FriendLinkScope())
	require.NoError(t, err)
	assert.Equal(t, []ordering.Entry{
		{ID: a.ID, SortOrder: 1},
		{ID: b.ID, SortOrder: 2},
		{ID: c.ID, SortOrder: 3},
	}, entries)
	assert.Equal(t, content.CollectionFriendLinks, repo.Collection())
}

func TestOrderedRepository_ListEntriesEmptyScope(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))

	entries, err := repo.ListEntries(context.Background(), content.FriendLinkScope())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestOrderedRepository_NextSortOrder(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()

	next, err := repo.NextSortOrder(ctx, content.FriendLinkScope())
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	createFriendLink(t, repo, "a", 1)
	createFriendLink(t, repo, "b", 7)

	next, err = repo.NextSortOrder(ctx, content.FriendLinkScope())
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	createFriendLink(t, repo, "c", ordering.MaxSortOrder)

	_, err = repo.NextSortOrder(ctx, content.FriendLinkScope())
	assert.ErrorIs(t, err, ordering.ErrScopeFull)
}

func TestOrderedRepository_CreateDuplicatePosition(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	createFriendLink(t, repo, "a", 1)

	dup, err := content.NewFriendLink("b", "https://b.example.com", "")
	require.NoError(t, err)
	require.NoError(t, dup.SetSortOrder(1))

	err = repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestOrderedRepository_FindByID(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	link := createFriendLink(t, repo, "partner", 1)

	found, err := repo.FindByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "partner", found.Name)
	assert.Equal(t, content.FriendLinkScope(), found.Scope)
	assert.Equal(t, 1, found.SortOrder)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderedRepository_UpdateOrdersSwap(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	a := createFriendLink(t, repo, "a", 1)
	b := createFriendLink(t, repo, "b", 2)
	c := createFriendLink(t, repo, "c", 3)

	result, err := repo.UpdateOrders(ctx, scope, []ordering.Update{
		{ID: c.ID, SortOrder: 2},
		{ID: b.ID, SortOrder: 3},
	}, "")
	require.NoError(t, err)

	want := []ordering.Entry{
		{ID: a.ID, SortOrder: 1},
		{ID: c.ID, SortOrder: 2},
		{ID: b.ID, SortOrder: 3},
	}
	assert.Equal(t, want, result)

	persisted, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, want, persisted)
}

func TestOrderedRepository_UpdateOrdersFullRenumber(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	a := createFriendLink(t, repo, "a", 10)
	b := createFriendLink(t, repo, "b", 20)
	c := createFriendLink(t, repo, "c", 30)

	current, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)
	cmd, err := ordering.MoveTo(current, c.ID, 0)
	require.NoError(t, err)

	result, err := repo.UpdateOrders(ctx, scope, cmd.Updates, "")
	require.NoError(t, err)
	assert.Equal(t, []ordering.Entry{
		{ID: c.ID, SortOrder: 1},
		{ID: a.ID, SortOrder: 2},
		{ID: b.ID, SortOrder: 3},
	}, result)
}

func TestOrderedRepository_UpdateOrdersRejectsCollision(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	a := createFriendLink(t, repo, "a", 1)
	createFriendLink(t, repo, "b", 2)

	_, err := repo.UpdateOrders(ctx, scope, []ordering.Update{{ID: a.ID, SortOrder: 2}}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ordering.ErrSortOrderConflict)

	entries, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 1, entries[0].SortOrder)
	assert.Equal(t, a.ID, entries[0].ID)
}

func TestOrderedRepository_UpdateOrdersUnknownIDLeavesScopeUntouched(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	a := createFriendLink(t, repo, "a", 1)
	b := createFriendLink(t, repo, "b", 2)
	before, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)

	_, err = repo.UpdateOrders(ctx, scope, []ordering.Update{
		{ID: a.ID, SortOrder: 2},
		{ID: b.ID, SortOrder: 1},
		{ID: uuid.New(), SortOrder: 3},
	}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ordering.ErrEntryNotFound)

	after, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOrderedRepository_UpdateOrdersValidatesBatch(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))

	_, err := repo.UpdateOrders(context.Background(), content.FriendLinkScope(), nil, "")
	assert.ErrorIs(t, err, ordering.ErrEmptyBatch)
}

func TestOrderedRepository_UpdateOrdersCompareAndSwap(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	a := createFriendLink(t, repo, "a", 1)
	b := createFriendLink(t, repo, "b", 2)
	entries, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)
	version := ordering.Version(entries)

	swap := []ordering.Update{{ID: a.ID, SortOrder: 2}, {ID: b.ID, SortOrder: 1}}

	_, err = repo.UpdateOrders(ctx, scope, swap, "stale")
	assert.ErrorIs(t, err, ordering.ErrVersionMismatch)

	result, err := repo.UpdateOrders(ctx, scope, swap, version)
	require.NoError(t, err)
	assert.NotEqual(t, version, ordering.Version(result))

	_, err = repo.UpdateOrders(ctx, scope, swap, version)
	assert.ErrorIs(t, err, ordering.ErrVersionMismatch)
}

func TestOrderedRepository_ScopesAreIsolated(t *testing.T) {
	repo := NewProductPageRepository(setupContentTestDB(t))
	ctx := context.Background()

	newSection := func(key, title string) *content.Page {
		page, err := content.NewPage(content.PageKindProduct, key, title, "", "", "")
		require.NoError(t, err)
		require.NoError(t, page.SetSortOrder(1))
		require.NoError(t, repo.Create(ctx, page))
		return page
	}
	alpha := newSection("alpha", "Overview")
	beta := newSection("beta", "Overview")

	alphaScope, err := content.PageScope(content.PageKindProduct, "alpha")
	require.NoError(t, err)

	_, err = repo.UpdateOrders(ctx, alphaScope, []ordering.Update{{ID: beta.ID, SortOrder: 5}}, "")
	assert.ErrorIs(t, err, ordering.ErrEntryNotFound)

	entries, err := repo.ListEntries(ctx, alphaScope)
	require.NoError(t, err)
	assert.Equal(t, []ordering.Entry{{ID: alpha.ID, SortOrder: 1}}, entries)

	found, err := repo.FindByID(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, content.PageKindProduct, found.Kind)
	assert.Equal(t, "alpha", found.PageKey)
}

func TestOrderedRepository_SaveKeepsPosition(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	link := createFriendLink(t, repo, "a", 4)

	require.NoError(t, link.Update("renamed", "https://renamed.example.com", ""))
	link.SortOrder = 99
	require.NoError(t, repo.Save(ctx, link))

	found, err := repo.FindByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Name)
	assert.Equal(t, 4, found.SortOrder)

	ghost, err := content.NewFriendLink("ghost", "https://ghost.example.com", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, ghost), shared.ErrNotFound)
}

func TestOrderedRepository_DeleteLeavesGap(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	a := createFriendLink(t, repo, "a", 1)
	b := createFriendLink(t, repo, "b", 2)
	c := createFriendLink(t, repo, "c", 3)

	require.NoError(t, repo.Delete(ctx, b.ID))
	entries, err := repo.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []ordering.Entry{{ID: a.ID, SortOrder: 1}, {ID: c.ID, SortOrder: 3}}, entries)

	assert.ErrorIs(t, repo.Delete(ctx, b.ID), shared.ErrNotFound)
}

func TestOrderedRepository_FindAll(t *testing.T) {
	repo := NewFriendLinkRepository(setupContentTestDB(t))
	ctx := context.Background()
	scope := content.FriendLinkScope()

	createFriendLink(t, repo, "alpha", 3)
	createFriendLink(t, repo, "beta", 1)
	hidden := createFriendLink(t, repo, "gamma", 2)
	require.NoError(t, hidden.SetStatus(content.StatusDisabled))
	require.NoError(t, repo.Save(ctx, hidden))

	t.Run("orders by sort_order and paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		items, total, err := repo.FindAll(ctx, scope, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 2)
		assert.Equal(t, "beta", items[0].Name)
		assert.Equal(t, "gamma", items[1].Name)

		filter.Page = 2
		items, _, err = repo.FindAll(ctx, scope, filter)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "alpha", items[0].Name)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(content.StatusEnabled)
		items, total, err := repo.FindAll(ctx, scope, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("searches configured columns", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "ALP"
		items, total, err := repo.FindAll(ctx, scope, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "alpha", items[0].Name)
	})

	t.Run("falls back to sort_order for unknown columns", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "logo_url; DROP TABLE friend_links"
		filter.OrderDir = "desc"
		items, _, err := repo.FindAll(ctx, scope, filter)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "alpha", items[0].Name)
	})
}
