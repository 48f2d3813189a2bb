//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	contentapp "github.com/cms/backend/internal/application/content"
	orderingapp "github.com/cms/backend/internal/application/ordering"
	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/cms/backend/internal/infrastructure/cache"
	"github.com/cms/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func seedLinks(t *testing.T, svc *contentapp.FriendLinkService, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		link, err := content.NewFriendLink(name, "https://"+name+".example.com", "")
		require.NoError(t, err)
		created, err := svc.Create(context.Background(), link)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	return ids
}

func TestFriendLinkRepository_Integration(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewFriendLinkRepository(tdb.DB)
	svc := contentapp.NewFriendLinkService(repo)
	ctx := context.Background()
	scope := content.FriendLinkScope()

	ids := seedLinks(t, svc, "a", "b", "c")

	t.Run("create appends at max plus one", func(t *testing.T) {
		entries, err := repo.ListEntries(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, []ordering.Entry{
			{ID: ids[0], SortOrder: 1},
			{ID: ids[1], SortOrder: 2},
			{ID: ids[2], SortOrder: 3},
		}, entries)
	})

	t.Run("swap passes through the unique index", func(t *testing.T) {
		entries, err := repo.UpdateOrders(ctx, scope, []ordering.Update{
			{ID: ids[2], SortOrder: 2},
			{ID: ids[1], SortOrder: 3},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ids[0], ids[2], ids[1]}, ordering.IDs(entries))
	})

	t.Run("duplicate result is rejected and nothing changes", func(t *testing.T) {
		before, err := repo.ListEntries(ctx, scope)
		require.NoError(t, err)

		_, err = repo.UpdateOrders(ctx, scope, []ordering.Update{{ID: ids[0], SortOrder: 2}}, "")
		assert.ErrorIs(t, err, ordering.ErrSortOrderConflict)

		after, err := repo.ListEntries(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("foreign id is rejected", func(t *testing.T) {
		_, err := repo.UpdateOrders(ctx, scope, []ordering.Update{{ID: uuid.New(), SortOrder: 9}}, "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, ordering.CodeEntryNotFound, de.Code)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		_, err := repo.UpdateOrders(ctx, scope, []ordering.Update{{ID: ids[0], SortOrder: 10}}, "stale")
		assert.ErrorIs(t, err, ordering.ErrVersionMismatch)
	})

	t.Run("gaps survive delete and create appends after the max", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ids[0]))
		more := seedLinks(t, svc, "d")

		entries, err := repo.ListEntries(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, []ordering.Entry{
			{ID: ids[2], SortOrder: 2},
			{ID: ids[1], SortOrder: 3},
			{ID: more[0], SortOrder: 4},
		}, entries)
	})
}

func TestConcurrentCreatesStayUnique_Integration(t *testing.T) {
	tdb := NewTestDB(t)
	svc := contentapp.NewFriendLinkService(persistence.NewFriendLinkRepository(tdb.DB))

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("site%d", i)
			link, err := content.NewFriendLink(name, "https://"+name+".example.com", "")
			if err != nil {
				errs <- err
				return
			}
			_, err = svc.Create(context.Background(), link)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		}
	}
	require.Positive(t, created)

	entries, err := persistence.NewFriendLinkRepository(tdb.DB).ListEntries(context.Background(), content.FriendLinkScope())
	require.NoError(t, err)
	assert.Len(t, entries, created)
	assert.True(t, ordering.IsAscending(entries))
}

func TestOrderingService_Integration(t *testing.T) {
	tdb := NewTestDB(t)
	products := persistence.NewProductPageRepository(tdb.DB)
	pages := contentapp.NewPageService(products)
	locker := cache.NewInMemoryScopeLocker()
	t.Cleanup(func() { _ = locker.Close() })
	svc := orderingapp.NewService(locker, nil, nil, orderingapp.DefaultConfig(),
		orderingapp.Resource{Name: "product-pages", Keyed: true, Store: products},
	)
	ctx := context.Background()

	var home, other []uuid.UUID
	for _, title := range []string{"A", "B", "C"} {
		p, err := content.NewPage(content.PageKindProduct, "home", title, "", "", "")
		require.NoError(t, err)
		created, err := pages.Create(ctx, p)
		require.NoError(t, err)
		home = append(home, created.ID)
	}
	p, err := content.NewPage(content.PageKindProduct, "other", "X", "", "", "")
	require.NoError(t, err)
	created, err := pages.Create(ctx, p)
	require.NoError(t, err)
	other = append(other, created.ID)

	index := 0
	result, err := svc.Move(ctx, orderingapp.MoveRequest{
		Resource: "product-pages", ScopeKey: "home", ID: home[2], Index: &index,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{home[2], home[0], home[1]}, ordering.IDs(result.Entries))

	listed, err := svc.List(ctx, "product-pages", "home")
	require.NoError(t, err)
	assert.Equal(t, result.Version, listed.Version)

	// an id from another page key is not part of the scope
	_, err = svc.Reorder(ctx, orderingapp.ReorderRequest{
		Resource: "product-pages", ScopeKey: "home",
		Updates: []ordering.Update{{ID: other[0], SortOrder: 9}},
	})
	require.Error(t, err)

	otherList, err := svc.List(ctx, "product-pages", "other")
	require.NoError(t, err)
	assert.Equal(t, []ordering.Entry{{ID: other[0], SortOrder: 1}}, otherList.Entries)
}
