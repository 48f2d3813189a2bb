package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	contentapp "github.com/cms/backend/internal/application/content"
	orderingapp "github.com/cms/backend/internal/application/ordering"
	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/infrastructure/cache"
	"github.com/cms/backend/internal/infrastructure/persistence"
	"github.com/cms/backend/internal/interfaces/http/dto"
	"github.com/cms/backend/internal/interfaces/http/handler"
	"github.com/cms/backend/internal/interfaces/http/middleware"
	"github.com/cms/backend/internal/interfaces/http/router"
	"github.com/cms/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	linksPath    = "/api/v1/content/friend-links"
	productsPath = "/api/v1/content/product-pages"
)

type api struct {
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	links := persistence.NewFriendLinkRepository(db)
	honors := persistence.NewCorporateHonorRepository(db)
	products := persistence.NewProductPageRepository(db)
	solutions := persistence.NewSolutionPageRepository(db)

	locker := cache.NewInMemoryScopeLocker()
	t.Cleanup(func() { _ = locker.Close() })

	orderingSvc := orderingapp.NewService(locker, nil, nil, orderingapp.DefaultConfig(),
		orderingapp.Resource{Name: handler.ResourceFriendLinks, Store: links},
		orderingapp.Resource{Name: handler.ResourceCorporateHonors, Store: honors},
		orderingapp.Resource{Name: handler.ResourceProductPages, Keyed: true, Store: products},
		orderingapp.Resource{Name: handler.ResourceSolutionPages, Keyed: true, Store: solutions},
	)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	r.Register(router.NewContentGroup(handler.NewOrderingHandler(orderingSvc),
		handler.NewFriendLinkHandler(contentapp.NewFriendLinkService(links), orderingSvc),
		handler.NewCorporateHonorHandler(contentapp.NewCorporateHonorService(honors), orderingSvc),
		handler.NewPageHandler(content.PageKindProduct, contentapp.NewPageService(products), orderingSvc),
		handler.NewPageHandler(content.PageKindSolution, contentapp.NewPageService(solutions), orderingSvc),
	))
	r.Setup()
	return &api{engine: engine}
}

func (a *api) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(t, a.engine, method, path, body, headers)
}

func (a *api) createLink(t *testing.T, name string) contentapp.FriendLinkResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, linksPath, map[string]string{
		"name": name,
		"url":  "https://" + name + ".example.com",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.Decode[contentapp.FriendLinkResponse](t, w).Data
}

func (a *api) order(t *testing.T, path string) handler.OrderEntriesResponse {
	t.Helper()
	w := a.do(t, http.MethodGet, path+"/order", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testutil.Decode[handler.OrderEntriesResponse](t, w).Data
}

func ids(entries []ordering.Entry) []uuid.UUID {
	return ordering.IDs(entries)
}

func TestCreateAppendsAtTail(t *testing.T) {
	a := newAPI(t)

	first := a.createLink(t, "alpha")
	second := a.createLink(t, "beta")

	assert.Equal(t, 1, first.SortOrder)
	assert.Equal(t, 2, second.SortOrder)
	assert.Equal(t, "friend_links", first.Scope)
	assert.Equal(t, "enabled", first.Status)
}

func TestListReturnsAscendingWithVersion(t *testing.T) {
	a := newAPI(t)
	for _, name := range []string{"a", "b", "c"} {
		a.createLink(t, name)
	}

	w := a.do(t, http.MethodGet, linksPath+"?limit=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := testutil.Decode[[]contentapp.FriendLinkResponse](t, w)

	require.Len(t, env.Data, 2)
	assert.Equal(t, "a", env.Data[0].Name)
	assert.Equal(t, "b", env.Data[1].Name)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.PageSize)
	assert.Equal(t, 2, env.Meta.TotalPages)
	assert.NotEmpty(t, env.Meta.Version)
	assert.Equal(t, dto.ETag(env.Meta.Version), w.Header().Get("ETag"))
	assert.Equal(t, env.Meta.Version, a.order(t, linksPath).Version)
}

func TestListEmptyScope(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodGet, linksPath, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := testutil.Decode[[]contentapp.FriendLinkResponse](t, w)
	assert.Empty(t, env.Data)
	assert.Equal(t, int64(0), env.Meta.Total)

	order := a.order(t, linksPath)
	assert.NotNil(t, order.Entries)
	assert.Empty(t, order.Entries)
}

func TestEntriesNotModified(t *testing.T) {
	a := newAPI(t)
	a.createLink(t, "a")
	version := a.order(t, linksPath).Version

	w := a.do(t, http.MethodGet, linksPath+"/order", nil, map[string]string{"If-None-Match": dto.ETag(version)})
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestReorderAppliesBatch(t *testing.T) {
	a := newAPI(t)
	x, y, z := a.createLink(t, "a"), a.createLink(t, "b"), a.createLink(t, "c")

	w := a.do(t, http.MethodPatch, linksPath+"/order", map[string]any{
		"friend_link_orders": []map[string]any{
			{"id": z.ID, "sort_order": 2},
			{"id": y.ID, "sort_order": 3},
		},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.Decode[handler.ReorderResponse](t, w).Data
	assert.Equal(t, "friend_links", resp.Scope)
	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, dto.ETag(resp.Version), w.Header().Get("ETag"))

	order := a.order(t, linksPath)
	assert.Equal(t, []uuid.UUID{x.ID, z.ID, y.ID}, ids(order.Entries))
	assert.Equal(t, resp.Version, order.Version)

	// identical batch again is a no-op
	w = a.do(t, http.MethodPatch, linksPath+"/order", map[string]any{
		"friend_link_orders": []map[string]any{
			{"id": z.ID, "sort_order": 2},
			{"id": y.ID, "sort_order": 3},
		},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resp.Version, testutil.Decode[handler.ReorderResponse](t, w).Data.Version)
}

func TestReorderRejections(t *testing.T) {
	a := newAPI(t)
	x, y := a.createLink(t, "a"), a.createLink(t, "b")

	tests := []struct {
		name    string
		body    any
		headers map[string]string
		status  int
		code    string
		reason  string
	}{
		{
			name:   "wrong body key",
			body:   map[string]any{"orders": []map[string]any{{"id": x.ID, "sort_order": 2}}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeInvalidBatch,
		},
		{
			name:   "empty batch",
			body:   map[string]any{"friend_link_orders": []any{}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeEmptyBatch,
		},
		{
			name:   "non integer sort order",
			body:   map[string]any{"friend_link_orders": []map[string]any{{"id": x.ID, "sort_order": 1.5}}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeInvalidBatch,
		},
		{
			name:   "negative sort order",
			body:   map[string]any{"friend_link_orders": []map[string]any{{"id": x.ID, "sort_order": -1}}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeInvalidBatch,
		},
		{
			name:   "sort order above column range",
			body:   map[string]any{"friend_link_orders": []map[string]any{{"id": x.ID, "sort_order": 3000000000}}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeInvalidBatch,
		},
		{
			name:   "missing id",
			body:   map[string]any{"friend_link_orders": []map[string]any{{"sort_order": 3}}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeInvalidBatch,
		},
		{
			name:   "scope on unkeyed resource",
			body:   map[string]any{"scope": "home", "friend_link_orders": []map[string]any{{"id": x.ID, "sort_order": 5}}},
			status: http.StatusBadRequest,
			code:   "ERR_VALIDATION",
			reason: ordering.CodeInvalidScope,
		},
		{
			name:   "unknown id",
			body:   map[string]any{"friend_link_orders": []map[string]any{{"id": uuid.New(), "sort_order": 9}}},
			status: http.StatusNotFound,
			code:   "ERR_NOT_FOUND",
			reason: ordering.CodeEntryNotFound,
		},
		{
			name:   "duplicate sort order",
			body:   map[string]any{"friend_link_orders": []map[string]any{{"id": x.ID, "sort_order": 2}}},
			status: http.StatusConflict,
			code:   "ERR_CONFLICT",
			reason: ordering.CodeSortOrderConflict,
		},
		{
			name:    "stale version",
			body:    map[string]any{"friend_link_orders": []map[string]any{{"id": x.ID, "sort_order": 2}, {"id": y.ID, "sort_order": 1}}},
			headers: map[string]string{"If-Match": `"deadbeef"`},
			status:  http.StatusConflict,
			code:    "ERR_CONCURRENCY_CONFLICT",
			reason:  ordering.CodeVersionMismatch,
		},
	}

	before := a.order(t, linksPath)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPatch, linksPath+"/order", tt.body, tt.headers)
			testutil.AssertErrorCode(t, w, tt.status, tt.code)
			env := testutil.Decode[json.RawMessage](t, w)
			assert.Equal(t, tt.reason, env.Error.Reason)
			assert.NotEmpty(t, env.Error.Message)
			assert.NotEmpty(t, env.Error.RequestID)
		})
	}
	assert.Equal(t, before, a.order(t, linksPath), "rejected batches must not change the scope")
}

func TestReorderCompareAndSwap(t *testing.T) {
	a := newAPI(t)
	a.createLink(t, "a")
	a.createLink(t, "b")

	forms := map[string]func(string) string{
		"quoted": dto.ETag,
		"bare":   func(v string) string { return v },
		"weak":   func(v string) string { return "W/" + dto.ETag(v) },
	}
	for name, form := range forms {
		t.Run(name, func(t *testing.T) {
			current := a.order(t, linksPath)
			w := a.do(t, http.MethodPatch, linksPath+"/order", map[string]any{
				"friend_link_orders": []map[string]any{
					{"id": current.Entries[0].ID, "sort_order": 2},
					{"id": current.Entries[1].ID, "sort_order": 1},
				},
			}, map[string]string{"If-Match": form(current.Version)})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.NotEqual(t, current.Version, testutil.Decode[handler.ReorderResponse](t, w).Data.Version)
		})
	}
}

func TestMove(t *testing.T) {
	a := newAPI(t)
	x, y, z := a.createLink(t, "a"), a.createLink(t, "b"), a.createLink(t, "c")

	t.Run("up at top is a boundary", func(t *testing.T) {
		w := a.do(t, http.MethodPost, fmt.Sprintf("%s/%s/move", linksPath, x.ID), map[string]string{"direction": "up"}, nil)
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, "ERR_BUSINESS_RULE")
		assert.Equal(t, ordering.CodeAtBoundary, testutil.Decode[json.RawMessage](t, w).Error.Reason)
	})

	t.Run("to index", func(t *testing.T) {
		w := a.do(t, http.MethodPost, fmt.Sprintf("%s/%s/move", linksPath, z.ID), map[string]any{"index": 0}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := testutil.Decode[handler.OrderEntriesResponse](t, w).Data
		assert.Equal(t, []ordering.Entry{
			{ID: z.ID, SortOrder: 1},
			{ID: x.ID, SortOrder: 2},
			{ID: y.ID, SortOrder: 3},
		}, resp.Entries)
	})

	t.Run("down then up restores", func(t *testing.T) {
		before := a.order(t, linksPath)
		path := fmt.Sprintf("%s/%s/move", linksPath, x.ID)
		require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, path, map[string]string{"direction": "down"}, nil).Code)
		require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, path, map[string]string{"direction": "up"}, nil).Code)
		assert.Equal(t, before, a.order(t, linksPath))
	})

	t.Run("stale version", func(t *testing.T) {
		w := a.do(t, http.MethodPost, fmt.Sprintf("%s/%s/move", linksPath, y.ID),
			map[string]string{"direction": "up"}, map[string]string{"If-Match": `"0"`})
		testutil.AssertErrorCode(t, w, http.StatusConflict, "ERR_CONCURRENCY_CONFLICT")
	})

	t.Run("bad direction", func(t *testing.T) {
		w := a.do(t, http.MethodPost, fmt.Sprintf("%s/%s/move", linksPath, y.ID), map[string]string{"direction": "left"}, nil)
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})

	t.Run("bad id", func(t *testing.T) {
		w := a.do(t, http.MethodPost, linksPath+"/nope/move", map[string]string{"direction": "up"}, nil)
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_VALIDATION_FORMAT")
	})
}

func TestPagesAreScopedByPageKey(t *testing.T) {
	a := newAPI(t)

	create := func(key, title string) contentapp.PageResponse {
		w := a.do(t, http.MethodPost, productsPath+"?scope="+key, map[string]string{"title": title}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return testutil.Decode[contentapp.PageResponse](t, w).Data
	}
	first := create("cloud", "Overview")
	other := create("storage", "Overview")
	second := create("cloud", "Pricing")

	assert.Equal(t, 1, first.SortOrder)
	assert.Equal(t, 1, other.SortOrder)
	assert.Equal(t, 2, second.SortOrder)
	assert.Equal(t, "product_pages:cloud", first.Scope)
	assert.Equal(t, "product", first.Kind)

	w := a.do(t, http.MethodGet, productsPath+"?scope=cloud", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.Decode[[]contentapp.PageResponse](t, w).Data, 2)

	w = a.do(t, http.MethodGet, productsPath, nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_VALIDATION")

	w = a.do(t, http.MethodPatch, productsPath+"/order", map[string]any{
		"scope": "cloud",
		"product_page_orders": []map[string]any{
			{"id": first.ID, "sort_order": 2},
			{"id": second.ID, "sort_order": 1},
		},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "product_pages:cloud", testutil.Decode[handler.ReorderResponse](t, w).Data.Scope)

	w = a.do(t, http.MethodGet, productsPath+"/order?scope=cloud", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, ids(testutil.Decode[handler.OrderEntriesResponse](t, w).Data.Entries))
}

func TestEntityCRUD(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/content/corporate-honors", map[string]any{
		"title":        "Best Employer",
		"issuer":       "City Council",
		"image_url":    "https://img.example.com/award.png",
		"awarded_year": 2024,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	honor := testutil.Decode[contentapp.CorporateHonorResponse](t, w).Data
	path := "/api/v1/content/corporate-honors/" + honor.ID.String()

	w = a.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2024, testutil.Decode[contentapp.CorporateHonorResponse](t, w).Data.AwardedYear)

	w = a.do(t, http.MethodPut, path, map[string]any{
		"title":     "Best Employer 2024",
		"image_url": "https://img.example.com/award.png",
		"status":    "disabled",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := testutil.Decode[contentapp.CorporateHonorResponse](t, w).Data
	assert.Equal(t, "Best Employer 2024", updated.Title)
	assert.Equal(t, "disabled", updated.Status)
	assert.Equal(t, honor.SortOrder, updated.SortOrder)

	w = a.do(t, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(t, http.MethodGet, path, nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestCreateValidation(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodPost, linksPath, map[string]string{"name": "x", "url": "not a url"}, nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_VALIDATION")

	w = a.do(t, http.MethodGet, linksPath+"/"+uuid.NewString(), nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestDeleteLeavesGapAndCreateAppends(t *testing.T) {
	a := newAPI(t)
	x, y := a.createLink(t, "a"), a.createLink(t, "b")

	require.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, linksPath+"/"+y.ID.String(), nil, nil).Code)
	z := a.createLink(t, "c")

	assert.Equal(t, 2, z.SortOrder)
	assert.Equal(t, []ordering.Entry{{ID: x.ID, SortOrder: 1}, {ID: z.ID, SortOrder: 2}}, a.order(t, linksPath).Entries)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		state  string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", handler.NewHealthHandler(pinger{tt.err}, "1.2.3").Check)

			w := testutil.Do(t, engine, http.MethodGet, "/health", nil, nil)
			assert.Equal(t, tt.status, w.Code)
			resp := testutil.Decode[handler.HealthResponse](t, w).Data
			assert.Equal(t, tt.state, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
		})
	}
}
