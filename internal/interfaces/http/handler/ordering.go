package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	orderingapp "github.com/cms/backend/internal/application/ordering"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/cms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderingHandler serves the order endpoints of every orderable resource.
// Each method returns a handler bound to one resource name.
type OrderingHandler struct {
	BaseHandler
	service *orderingapp.Service
}

// NewOrderingHandler creates a new OrderingHandler
func NewOrderingHandler(service *orderingapp.Service) *OrderingHandler {
	return &OrderingHandler{service: service}
}

// OrderEntriesResponse is one scope in display order
type OrderEntriesResponse struct {
	Scope   string           `json:"scope" example:"product_pages:cloud"`
	Entries []ordering.Entry `json:"entries"`
	Version string           `json:"version" example:"9f86d081884c7d65"`
}

// ReorderResponse reports an applied batch
type ReorderResponse struct {
	Scope   string `json:"scope" example:"friend_links"`
	Updated int    `json:"updated" example:"2"`
	Version string `json:"version" example:"9f86d081884c7d65"`
}

// OrderUpdateRequest is one element of a reorder batch
type OrderUpdateRequest struct {
	ID        uuid.UUID `json:"id" example:"5b3c1a2e-7d4f-4e8a-9c1b-2f3d4e5f6a7b"`
	SortOrder *int      `json:"sort_order" example:"1"`
}

// MoveRequest moves one entry a step or to an index
type MoveRequest struct {
	Scope     string `json:"scope" binding:"omitempty,max=64" example:"cloud"`
	Direction string `json:"direction" binding:"omitempty,oneof=up down" example:"up"`
	Index     *int   `json:"index" binding:"omitempty,min=0" example:"0"`
}

// Entries godoc
// @ID           listContentOrder
// @Summary      List the order of a scope
// @Description  Returns the entries of a scope ascending by sort_order with its version. The ETag header carries the version.
// @Tags         ordering
// @Produce      json
// @Param        resource       path    string  true   "Resource"  Enums(friend-links, corporate-honors, product-pages, solution-pages)
// @Param        scope          query   string  false  "Page key for product and solution pages"
// @Param        If-None-Match  header  string  false  "Known version"
// @Success      200 {object} APIResponse[OrderEntriesResponse]
// @Success      304
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource}/order [get]
func (h *OrderingHandler) Entries(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.List(c.Request.Context(), resource, c.Query("scope"))
		if err != nil {
			h.HandleError(c, err)
			return
		}

		c.Header("ETag", dto.ETag(result.Version))
		if known := c.GetHeader("If-None-Match"); known != "" && dto.ParseIfMatch(known) == result.Version {
			c.Status(http.StatusNotModified)
			return
		}
		h.Success(c, entriesResponse(result.Scope, result.Entries, result.Version))
	}
}

// Reorder godoc
// @ID           reorderContent
// @Summary      Persist a reorder batch
// @Description  Applies every update of the batch atomically or none of them. The body carries the updates under <singular>_orders, e.g. friend_link_orders.
// @Tags         ordering
// @Accept       json
// @Produce      json
// @Param        resource  path    string  true   "Resource"  Enums(friend-links, corporate-honors, product-pages, solution-pages)
// @Param        If-Match  header  string  false  "Version the batch was computed against"
// @Param        request   body    object  true   "{\"friend_link_orders\": [{\"id\": \"...\", \"sort_order\": 1}], \"scope\": \"\"}"
// @Success      200 {object} APIResponse[ReorderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource}/order [patch]
func (h *OrderingHandler) Reorder(resource string) gin.HandlerFunc {
	key := dto.BatchKey(resource)
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			h.BindError(c, err)
			return
		}
		updates, scope, err := decodeBatch(raw, key)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if scope == "" {
			scope = c.Query("scope")
		}

		result, err := h.service.Reorder(c.Request.Context(), orderingapp.ReorderRequest{
			Resource:        resource,
			ScopeKey:        scope,
			Updates:         updates,
			ExpectedVersion: dto.ParseIfMatch(c.GetHeader("If-Match")),
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}

		c.Header("ETag", dto.ETag(result.Version))
		h.Success(c, ReorderResponse{Scope: result.Scope, Updated: result.Updated, Version: result.Version})
	}
}

// Move godoc
// @ID           moveContent
// @Summary      Move one entry
// @Description  Moves an entry one step up or down, or to a zero-based index, and persists the resulting batch.
// @Tags         ordering
// @Accept       json
// @Produce      json
// @Param        resource  path    string       true   "Resource"  Enums(friend-links, corporate-honors, product-pages, solution-pages)
// @Param        id        path    string       true   "Entry ID"  format(uuid)
// @Param        If-Match  header  string       false  "Version the move was computed against"
// @Param        request   body    MoveRequest  true   "Direction or index"
// @Success      200 {object} APIResponse[OrderEntriesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource}/{id}/move [post]
func (h *OrderingHandler) Move(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.ParseID(c)
		if !ok {
			return
		}
		var req MoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
		scope := req.Scope
		if scope == "" {
			scope = c.Query("scope")
		}

		result, err := h.service.Move(c.Request.Context(), orderingapp.MoveRequest{
			Resource:        resource,
			ScopeKey:        scope,
			ID:              id,
			Direction:       req.Direction,
			Index:           req.Index,
			ExpectedVersion: dto.ParseIfMatch(c.GetHeader("If-Match")),
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}

		c.Header("ETag", dto.ETag(result.Version))
		h.Success(c, entriesResponse(result.Scope, result.Entries, result.Version))
	}
}

func entriesResponse(scope string, entries []ordering.Entry, version string) OrderEntriesResponse {
	if entries == nil {
		entries = []ordering.Entry{}
	}
	return OrderEntriesResponse{Scope: scope, Entries: entries, Version: version}
}

// decodeBatch reads the updates under key and the optional scope field.
func decodeBatch(raw []byte, key string) ([]ordering.Update, string, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, "", shared.NewDomainError(ordering.CodeInvalidBatch, "request body must be a JSON object")
	}

	var scope string
	if rawScope, ok := body["scope"]; ok {
		if err := json.Unmarshal(rawScope, &scope); err != nil {
			return nil, "", shared.NewDomainError(ordering.CodeInvalidScope, "scope must be a string")
		}
	}

	rawItems, ok := body[key]
	if !ok {
		return nil, "", shared.NewDomainError(ordering.CodeInvalidBatch, fmt.Sprintf("body must contain %s", key))
	}
	var items []OrderUpdateRequest
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, "", shared.NewDomainError(ordering.CodeInvalidBatch,
			fmt.Sprintf("%s must be a list of {id, sort_order} with a UUID id and an integer sort_order", key))
	}

	updates := make([]ordering.Update, len(items))
	for i, item := range items {
		if item.SortOrder == nil {
			return nil, "", shared.NewDomainError(ordering.CodeInvalidBatch, fmt.Sprintf("update %d has no sort_order", i))
		}
		updates[i] = ordering.Update{ID: item.ID, SortOrder: *item.SortOrder}
	}
	return updates, scope, nil
}
