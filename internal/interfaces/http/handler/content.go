package handler

import (
	contentapp "github.com/cms/backend/internal/application/content"
	orderingapp "github.com/cms/backend/internal/application/ordering"
	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// entityHandler carries the read and delete endpoints every orderable
// resource shares. R is the response shape of T.
type entityHandler[T any, PT contentapp.Entity[T], R any] struct {
	BaseHandler
	resource   string
	service    *contentapp.Service[T, PT]
	scopes     *orderingapp.Service
	toResponse func(*T) R
}

// Resource returns the URL segment the handler serves
func (h *entityHandler[T, PT, R]) Resource() string {
	return h.resource
}

// List godoc
// @ID           listContent
// @Summary      List entries of a scope
// @Description  Paginated list ascending by sort_order. limit is an alias of page_size. The ETag header and meta.version carry the version of the scope the page was read from.
// @Tags         content
// @Produce      json
// @Param        resource   path   string  true   "Resource"  Enums(friend-links, corporate-honors, product-pages, solution-pages)
// @Param        scope      query  string  false  "Page key for product and solution pages"
// @Param        search     query  string  false  "Search term"
// @Param        status     query  string  false  "Status filter"  Enums(enabled, disabled)
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"  default(20)  maximum(200)
// @Param        limit      query  int     false  "Alias of page_size"
// @Success      200 {object} APIResponse[[]contentapp.FriendLinkResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource} [get]
func (h *entityHandler[T, PT, R]) List(c *gin.Context) {
	var filter contentapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	_, scope, err := h.scopes.Resolve(h.resource, filter.Scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, version, err := h.service.ListVersioned(c.Request.Context(), scope, filter.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := contentapp.MapItems(page, h.toResponse)
	meta := dto.NewMeta(items.Total, items.Page, items.PageSize)
	meta.Version = version
	c.Header("ETag", dto.ETag(version))
	h.SuccessWithMeta(c, items.Items, meta)
}

// Get godoc
// @ID           getContent
// @Summary      Get one entry
// @Tags         content
// @Produce      json
// @Param        resource  path  string  true  "Resource"  Enums(friend-links, corporate-honors, product-pages, solution-pages)
// @Param        id        path  string  true  "Entry ID"  format(uuid)
// @Success      200 {object} APIResponse[contentapp.FriendLinkResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource}/{id} [get]
func (h *entityHandler[T, PT, R]) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	entity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.toResponse((*T)(entity)))
}

// Delete godoc
// @ID           deleteContent
// @Summary      Delete one entry
// @Description  Remaining entries keep their sort_order, leaving a gap.
// @Tags         content
// @Param        resource  path  string  true  "Resource"  Enums(friend-links, corporate-honors, product-pages, solution-pages)
// @Param        id        path  string  true  "Entry ID"  format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource}/{id} [delete]
func (h *entityHandler[T, PT, R]) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *entityHandler[T, PT, R]) created(c *gin.Context, entity PT, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	created, err := h.service.Create(c.Request.Context(), entity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, h.toResponse((*T)(created)))
}

func (h *entityHandler[T, PT, R]) updated(c *gin.Context, mutate func(PT) error) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	entity, err := h.service.Update(c.Request.Context(), id, mutate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.toResponse((*T)(entity)))
}

// FriendLinkHandler handles friend link endpoints
type FriendLinkHandler struct {
	entityHandler[content.FriendLink, *content.FriendLink, contentapp.FriendLinkResponse]
}

// NewFriendLinkHandler creates a new FriendLinkHandler
func NewFriendLinkHandler(service *contentapp.FriendLinkService, scopes *orderingapp.Service) *FriendLinkHandler {
	h := &FriendLinkHandler{}
	h.resource = ResourceFriendLinks
	h.service = service
	h.scopes = scopes
	h.toResponse = contentapp.ToFriendLinkResponse
	return h
}

// Create godoc
// @ID           createFriendLink
// @Summary      Create a friend link
// @Description  The link is appended at the end of the list.
// @Tags         friend-links
// @Accept       json
// @Produce      json
// @Param        request  body  contentapp.CreateFriendLinkRequest  true  "Friend link"
// @Success      201 {object} APIResponse[contentapp.FriendLinkResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/friend-links [post]
func (h *FriendLinkHandler) Create(c *gin.Context) {
	var req contentapp.CreateFriendLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	link, err := content.NewFriendLink(req.Name, req.URL, req.LogoURL)
	h.created(c, link, err)
}

// Update godoc
// @ID           updateFriendLink
// @Summary      Update a friend link
// @Tags         friend-links
// @Accept       json
// @Produce      json
// @Param        id       path  string                              true  "Friend link ID"  format(uuid)
// @Param        request  body  contentapp.UpdateFriendLinkRequest  true  "Friend link"
// @Success      200 {object} APIResponse[contentapp.FriendLinkResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/friend-links/{id} [put]
func (h *FriendLinkHandler) Update(c *gin.Context) {
	var req contentapp.UpdateFriendLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.updated(c, contentapp.FriendLinkMutation(req))
}

// CorporateHonorHandler handles corporate honor endpoints
type CorporateHonorHandler struct {
	entityHandler[content.CorporateHonor, *content.CorporateHonor, contentapp.CorporateHonorResponse]
}

// NewCorporateHonorHandler creates a new CorporateHonorHandler
func NewCorporateHonorHandler(service *contentapp.CorporateHonorService, scopes *orderingapp.Service) *CorporateHonorHandler {
	h := &CorporateHonorHandler{}
	h.resource = ResourceCorporateHonors
	h.service = service
	h.scopes = scopes
	h.toResponse = contentapp.ToCorporateHonorResponse
	return h
}

// Create godoc
// @ID           createCorporateHonor
// @Summary      Create a corporate honor
// @Tags         corporate-honors
// @Accept       json
// @Produce      json
// @Param        request  body  contentapp.CreateCorporateHonorRequest  true  "Corporate honor"
// @Success      201 {object} APIResponse[contentapp.CorporateHonorResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/corporate-honors [post]
func (h *CorporateHonorHandler) Create(c *gin.Context) {
	var req contentapp.CreateCorporateHonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	honor, err := content.NewCorporateHonor(req.Title, req.Issuer, req.ImageURL, req.AwardedYear)
	h.created(c, honor, err)
}

// Update godoc
// @ID           updateCorporateHonor
// @Summary      Update a corporate honor
// @Tags         corporate-honors
// @Accept       json
// @Produce      json
// @Param        id       path  string                                  true  "Corporate honor ID"  format(uuid)
// @Param        request  body  contentapp.UpdateCorporateHonorRequest  true  "Corporate honor"
// @Success      200 {object} APIResponse[contentapp.CorporateHonorResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/corporate-honors/{id} [put]
func (h *CorporateHonorHandler) Update(c *gin.Context) {
	var req contentapp.UpdateCorporateHonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.updated(c, contentapp.CorporateHonorMutation(req))
}

// PageHandler handles product page or solution page sections
type PageHandler struct {
	entityHandler[content.Page, *content.Page, contentapp.PageResponse]
	kind content.PageKind
}

// NewPageHandler creates a PageHandler for one page kind
func NewPageHandler(kind content.PageKind, service *contentapp.PageService, scopes *orderingapp.Service) *PageHandler {
	h := &PageHandler{kind: kind}
	h.resource = PageResource(kind)
	h.service = service
	h.scopes = scopes
	h.toResponse = contentapp.ToPageResponse
	return h
}

// Create godoc
// @ID           createPage
// @Summary      Create a page section
// @Description  page_key falls back to the scope query parameter. The section is appended at the end of its page.
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        resource  path   string                        true   "Resource"  Enums(product-pages, solution-pages)
// @Param        scope     query  string                        false  "Page key"
// @Param        request   body   contentapp.CreatePageRequest  true   "Page section"
// @Success      201 {object} APIResponse[contentapp.PageResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource} [post]
func (h *PageHandler) Create(c *gin.Context) {
	var req contentapp.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	pageKey := req.PageKey
	if pageKey == "" {
		pageKey = c.Query("scope")
	}
	page, err := content.NewPage(h.kind, pageKey, req.Title, req.Summary, req.CoverURL, req.LinkURL)
	h.created(c, page, err)
}

// Update godoc
// @ID           updatePage
// @Summary      Update a page section
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        resource  path  string                        true  "Resource"  Enums(product-pages, solution-pages)
// @Param        id        path  string                        true  "Section ID"  format(uuid)
// @Param        request   body  contentapp.UpdatePageRequest  true  "Page section"
// @Success      200 {object} APIResponse[contentapp.PageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /content/{resource}/{id} [put]
func (h *PageHandler) Update(c *gin.Context) {
	var req contentapp.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.updated(c, contentapp.PageMutation(req))
}
