package content

import (
	"time"

	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateFriendLinkRequest represents a request to add a friend link
type CreateFriendLinkRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	URL     string `json:"url" binding:"required,url,max=500"`
	LogoURL string `json:"logo_url" binding:"omitempty,url,max=500"`
}

// UpdateFriendLinkRequest represents a request to edit a friend link
type UpdateFriendLinkRequest struct {
	CreateFriendLinkRequest
	Status string `json:"status" binding:"omitempty,oneof=enabled disabled"`
}

// CreateCorporateHonorRequest represents a request to add a corporate honor
type CreateCorporateHonorRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Issuer      string `json:"issuer" binding:"max=200"`
	ImageURL    string `json:"image_url" binding:"required,url,max=500"`
	AwardedYear int    `json:"awarded_year" binding:"omitempty,min=1900,max=2100"`
}

// UpdateCorporateHonorRequest represents a request to edit a corporate honor
type UpdateCorporateHonorRequest struct {
	CreateCorporateHonorRequest
	Status string `json:"status" binding:"omitempty,oneof=enabled disabled"`
}

// CreatePageRequest represents a request to add a product or solution page
// section. The page key comes from the scope query parameter when omitted.
type CreatePageRequest struct {
	PageKey  string `json:"page_key" binding:"omitempty,max=64"`
	Title    string `json:"title" binding:"required,max=200"`
	Summary  string `json:"summary" binding:"max=2000"`
	CoverURL string `json:"cover_url" binding:"omitempty,url,max=500"`
	LinkURL  string `json:"link_url" binding:"omitempty,url,max=500"`
}

// UpdatePageRequest represents a request to edit a page section
type UpdatePageRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Summary  string `json:"summary" binding:"max=2000"`
	CoverURL string `json:"cover_url" binding:"omitempty,url,max=500"`
	LinkURL  string `json:"link_url" binding:"omitempty,url,max=500"`
	Status   string `json:"status" binding:"omitempty,oneof=enabled disabled"`
}

// ListFilter represents filter options for content lists
type ListFilter struct {
	Scope    string `form:"scope"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=enabled disabled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the query into a repository filter. limit is accepted as
// an alias of page_size.
func (f ListFilter) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	switch {
	case f.PageSize > 0:
		filter.PageSize = f.PageSize
	case f.Limit > 0:
		filter.PageSize = f.Limit
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter.Normalize()
}

// ============================================================================
// Response DTOs
// ============================================================================

// PositionedResponse carries the fields every orderable entry shares
type PositionedResponse struct {
	ID        uuid.UUID `json:"id"`
	Scope     string    `json:"scope"`
	SortOrder int       `json:"sort_order"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPositionedResponse(p *content.Positioned) PositionedResponse {
	return PositionedResponse{
		ID:        p.ID,
		Scope:     p.Scope.String(),
		SortOrder: p.SortOrder,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// FriendLinkResponse represents a friend link in API responses
type FriendLinkResponse struct {
	PositionedResponse
	Name    string `json:"name"`
	URL     string `json:"url"`
	LogoURL string `json:"logo_url,omitempty"`
}

// ToFriendLinkResponse converts a domain friend link to a response
func ToFriendLinkResponse(l *content.FriendLink) FriendLinkResponse {
	return FriendLinkResponse{
		PositionedResponse: toPositionedResponse(&l.Positioned),
		Name:               l.Name,
		URL:                l.URL,
		LogoURL:            l.LogoURL,
	}
}

// CorporateHonorResponse represents a corporate honor in API responses
type CorporateHonorResponse struct {
	PositionedResponse
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	ImageURL    string `json:"image_url"`
	AwardedYear int    `json:"awarded_year,omitempty"`
}

// ToCorporateHonorResponse converts a domain honor to a response
func ToCorporateHonorResponse(h *content.CorporateHonor) CorporateHonorResponse {
	return CorporateHonorResponse{
		PositionedResponse: toPositionedResponse(&h.Positioned),
		Title:              h.Title,
		Issuer:             h.Issuer,
		ImageURL:           h.ImageURL,
		AwardedYear:        h.AwardedYear,
	}
}

// PageResponse represents a product or solution page section in API responses
type PageResponse struct {
	PositionedResponse
	Kind     string `json:"kind"`
	PageKey  string `json:"page_key"`
	Title    string `json:"title"`
	Summary  string `json:"summary,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
	LinkURL  string `json:"link_url,omitempty"`
}

// ToPageResponse converts a domain page section to a response
func ToPageResponse(p *content.Page) PageResponse {
	return PageResponse{
		PositionedResponse: toPositionedResponse(&p.Positioned),
		Kind:               string(p.Kind),
		PageKey:            p.PageKey,
		Title:              p.Title,
		Summary:            p.Summary,
		CoverURL:           p.CoverURL,
		LinkURL:            p.LinkURL,
	}
}

// MapItems converts a page of entities with fn.
func MapItems[T, R any](page shared.Paginated[T], fn func(*T) R) shared.Paginated[R] {
	items := make([]R, len(page.Items))
	for i := range page.Items {
		items[i] = fn(&page.Items[i])
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
}

// applyStatus sets the status when one was sent
func applyStatus(p *content.Positioned, status string) error {
	if status == "" {
		return nil
	}
	return p.SetStatus(content.Status(status))
}

// FriendLinkMutation returns the update applied by UpdateFriendLinkRequest.
func FriendLinkMutation(req UpdateFriendLinkRequest) func(*content.FriendLink) error {
	return func(l *content.FriendLink) error {
		if err := l.Update(req.Name, req.URL, req.LogoURL); err != nil {
			return err
		}
		return applyStatus(&l.Positioned, req.Status)
	}
}

// CorporateHonorMutation returns the update applied by UpdateCorporateHonorRequest.
func CorporateHonorMutation(req UpdateCorporateHonorRequest) func(*content.CorporateHonor) error {
	return func(h *content.CorporateHonor) error {
		if err := h.Update(req.Title, req.Issuer, req.ImageURL, req.AwardedYear); err != nil {
			return err
		}
		return applyStatus(&h.Positioned, req.Status)
	}
}

// PageMutation returns the update applied by UpdatePageRequest.
func PageMutation(req UpdatePageRequest) func(*content.Page) error {
	return func(p *content.Page) error {
		if err := p.Update(req.Title, req.Summary, req.CoverURL, req.LinkURL); err != nil {
			return err
		}
		return applyStatus(&p.Positioned, req.Status)
	}
}
