package content

import (
	"fmt"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
)

// PageKind distinguishes product pages from solution pages.
type PageKind string

const (
	PageKindProduct  PageKind = "product"
	PageKindSolution PageKind = "solution"
)

// Collection returns the collection the kind is stored in.
func (k PageKind) Collection() string {
	switch k {
	case PageKindProduct:
		return CollectionProductPages
	case PageKindSolution:
		return CollectionSolutionPages
	default:
		return ""
	}
}

// IsValid checks if the kind is known
func (k PageKind) IsValid() bool {
	return k.Collection() != ""
}

// Page is one configurable section of a product or solution page. Sections
// are ordered within their page, so every page key is its own scope.
type Page struct {
	Positioned
	Kind     PageKind
	PageKey  string
	Title    string
	Summary  string
	CoverURL string
	LinkURL  string
}

// PageScope returns the scope of one product or solution page.
func PageScope(kind PageKind, pageKey string) (ordering.Scope, error) {
	if !kind.IsValid() {
		return ordering.Scope{}, shared.NewDomainError("INVALID_PAGE_KIND", fmt.Sprintf("unknown page kind %q", kind))
	}
	if pageKey == "" {
		return ordering.Scope{}, shared.NewDomainError(ordering.CodeInvalidScope, "page_key is required")
	}
	return ordering.NewScope(kind.Collection(), pageKey)
}

// NewPage creates an enabled page section.
func NewPage(kind PageKind, pageKey, title, summary, coverURL, linkURL string) (*Page, error) {
	scope, err := PageScope(kind, pageKey)
	if err != nil {
		return nil, err
	}
	page := &Page{
		Positioned: newPositioned(scope),
		Kind:       kind,
		PageKey:    pageKey,
	}
	if err := page.Update(title, summary, coverURL, linkURL); err != nil {
		return nil, err
	}
	return page, nil
}

// Update replaces the descriptive fields. The page key is fixed at creation.
func (p *Page) Update(title, summary, coverURL, linkURL string) error {
	title, err := requireText("title", title, 200)
	if err != nil {
		return err
	}
	summary, err = optionalText("summary", summary, 2000)
	if err != nil {
		return err
	}
	coverURL, err = optionalURL("cover_url", coverURL)
	if err != nil {
		return err
	}
	linkURL, err = optionalURL("link_url", linkURL)
	if err != nil {
		return err
	}
	p.Title = title
	p.Summary = summary
	p.CoverURL = coverURL
	p.LinkURL = linkURL
	p.Touch()
	return nil
}
