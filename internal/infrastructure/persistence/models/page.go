package models

import "github.com/cms/backend/internal/domain/content"

// PageColumns are shared by the product and solution page tables.
type PageColumns struct {
	PositionedModel
	PageKey  string `gorm:"type:varchar(64);not null;index"`
	Title    string `gorm:"type:varchar(200);not null"`
	Summary  string `gorm:"type:text"`
	CoverURL string `gorm:"column:cover_url;type:varchar(500)"`
	LinkURL  string `gorm:"column:link_url;type:varchar(500)"`
}

func (c *PageColumns) toDomain(kind content.PageKind) *content.Page {
	return &content.Page{
		Positioned: c.ToPositioned(),
		Kind:       kind,
		PageKey:    c.PageKey,
		Title:      c.Title,
		Summary:    c.Summary,
		CoverURL:   c.CoverURL,
		LinkURL:    c.LinkURL,
	}
}

func (c *PageColumns) fromDomain(p *content.Page) {
	c.FromPositioned(p.Positioned)
	c.PageKey = p.PageKey
	c.Title = p.Title
	c.Summary = p.Summary
	c.CoverURL = p.CoverURL
	c.LinkURL = p.LinkURL
}

// ProductPageModel is the persistence model for product page sections.
type ProductPageModel struct {
	PageColumns
}

// TableName returns the table name for GORM
func (ProductPageModel) TableName() string {
	return content.CollectionProductPages
}

// ToDomain converts the model to a domain Page.
func (m *ProductPageModel) ToDomain() *content.Page {
	return m.toDomain(content.PageKindProduct)
}

// FromDomain populates the model from a domain Page.
func (m *ProductPageModel) FromDomain(p *content.Page) {
	m.fromDomain(p)
}

// SolutionPageModel is the persistence model for solution page sections.
type SolutionPageModel struct {
	PageColumns
}

// TableName returns the table name for GORM
func (SolutionPageModel) TableName() string {
	return content.CollectionSolutionPages
}

// ToDomain converts the model to a domain Page.
func (m *SolutionPageModel) ToDomain() *content.Page {
	return m.toDomain(content.PageKindSolution)
}

// FromDomain populates the model from a domain Page.
func (m *SolutionPageModel) FromDomain(p *content.Page) {
	m.fromDomain(p)
}

// All returns every model for auto-migration.
func All() []any {
	return []any{
		&FriendLinkModel{},
		&CorporateHonorModel{},
		&ProductPageModel{},
		&SolutionPageModel{},
	}
}
