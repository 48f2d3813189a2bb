package models

import "github.com/cms/backend/internal/domain/content"

// CorporateHonorModel is the persistence model for CorporateHonor.
type CorporateHonorModel struct {
	PositionedModel
	Title       string `gorm:"type:varchar(200);not null"`
	Issuer      string `gorm:"type:varchar(200)"`
	ImageURL    string `gorm:"column:image_url;type:varchar(500);not null"`
	AwardedYear int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CorporateHonorModel) TableName() string {
	return content.CollectionCorporateHonors
}

// ToDomain converts the model to a domain CorporateHonor.
func (m *CorporateHonorModel) ToDomain() *content.CorporateHonor {
	return &content.CorporateHonor{
		Positioned:  m.ToPositioned(),
		Title:       m.Title,
		Issuer:      m.Issuer,
		ImageURL:    m.ImageURL,
		AwardedYear: m.AwardedYear,
	}
}

// FromDomain populates the model from a domain CorporateHonor.
func (m *CorporateHonorModel) FromDomain(h *content.CorporateHonor) {
	m.FromPositioned(h.Positioned)
	m.Title = h.Title
	m.Issuer = h.Issuer
	m.ImageURL = h.ImageURL
	m.AwardedYear = h.AwardedYear
}
