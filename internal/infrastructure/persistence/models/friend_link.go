package models

import "github.com/cms/backend/internal/domain/content"

// FriendLinkModel is the persistence model for FriendLink.
type FriendLinkModel struct {
	PositionedModel
	Name    string `gorm:"type:varchar(100);not null"`
	URL     string `gorm:"column:url;type:varchar(500);not null"`
	LogoURL string `gorm:"column:logo_url;type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FriendLinkModel) TableName() string {
	return content.CollectionFriendLinks
}

// ToDomain converts the model to a domain FriendLink.
func (m *FriendLinkModel) ToDomain() *content.FriendLink {
	return &content.FriendLink{
		Positioned: m.ToPositioned(),
		Name:       m.Name,
		URL:        m.URL,
		LogoURL:    m.LogoURL,
	}
}

// FromDomain populates the model from a domain FriendLink.
func (m *FriendLinkModel) FromDomain(l *content.FriendLink) {
	m.FromPositioned(l.Positioned)
	m.Name = l.Name
	m.URL = l.URL
	m.LogoURL = l.LogoURL
}
