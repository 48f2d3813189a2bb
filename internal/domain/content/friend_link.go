package content

import "github.com/cms/backend/internal/domain/ordering"

// FriendLink is a partner site shown in the footer link list.
type FriendLink struct {
	Positioned
	Name    string
	URL     string
	LogoURL string
}

// FriendLinkScope is the single scope all friend links share.
func FriendLinkScope() ordering.Scope {
	return ordering.Scope{Collection: CollectionFriendLinks}
}

// NewFriendLink creates an enabled friend link. Its sort order is assigned
// when it is stored.
func NewFriendLink(name, url, logoURL string) (*FriendLink, error) {
	link := &FriendLink{Positioned: newPositioned(FriendLinkScope())}
	if err := link.Update(name, url, logoURL); err != nil {
		return nil, err
	}
	return link, nil
}

// Update replaces the descriptive fields
func (l *FriendLink) Update(name, url, logoURL string) error {
	name, err := requireText("name", name, 100)
	if err != nil {
		return err
	}
	url, err = requireURL("url", url)
	if err != nil {
		return err
	}
	logoURL, err = optionalURL("logo_url", logoURL)
	if err != nil {
		return err
	}
	l.Name = name
	l.URL = url
	l.LogoURL = logoURL
	l.Touch()
	return nil
}
