package content

import (
	"fmt"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
)

// Awarded years outside this range are rejected.
const (
	MinAwardedYear = 1900
	MaxAwardedYear = 2100
)

// CorporateHonor is an award or certificate shown on the about page.
type CorporateHonor struct {
	Positioned
	Title       string
	Issuer      string
	ImageURL    string
	AwardedYear int
}

// CorporateHonorScope is the single scope all honors share.
func CorporateHonorScope() ordering.Scope {
	return ordering.Scope{Collection: CollectionCorporateHonors}
}

// NewCorporateHonor creates an enabled honor.
func NewCorporateHonor(title, issuer, imageURL string, awardedYear int) (*CorporateHonor, error) {
	honor := &CorporateHonor{Positioned: newPositioned(CorporateHonorScope())}
	if err := honor.Update(title, issuer, imageURL, awardedYear); err != nil {
		return nil, err
	}
	return honor, nil
}

// Update replaces the descriptive fields. awardedYear 0 means unknown.
func (h *CorporateHonor) Update(title, issuer, imageURL string, awardedYear int) error {
	title, err := requireText("title", title, 200)
	if err != nil {
		return err
	}
	issuer, err = optionalText("issuer", issuer, 200)
	if err != nil {
		return err
	}
	imageURL, err = requireURL("image_url", imageURL)
	if err != nil {
		return err
	}
	if awardedYear != 0 && (awardedYear < MinAwardedYear || awardedYear > MaxAwardedYear) {
		return shared.NewDomainError("INVALID_AWARDED_YEAR",
			fmt.Sprintf("awarded_year must be between %d and %d", MinAwardedYear, MaxAwardedYear))
	}
	h.Title = title
	h.Issuer = issuer
	h.ImageURL = imageURL
	h.AwardedYear = awardedYear
	h.Touch()
	return nil
}
