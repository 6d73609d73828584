package catalog

import "time"

// Plan is a priced subscription offering embedded in a theme. Lookups key on
// (durationMonths, active); at most one active plan per duration is valid.
type Plan struct {
	DurationMonths     int   `bson:"durationMonths" json:"durationMonths"`
	Price              int64 `bson:"price" json:"price"` // whole rupees
	DiscountPercentage int   `bson:"discountPercentage,omitempty" json:"discountPercentage,omitempty"`
	Active             bool  `bson:"isActive" json:"isActive"`
}

// Theme is a site template drivers subscribe to. Slug is the human-readable
// theme identifier used in site URLs, distinct from the database id.
type Theme struct {
	ID              string    `bson:"-" json:"id"`
	Slug            string    `bson:"themeId" json:"themeId"`
	Name            string    `bson:"name" json:"name"`
	Tag             string    `bson:"tag,omitempty" json:"tag,omitempty"`
	PreviewURL      string    `bson:"previewUrl,omitempty" json:"previewUrl,omitempty"`
	PreviewImage    string    `bson:"previewImage,omitempty" json:"previewImage,omitempty"`
	PreviewPublicID string    `bson:"previewPublicId,omitempty" json:"-"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	DisplayOrder    int       `bson:"displayOrder" json:"displayOrder"`
	PricePlans      []Plan    `bson:"pricePlans" json:"pricePlans"`
	Active          bool      `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ActivePlan returns the active plan with the given duration.
func (t *Theme) ActivePlan(durationMonths int) (Plan, bool) {
	for _, p := range t.PricePlans {
		if p.Active && p.DurationMonths == durationMonths {
			return p, true
		}
	}
	return Plan{}, false
}
