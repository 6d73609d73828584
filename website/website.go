package website

import (
	"time"

	"github.com/taxisafar/sitekit/billing"
)

// BasicInfo is the driver's business profile shown on the site.
type BasicInfo struct {
	BusinessName   string `bson:"businessName" json:"businessName"`
	OwnerName      string `bson:"ownerName" json:"ownerName"`
	Phone          string `bson:"phone" json:"phone"`
	WhatsappNumber string `bson:"whatsappNumber" json:"whatsappNumber"`
	Email          string `bson:"email,omitempty" json:"email,omitempty"`
	Address        string `bson:"address,omitempty" json:"address,omitempty"`
	City           string `bson:"city,omitempty" json:"city,omitempty"`
	State          string `bson:"state,omitempty" json:"state,omitempty"`
	About          string `bson:"about,omitempty" json:"about,omitempty"`
	ExperienceYrs  int    `bson:"experienceYears,omitempty" json:"experienceYears,omitempty"`
	LogoURL        string `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	LogoPublicID   string `bson:"logoPublicId,omitempty" json:"-"`
}

// Package is a tour package offered on the site.
type Package struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Vehicle     string `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Price       int64  `bson:"price" json:"price"`
}

// PopularPrice is a fixed-fare route advertised on the site.
type PopularPrice struct {
	From    string `bson:"from" json:"from"`
	To      string `bson:"to" json:"to"`
	Vehicle string `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Price   int64  `bson:"price" json:"price"`
}

// Review is a customer testimonial.
type Review struct {
	Author  string    `bson:"author" json:"author"`
	Comment string    `bson:"comment" json:"comment"`
	Rating  int       `bson:"rating" json:"rating"`
	Date    time.Time `bson:"date,omitempty" json:"date,omitempty"`
}

// SocialLinks holds the driver's social profiles.
type SocialLinks struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Youtube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Google    string `bson:"google,omitempty" json:"google,omitempty"`
}

// Sections toggles which blocks the rendered site shows.
type Sections struct {
	Packages      bool `bson:"packages" json:"packages"`
	PopularPrices bool `bson:"popularPrices" json:"popularPrices"`
	Reviews       bool `bson:"reviews" json:"reviews"`
	ContactForm   bool `bson:"contactForm" json:"contactForm"`
}

// ThemeChange records a theme switch for the audit trail.
type ThemeChange struct {
	FromThemeID string    `bson:"fromThemeId" json:"fromThemeId"`
	ToThemeID   string    `bson:"toThemeId" json:"toThemeId"`
	ChangedAt   time.Time `bson:"changedAt" json:"changedAt"`
}

// QRCode is the stored QR image pointing at the public site URL.
type QRCode struct {
	URL         string    `bson:"url" json:"url"`
	ImageURL    string    `bson:"imageUrl" json:"imageUrl"`
	PublicID    string    `bson:"publicId" json:"-"`
	GeneratedAt time.Time `bson:"generatedAt" json:"generatedAt"`
}

// Website is a driver's site document. One per driver; billing state is
// embedded so a payment settles atomically with the content it unlocks.
type Website struct {
	ID                  string                 `bson:"-" json:"id"`
	DriverID            string                 `bson:"driverId" json:"driverId"`
	ThemeID             string                 `bson:"themeId" json:"themeId"`
	Slug                string                 `bson:"slug,omitempty" json:"slug,omitempty"`
	Live                bool                   `bson:"isLive" json:"isLive"`
	BasicInfo           BasicInfo              `bson:"basicInfo" json:"basicInfo"`
	Packages            []Package              `bson:"packages,omitempty" json:"packages,omitempty"`
	PopularPrices       []PopularPrice         `bson:"popularPrices,omitempty" json:"popularPrices,omitempty"`
	Reviews             []Review               `bson:"reviews,omitempty" json:"reviews,omitempty"`
	SocialLinks         SocialLinks            `bson:"socialLinks" json:"socialLinks"`
	Sections            Sections               `bson:"sections" json:"sections"`
	ThemeChanges        []ThemeChange          `bson:"themeHistory,omitempty" json:"themeHistory,omitempty"`
	Subscription        *billing.Subscription  `bson:"subscription,omitempty" json:"subscription,omitempty"`
	SubscriptionHistory []billing.HistoryEntry `bson:"subscriptionHistory,omitempty" json:"subscriptionHistory,omitempty"`
	PaidTill            time.Time              `bson:"paidTill,omitempty" json:"paidTill,omitempty"`
	QR                  *QRCode                `bson:"qr,omitempty" json:"qr,omitempty"`
	CreatedAt           time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// Onboarding steps, in the order a new driver walks through them.
const (
	StepBasicInfo = "basic_info"
	StepPricing   = "pricing"
	StepPackages  = "packages"
	StepReviews   = "reviews"
	StepPublish   = "publish"
	StepComplete  = "complete"
)

// OnboardingStep resolves the next setup step for the dashboard wizard.
func (w *Website) OnboardingStep() string {
	switch {
	case w.BasicInfo.BusinessName == "" || w.BasicInfo.Phone == "":
		return StepBasicInfo
	case len(w.PopularPrices) == 0:
		return StepPricing
	case len(w.Packages) == 0:
		return StepPackages
	case len(w.Reviews) == 0:
		return StepReviews
	case !w.Live:
		return StepPublish
	default:
		return StepComplete
	}
}
