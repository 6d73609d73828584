package website

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taxisafar/sitekit/catalog"
	"github.com/taxisafar/sitekit/pkg/blob"
	"github.com/taxisafar/sitekit/pkg/qrcode"
	"github.com/taxisafar/sitekit/pkg/slug"
)

// ThemeCatalog validates theme references. Implemented by catalog.Service.
type ThemeCatalog interface {
	GetTheme(ctx context.Context, id string) (*catalog.Theme, error)
}

// Service manages driver websites: the content layer on top of the billing
// state embedded in the same documents.
type Service struct {
	store   Store
	themes  ThemeCatalog
	blobs   blob.Storage
	log     *slog.Logger
	baseURL string
}

// NewService creates a website service. baseURL is the public origin the
// rendered sites live under, e.g. "https://taxisafar.com".
func NewService(store Store, themes ThemeCatalog, blobs blob.Storage, baseURL string, log *slog.Logger) *Service {
	if store == nil || themes == nil {
		panic("website: Store and ThemeCatalog are required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:   store,
		themes:  themes,
		blobs:   blobs,
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetOrCreate returns the driver's website, creating a blank one when the
// driver picks their first theme. The theme must exist and be active.
func (s *Service) GetOrCreate(ctx context.Context, driverID, themeID string) (*Website, error) {
	site, err := s.store.FindByDriver(ctx, driverID)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, ErrWebsiteNotFound) {
		return nil, err
	}

	if themeID == "" {
		return nil, ErrThemeRequired
	}
	theme, err := s.themes.GetTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if !theme.Active {
		return nil, catalog.ErrThemeNotFound
	}

	site = &Website{
		DriverID: driverID,
		ThemeID:  theme.Slug,
		Sections: Sections{
			Packages:      true,
			PopularPrices: true,
			Reviews:       true,
			ContactForm:   true,
		},
	}
	if err := s.store.Insert(ctx, site); err != nil {
		if errors.Is(err, ErrWebsiteExists) {
			return s.store.FindByDriver(ctx, driverID)
		}
		return nil, err
	}
	return site, nil
}

// Get retrieves a driver's website.
func (s *Service) Get(ctx context.Context, driverID string) (*Website, error) {
	return s.store.FindByDriver(ctx, driverID)
}

// GetPublic retrieves a live website by slug for public rendering.
func (s *Service) GetPublic(ctx context.Context, siteSlug string) (*Website, error) {
	site, err := s.store.FindBySlug(ctx, siteSlug)
	if err != nil {
		return nil, err
	}
	if !site.Live {
		return nil, ErrWebsiteNotFound
	}
	return site, nil
}

// Onboarding resolves the driver's next setup step.
func (s *Service) Onboarding(ctx context.Context, driverID string) (string, error) {
	site, err := s.store.FindByDriver(ctx, driverID)
	if err != nil {
		return "", err
	}
	return site.OnboardingStep(), nil
}

// BasicInfoParams carries the input for UpdateBasicInfo. Logo, when present,
// replaces the stored logo image.
type BasicInfoParams struct {
	BasicInfo
	Logo []byte
}

// UpdateBasicInfo saves the business profile. The public slug is derived
// from the business name on first save and kept stable afterwards so printed
// QR codes stay valid.
func (s *Service) UpdateBasicInfo(ctx context.Context, driverID string, params BasicInfoParams) (*Website, error) {
	if params.BusinessName == "" || params.Phone == "" {
		return nil, fmt.Errorf("%w: business name and phone are required", ErrInvalidInput)
	}

	site, err := s.store.FindByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	info := params.BasicInfo
	info.LogoURL = site.BasicInfo.LogoURL
	info.LogoPublicID = site.BasicInfo.LogoPublicID

	if len(params.Logo) > 0 {
		if site.BasicInfo.LogoPublicID != "" {
			s.deleteBlob(ctx, site.BasicInfo.LogoPublicID)
		}
		obj, err := s.uploadBlob(ctx, driverID, "logo.png", params.Logo)
		if err != nil {
			return nil, err
		}
		info.LogoURL = obj.URL
		info.LogoPublicID = obj.PublicID
	}

	site.BasicInfo = info

	if site.Slug == "" {
		site.Slug = slug.Make(info.BusinessName, slug.WithSuffix(4))
	}

	if err := s.store.Update(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// ReplacePackages swaps the full package list.
func (s *Service) ReplacePackages(ctx context.Context, driverID string, packages []Package) (*Website, error) {
	for _, p := range packages {
		if err := validatePackage(p); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.Packages = packages
		return nil
	})
}

// AddPackage appends one package.
func (s *Service) AddPackage(ctx context.Context, driverID string, p Package) (*Website, error) {
	if err := validatePackage(p); err != nil {
		return nil, err
	}
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.Packages = append(site.Packages, p)
		return nil
	})
}

// DeletePackage removes the package at index.
func (s *Service) DeletePackage(ctx context.Context, driverID string, index int) (*Website, error) {
	return s.mutate(ctx, driverID, func(site *Website) error {
		if index < 0 || index >= len(site.Packages) {
			return fmt.Errorf("%w: package %d", ErrInvalidIndex, index)
		}
		site.Packages = append(site.Packages[:index], site.Packages[index+1:]...)
		return nil
	})
}

// ReplacePopularPrices swaps the full fixed-fare list.
func (s *Service) ReplacePopularPrices(ctx context.Context, driverID string, prices []PopularPrice) (*Website, error) {
	for _, p := range prices {
		if err := validatePopularPrice(p); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.PopularPrices = prices
		return nil
	})
}

// AddPopularPrice appends one fixed-fare route.
func (s *Service) AddPopularPrice(ctx context.Context, driverID string, p PopularPrice) (*Website, error) {
	if err := validatePopularPrice(p); err != nil {
		return nil, err
	}
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.PopularPrices = append(site.PopularPrices, p)
		return nil
	})
}

// DeletePopularPrice removes the route at index.
func (s *Service) DeletePopularPrice(ctx context.Context, driverID string, index int) (*Website, error) {
	return s.mutate(ctx, driverID, func(site *Website) error {
		if index < 0 || index >= len(site.PopularPrices) {
			return fmt.Errorf("%w: popular price %d", ErrInvalidIndex, index)
		}
		site.PopularPrices = append(site.PopularPrices[:index], site.PopularPrices[index+1:]...)
		return nil
	})
}

// ReplaceReviews swaps the full review list.
func (s *Service) ReplaceReviews(ctx context.Context, driverID string, reviews []Review) (*Website, error) {
	for _, r := range reviews {
		if err := validateReview(r); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.Reviews = reviews
		return nil
	})
}

// AddReview appends one review.
func (s *Service) AddReview(ctx context.Context, driverID string, r Review) (*Website, error) {
	if err := validateReview(r); err != nil {
		return nil, err
	}
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.Reviews = append(site.Reviews, r)
		return nil
	})
}

// DeleteReview removes the review at index.
func (s *Service) DeleteReview(ctx context.Context, driverID string, index int) (*Website, error) {
	return s.mutate(ctx, driverID, func(site *Website) error {
		if index < 0 || index >= len(site.Reviews) {
			return fmt.Errorf("%w: review %d", ErrInvalidIndex, index)
		}
		site.Reviews = append(site.Reviews[:index], site.Reviews[index+1:]...)
		return nil
	})
}

// UpdateSections saves the section visibility toggles.
func (s *Service) UpdateSections(ctx context.Context, driverID string, sections Sections) (*Website, error) {
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.Sections = sections
		return nil
	})
}

// UpdateSocialLinks saves the driver's social profiles.
func (s *Service) UpdateSocialLinks(ctx context.Context, driverID string, links SocialLinks) (*Website, error) {
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.SocialLinks = links
		return nil
	})
}

// SetLive toggles site visibility.
func (s *Service) SetLive(ctx context.Context, driverID string, live bool) (*Website, error) {
	return s.mutate(ctx, driverID, func(site *Website) error {
		site.Live = live
		return nil
	})
}

// PublicURL returns the canonical public address of a site.
func (s *Service) PublicURL(site *Website) string {
	key := site.Slug
	if key == "" {
		key = site.DriverID
	}
	return s.baseURL + "/" + key + "/" + site.ThemeID
}

// GenerateQR renders a QR code for the site's public URL, stores the image
// in blob storage and records it on the site. Regenerating replaces the old
// image.
func (s *Service) GenerateQR(ctx context.Context, driverID string) (*Website, error) {
	site, err := s.store.FindByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	url := s.PublicURL(site)
	png, err := qrcode.Generate(url, 0)
	if err != nil {
		return nil, err
	}

	if site.QR != nil && site.QR.PublicID != "" {
		s.deleteBlob(ctx, site.QR.PublicID)
	}

	obj, err := s.uploadBlob(ctx, driverID, "qr.png", png)
	if err != nil {
		return nil, err
	}

	site.QR = &QRCode{
		URL:         url,
		ImageURL:    obj.URL,
		PublicID:    obj.PublicID,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.store.Update(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// Delete removes a driver's website and its uploaded assets.
func (s *Service) Delete(ctx context.Context, driverID string) error {
	site, err := s.store.FindByDriver(ctx, driverID)
	if err != nil {
		return err
	}

	if site.BasicInfo.LogoPublicID != "" {
		s.deleteBlob(ctx, site.BasicInfo.LogoPublicID)
	}
	if site.QR != nil && site.QR.PublicID != "" {
		s.deleteBlob(ctx, site.QR.PublicID)
	}

	return s.store.Delete(ctx, driverID)
}

func (s *Service) mutate(ctx context.Context, driverID string, fn func(*Website) error) (*Website, error) {
	site, err := s.store.FindByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if err := fn(site); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *Service) uploadBlob(ctx context.Context, driverID, name string, data []byte) (*blob.Object, error) {
	if s.blobs == nil {
		return nil, errors.New("website: blob storage not configured")
	}
	return s.blobs.Upload(ctx, data, "sites/"+driverID, name, "image/png")
}

// asset cleanup is best effort, a dangling object must not fail the request
func (s *Service) deleteBlob(ctx context.Context, publicID string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, publicID); err != nil {
		s.log.WarnContext(ctx, "failed to delete site asset", "public_id", publicID, "error", err)
	}
}

func validatePackage(p Package) error {
	if p.Name == "" {
		return fmt.Errorf("%w: package name is required", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: package price cannot be negative", ErrInvalidInput)
	}
	return nil
}

func validatePopularPrice(p PopularPrice) error {
	if p.From == "" || p.To == "" {
		return fmt.Errorf("%w: route endpoints are required", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: route price cannot be negative", ErrInvalidInput)
	}
	return nil
}

func validateReview(r Review) error {
	if r.Author == "" {
		return fmt.Errorf("%w: review author is required", ErrInvalidInput)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}
