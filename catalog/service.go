package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taxisafar/sitekit/pkg/blob"
)

// Service manages the theme catalog and answers plan lookups for billing.
type Service struct {
	store Store
	cache Cache
	blobs blob.Storage
	log   *slog.Logger
}

// Option configures optional Service settings.
type Option func(*Service)

// WithCache sets the catalog cache. Defaults to NoOpCache.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// NewService creates a catalog service. Store is required; blob storage may
// be nil when preview image handling is not needed (tests, seeding tools).
func NewService(store Store, blobs blob.Storage, log *slog.Logger, opts ...Option) *Service {
	if store == nil {
		panic("catalog: Store is required")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		store: store,
		cache: NoOpCache{},
		blobs: blobs,
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindActivePlan resolves the active plan for a theme and duration. The
// pricing engine rejects any purchase when this fails, so the error
// distinguishes a missing theme from a missing plan.
func (s *Service) FindActivePlan(ctx context.Context, themeID string, durationMonths int) (Plan, error) {
	theme, err := s.GetTheme(ctx, themeID)
	if err != nil {
		return Plan{}, err
	}
	if !theme.Active {
		return Plan{}, ErrThemeNotFound
	}

	plan, ok := theme.ActivePlan(durationMonths)
	if !ok {
		return Plan{}, fmt.Errorf("%w: theme %s, %d months", ErrPlanNotFound, themeID, durationMonths)
	}
	return plan, nil
}

// GetTheme retrieves a theme by id or slug, consulting the cache first.
func (s *Service) GetTheme(ctx context.Context, id string) (*Theme, error) {
	if theme, ok := s.cache.GetTheme(ctx, id); ok {
		return theme, nil
	}

	theme, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetTheme(ctx, id, theme); err != nil {
		s.log.WarnContext(ctx, "failed to cache theme", "theme_id", id, "error", err)
	}
	return theme, nil
}

// ListActive returns the public theme gallery ordered by display order.
func (s *Service) ListActive(ctx context.Context) ([]Theme, error) {
	if themes, ok := s.cache.GetActive(ctx); ok {
		return themes, nil
	}

	themes, err := s.store.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetActive(ctx, themes); err != nil {
		s.log.WarnContext(ctx, "failed to cache active themes", "error", err)
	}
	return themes, nil
}

// ListAll returns every theme, including inactive ones, for admin screens.
func (s *Service) ListAll(ctx context.Context) ([]Theme, error) {
	return s.store.FindAll(ctx)
}

// CreateThemeParams carries the input for CreateTheme.
type CreateThemeParams struct {
	Slug         string
	Name         string
	Tag          string
	PreviewURL   string
	Description  string
	PricePlans   []Plan
	Active       bool
	PreviewImage []byte // optional, uploaded to blob storage when present
}

// CreateTheme stores a new theme after validating its plan set.
func (s *Service) CreateTheme(ctx context.Context, params CreateThemeParams) (*Theme, error) {
	if params.Slug == "" || params.Name == "" {
		return nil, fmt.Errorf("%w: themeId and name are required", ErrInvalidTheme)
	}
	if err := validatePlans(params.PricePlans); err != nil {
		return nil, err
	}

	theme := &Theme{
		Slug:        strings.TrimSpace(params.Slug),
		Name:        params.Name,
		Tag:         params.Tag,
		PreviewURL:  params.PreviewURL,
		Description: params.Description,
		PricePlans:  params.PricePlans,
		Active:      params.Active,
	}

	if len(params.PreviewImage) > 0 {
		obj, err := s.uploadPreview(ctx, theme.Slug, params.PreviewImage)
		if err != nil {
			return nil, err
		}
		theme.PreviewImage = obj.URL
		theme.PreviewPublicID = obj.PublicID
	}

	if err := s.store.Insert(ctx, theme); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return theme, nil
}

// UpdateThemeParams carries the mutable theme fields; nil pointers are left
// unchanged.
type UpdateThemeParams struct {
	Name         *string
	Tag          *string
	PreviewURL   *string
	Description  *string
	PricePlans   []Plan
	Active       *bool
	PreviewImage []byte // replaces the stored preview when present
}

// UpdateTheme applies a partial update to an existing theme.
func (s *Service) UpdateTheme(ctx context.Context, id string, params UpdateThemeParams) (*Theme, error) {
	theme, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		theme.Name = *params.Name
	}
	if params.Tag != nil {
		theme.Tag = *params.Tag
	}
	if params.PreviewURL != nil {
		theme.PreviewURL = *params.PreviewURL
	}
	if params.Description != nil {
		theme.Description = *params.Description
	}
	if params.PricePlans != nil {
		if err := validatePlans(params.PricePlans); err != nil {
			return nil, err
		}
		theme.PricePlans = params.PricePlans
	}
	if params.Active != nil {
		theme.Active = *params.Active
	}

	if len(params.PreviewImage) > 0 {
		if theme.PreviewPublicID != "" {
			s.deleteBlob(ctx, theme.PreviewPublicID)
		}
		obj, err := s.uploadPreview(ctx, theme.Slug, params.PreviewImage)
		if err != nil {
			return nil, err
		}
		theme.PreviewImage = obj.URL
		theme.PreviewPublicID = obj.PublicID
	}

	if err := s.store.Update(ctx, theme); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return theme, nil
}

// ToggleActive flips a theme's active flag and returns the new state.
func (s *Service) ToggleActive(ctx context.Context, id string) (bool, error) {
	theme, err := s.store.Find(ctx, id)
	if err != nil {
		return false, err
	}

	theme.Active = !theme.Active
	if err := s.store.Update(ctx, theme); err != nil {
		return false, err
	}

	s.invalidate(ctx)
	return theme.Active, nil
}

// DeleteTheme removes a theme and cleans up its preview blob.
func (s *Service) DeleteTheme(ctx context.Context, id string) error {
	theme, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}

	if theme.PreviewPublicID != "" {
		s.deleteBlob(ctx, theme.PreviewPublicID)
	}

	if err := s.store.Delete(ctx, theme.ID); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *Service) uploadPreview(ctx context.Context, slug string, data []byte) (*blob.Object, error) {
	if s.blobs == nil {
		return nil, errors.New("catalog: blob storage not configured")
	}
	return s.blobs.Upload(ctx, data, "themes/preview", slug+".png", "image/png")
}

// deleteBlob is best effort: a dangling preview image is preferable to a
// failed catalog write.
func (s *Service) deleteBlob(ctx context.Context, publicID string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, publicID); err != nil {
		s.log.WarnContext(ctx, "failed to delete preview blob", "public_id", publicID, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate catalog cache", "error", err)
	}
}

// validatePlans rejects plan sets that would break the exactly-one-active-plan
// lookup contract.
func validatePlans(plans []Plan) error {
	seen := make(map[int]bool, len(plans))
	for _, p := range plans {
		if p.DurationMonths <= 0 {
			return fmt.Errorf("%w: duration must be positive", ErrInvalidTheme)
		}
		if p.Price < 0 {
			return fmt.Errorf("%w: price cannot be negative", ErrInvalidTheme)
		}
		if !p.Active {
			continue
		}
		if seen[p.DurationMonths] {
			return fmt.Errorf("%w: %d months", ErrDuplicatePlanPeriod, p.DurationMonths)
		}
		seen[p.DurationMonths] = true
	}
	return nil
}
