package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Themes []seedTheme `yaml:"themes"`
}

type seedTheme struct {
	ThemeID     string     `yaml:"themeId"`
	Name        string     `yaml:"name"`
	Tag         string     `yaml:"tag"`
	PreviewURL  string     `yaml:"previewUrl"`
	Description string     `yaml:"description"`
	Active      bool       `yaml:"isActive"`
	PricePlans  []seedPlan `yaml:"pricePlans"`
}

type seedPlan struct {
	DurationMonths     int   `yaml:"durationMonths"`
	Price              int64 `yaml:"price"`
	DiscountPercentage int   `yaml:"discountPercentage"`
	Active             bool  `yaml:"isActive"`
}

// Seed loads a YAML theme catalog into the store. Themes that already exist
// are left untouched, so seeding is safe to run on every startup.
func Seed(ctx context.Context, store Store, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Join(ErrInvalidSeedFile, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, errors.Join(ErrInvalidSeedFile, err)
	}

	inserted := 0
	for _, st := range file.Themes {
		if st.ThemeID == "" || st.Name == "" {
			return inserted, fmt.Errorf("%w: themeId and name are required", ErrInvalidSeedFile)
		}

		plans := make([]Plan, 0, len(st.PricePlans))
		for _, sp := range st.PricePlans {
			plans = append(plans, Plan{
				DurationMonths:     sp.DurationMonths,
				Price:              sp.Price,
				DiscountPercentage: sp.DiscountPercentage,
				Active:             sp.Active,
			})
		}
		if err := validatePlans(plans); err != nil {
			return inserted, fmt.Errorf("%w: theme %s: %w", ErrInvalidSeedFile, st.ThemeID, err)
		}

		theme := &Theme{
			Slug:        st.ThemeID,
			Name:        st.Name,
			Tag:         st.Tag,
			PreviewURL:  st.PreviewURL,
			Description: st.Description,
			PricePlans:  plans,
			Active:      st.Active,
		}

		err := store.Insert(ctx, theme)
		if errors.Is(err, ErrThemeExists) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
