package catalog

import "context"

// Store is the interface for theme persistence.
type Store interface {
	// Find retrieves a theme by database id or slug.
	// Returns ErrThemeNotFound if no theme matches.
	Find(ctx context.Context, id string) (*Theme, error)

	// FindActive returns active themes ordered by display order.
	FindActive(ctx context.Context) ([]Theme, error)

	// FindAll returns every theme ordered by display order.
	FindAll(ctx context.Context) ([]Theme, error)

	// Insert stores a new theme, assigning the next display order when none
	// is set. Returns ErrThemeExists when the slug is taken.
	Insert(ctx context.Context, theme *Theme) error

	// Update replaces the stored theme identified by theme.ID.
	Update(ctx context.Context, theme *Theme) error

	// Delete removes a theme by database id.
	Delete(ctx context.Context, id string) error
}
