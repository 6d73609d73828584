package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taxisafar/sitekit/catalog"
)

const seedYAML = `themes:
  - themeId: classic-cab
    name: Classic Cab
    tag: Popular
    isActive: true
    pricePlans:
      - durationMonths: 6
        price: 999
        isActive: true
      - durationMonths: 12
        price: 1499
        discountPercentage: 15
        isActive: true
  - themeId: night-rider
    name: Night Rider
    isActive: false
    pricePlans:
      - durationMonths: 6
        price: 799
        isActive: true
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "themes.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeed(t *testing.T) {
	t.Parallel()

	t.Run("inserts new themes", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.MatchedBy(func(th *catalog.Theme) bool {
			return th.Slug == "classic-cab" && len(th.PricePlans) == 2
		})).Return(nil).Once()
		store.On("Insert", mock.Anything, mock.MatchedBy(func(th *catalog.Theme) bool {
			return th.Slug == "night-rider" && !th.Active
		})).Return(nil).Once()

		n, err := catalog.Seed(context.Background(), store, writeSeedFile(t, seedYAML))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		store.AssertExpectations(t)
	})

	t.Run("skips existing themes", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.Anything).Return(catalog.ErrThemeExists)

		n, err := catalog.Seed(context.Background(), store, writeSeedFile(t, seedYAML))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Seed(context.Background(), new(mockStore), writeSeedFile(t, "themes: ["))
		assert.ErrorIs(t, err, catalog.ErrInvalidSeedFile)
	})

	t.Run("rejects theme without id", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Seed(context.Background(), new(mockStore), writeSeedFile(t, "themes:\n  - name: No ID\n"))
		assert.ErrorIs(t, err, catalog.ErrInvalidSeedFile)
	})

	t.Run("rejects duplicate active durations", func(t *testing.T) {
		t.Parallel()

		const dup = `themes:
  - themeId: dup
    name: Dup
    pricePlans:
      - durationMonths: 6
        price: 100
        isActive: true
      - durationMonths: 6
        price: 200
        isActive: true
`
		_, err := catalog.Seed(context.Background(), new(mockStore), writeSeedFile(t, dup))
		assert.ErrorIs(t, err, catalog.ErrDuplicatePlanPeriod)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Seed(context.Background(), new(mockStore), filepath.Join(t.TempDir(), "absent.yml"))
		assert.ErrorIs(t, err, catalog.ErrInvalidSeedFile)
	})
}
