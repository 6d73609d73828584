package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taxisafar/sitekit/catalog"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Find(ctx context.Context, id string) (*catalog.Theme, error) {
	args := m.Called(ctx, id)
	if theme := args.Get(0); theme != nil {
		return theme.(*catalog.Theme), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) FindActive(ctx context.Context) ([]catalog.Theme, error) {
	args := m.Called(ctx)
	if themes := args.Get(0); themes != nil {
		return themes.([]catalog.Theme), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) FindAll(ctx context.Context) ([]catalog.Theme, error) {
	args := m.Called(ctx)
	if themes := args.Get(0); themes != nil {
		return themes.([]catalog.Theme), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, theme *catalog.Theme) error {
	return m.Called(ctx, theme).Error(0)
}

func (m *mockStore) Update(ctx context.Context, theme *catalog.Theme) error {
	return m.Called(ctx, theme).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func testTheme() *catalog.Theme {
	return &catalog.Theme{
		ID:     "665f1c2ab3d4e5f601234567",
		Slug:   "classic-cab",
		Name:   "Classic Cab",
		Active: true,
		PricePlans: []catalog.Plan{
			{DurationMonths: 6, Price: 999, Active: true},
			{DurationMonths: 12, Price: 1499, Active: true},
			{DurationMonths: 3, Price: 699, Active: false},
		},
	}
}

func TestServiceFindActivePlan(t *testing.T) {
	t.Parallel()

	t.Run("resolves active plan by duration", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Find", mock.Anything, "classic-cab").Return(testTheme(), nil)

		svc := catalog.NewService(store, nil, nil)

		plan, err := svc.FindActivePlan(context.Background(), "classic-cab", 6)
		require.NoError(t, err)
		assert.Equal(t, int64(999), plan.Price)
		assert.Equal(t, 6, plan.DurationMonths)
		store.AssertExpectations(t)
	})

	t.Run("ignores inactive plans", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Find", mock.Anything, "classic-cab").Return(testTheme(), nil)

		svc := catalog.NewService(store, nil, nil)

		_, err := svc.FindActivePlan(context.Background(), "classic-cab", 3)
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})

	t.Run("unknown duration", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Find", mock.Anything, "classic-cab").Return(testTheme(), nil)

		svc := catalog.NewService(store, nil, nil)

		_, err := svc.FindActivePlan(context.Background(), "classic-cab", 24)
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})

	t.Run("inactive theme is not purchasable", func(t *testing.T) {
		t.Parallel()

		theme := testTheme()
		theme.Active = false

		store := new(mockStore)
		store.On("Find", mock.Anything, "classic-cab").Return(theme, nil)

		svc := catalog.NewService(store, nil, nil)

		_, err := svc.FindActivePlan(context.Background(), "classic-cab", 6)
		assert.ErrorIs(t, err, catalog.ErrThemeNotFound)
	})

	t.Run("missing theme", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Find", mock.Anything, "nope").Return(nil, catalog.ErrThemeNotFound)

		svc := catalog.NewService(store, nil, nil)

		_, err := svc.FindActivePlan(context.Background(), "nope", 6)
		assert.ErrorIs(t, err, catalog.ErrThemeNotFound)
	})
}

func TestServiceCreateTheme(t *testing.T) {
	t.Parallel()

	t.Run("rejects duplicate active plan durations", func(t *testing.T) {
		t.Parallel()

		svc := catalog.NewService(new(mockStore), nil, nil)

		_, err := svc.CreateTheme(context.Background(), catalog.CreateThemeParams{
			Slug: "dup",
			Name: "Dup",
			PricePlans: []catalog.Plan{
				{DurationMonths: 6, Price: 999, Active: true},
				{DurationMonths: 6, Price: 1099, Active: true},
			},
		})
		assert.ErrorIs(t, err, catalog.ErrDuplicatePlanPeriod)
	})

	t.Run("allows inactive duplicate durations", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.Anything).Return(nil)

		svc := catalog.NewService(store, nil, nil)

		theme, err := svc.CreateTheme(context.Background(), catalog.CreateThemeParams{
			Slug: "ok",
			Name: "OK",
			PricePlans: []catalog.Plan{
				{DurationMonths: 6, Price: 999, Active: true},
				{DurationMonths: 6, Price: 899, Active: false},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", theme.Slug)
		store.AssertExpectations(t)
	})

	t.Run("rejects missing slug", func(t *testing.T) {
		t.Parallel()

		svc := catalog.NewService(new(mockStore), nil, nil)

		_, err := svc.CreateTheme(context.Background(), catalog.CreateThemeParams{Name: "No Slug"})
		assert.ErrorIs(t, err, catalog.ErrInvalidTheme)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		t.Parallel()

		svc := catalog.NewService(new(mockStore), nil, nil)

		_, err := svc.CreateTheme(context.Background(), catalog.CreateThemeParams{
			Slug:       "neg",
			Name:       "Neg",
			PricePlans: []catalog.Plan{{DurationMonths: 6, Price: -1, Active: true}},
		})
		assert.ErrorIs(t, err, catalog.ErrInvalidTheme)
	})
}

func TestServiceUpdateTheme(t *testing.T) {
	t.Parallel()

	t.Run("applies partial update", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Find", mock.Anything, "classic-cab").Return(testTheme(), nil)
		store.On("Update", mock.Anything, mock.MatchedBy(func(th *catalog.Theme) bool {
			return th.Name == "Renamed" && th.Tag == "" && len(th.PricePlans) == 3
		})).Return(nil)

		svc := catalog.NewService(store, nil, nil)

		name := "Renamed"
		theme, err := svc.UpdateTheme(context.Background(), "classic-cab", catalog.UpdateThemeParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", theme.Name)
		store.AssertExpectations(t)
	})

	t.Run("validates replacement plans", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("Find", mock.Anything, "classic-cab").Return(testTheme(), nil)

		svc := catalog.NewService(store, nil, nil)

		_, err := svc.UpdateTheme(context.Background(), "classic-cab", catalog.UpdateThemeParams{
			PricePlans: []catalog.Plan{
				{DurationMonths: 12, Price: 100, Active: true},
				{DurationMonths: 12, Price: 200, Active: true},
			},
		})
		assert.ErrorIs(t, err, catalog.ErrDuplicatePlanPeriod)
	})
}

func TestServiceToggleActive(t *testing.T) {
	t.Parallel()

	store := new(mockStore)
	store.On("Find", mock.Anything, "classic-cab").Return(testTheme(), nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(th *catalog.Theme) bool {
		return !th.Active
	})).Return(nil)

	svc := catalog.NewService(store, nil, nil)

	active, err := svc.ToggleActive(context.Background(), "classic-cab")
	require.NoError(t, err)
	assert.False(t, active)
	store.AssertExpectations(t)
}

func TestThemeActivePlan(t *testing.T) {
	t.Parallel()

	theme := testTheme()

	plan, ok := theme.ActivePlan(12)
	require.True(t, ok)
	assert.Equal(t, int64(1499), plan.Price)

	_, ok = theme.ActivePlan(3)
	assert.False(t, ok, "inactive plan must not resolve")

	_, ok = theme.ActivePlan(0)
	assert.False(t, ok)
}
