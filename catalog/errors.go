package catalog

import "errors"

var (
	ErrThemeNotFound       = errors.New("theme not found")
	ErrThemeExists         = errors.New("theme already exists")
	ErrPlanNotFound        = errors.New("no active plan for the requested duration")
	ErrDuplicatePlanPeriod = errors.New("theme has multiple active plans for the same duration")
	ErrInvalidTheme        = errors.New("invalid theme configuration")
	ErrInvalidSeedFile     = errors.New("invalid catalog seed file")
	ErrFailedToStoreTheme  = errors.New("failed to store theme")
	ErrFailedToLoadCatalog = errors.New("failed to load theme catalog")
)
