package website

import "errors"

var (
	ErrWebsiteNotFound   = errors.New("website not found")
	ErrWebsiteExists     = errors.New("driver already has a website")
	ErrThemeRequired     = errors.New("theme is required to create a website")
	ErrInvalidIndex      = errors.New("index out of range")
	ErrInvalidInput      = errors.New("invalid website input")
	ErrFailedToStoreSite = errors.New("failed to store website")
	ErrFailedToLoadSite  = errors.New("failed to load website")
)
