package enquiry

import "errors"

var (
	ErrEnquiryNotFound     = errors.New("enquiry not found")
	ErrInvalidEnquiry      = errors.New("invalid enquiry input")
	ErrInvalidStatus       = errors.New("invalid trip status")
	ErrFailedToStoreRecord = errors.New("failed to store enquiry")
	ErrFailedToLoadRecord  = errors.New("failed to load enquiry")
)
