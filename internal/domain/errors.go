package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrContentBlocked      = errors.New("content blocked by safety filters")
	ErrNoContent           = errors.New("provider returned no content")
	ErrMalformedResponse   = errors.New("malformed provider response")
	ErrUploadFailed        = errors.New("upload failed")
	ErrDuplicateEmail      = errors.New("email already registered")
)
