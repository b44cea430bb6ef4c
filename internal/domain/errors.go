package domain

import "errors"

// Failures that abort an operation and surface exactly one user-facing message.
// Best-effort lookups have no error values: an unresolved photo or address is
// the NotFound arm of Lookup.
var (
	ErrListFetchFailed = errors.New("failed to load hidden gems")
	ErrAuthRequired    = errors.New("please sign in to share a hidden gem")
	ErrNameRequired    = errors.New("name is required")
	ErrImageTooLarge   = errors.New("image is too large")
	ErrUploadFailed    = errors.New("failed to upload image")
	ErrCreateFailed    = errors.New("failed to share hidden gem")
)
