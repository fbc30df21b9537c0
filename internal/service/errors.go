package service

import "errors"

// Service-layer errors for URL mapping operations
var (
	ErrInvalidInput        = errors.New("original URL is required")
	ErrNotFound            = errors.New("URL not found")
	ErrNotOwner            = errors.New("not authorized to delete this URL")
	ErrGenerationExhausted = errors.New("failed to generate a unique short ID")
)
