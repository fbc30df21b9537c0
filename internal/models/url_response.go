package models

import "linkly-be/internal/entities"

// URLResponse is the envelope for create and single-mapping responses
type URLResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	URL     *entities.UrlMapping `json:"url,omitempty"`
}

// ListURLsResponse is the envelope for listing mappings
type ListURLsResponse struct {
	Success bool                   `json:"success"`
	Count   int                    `json:"count"`
	URLs    []*entities.UrlMapping `json:"urls"`
}

// ResolveURLResponse carries the destination of a resolved short ID
type ResolveURLResponse struct {
	Success     bool   `json:"success"`
	OriginalURL string `json:"original_url"`
}

// MessageResponse is the envelope for operations without a payload
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed operations
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
