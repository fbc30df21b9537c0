package models

// CreateURLRequest represents the request body for shortening a URL
type CreateURLRequest struct {
	OriginalURL string `json:"original_url" binding:"required"` // Gin validation: required
	FrontendURL string `json:"frontend_url"`                    // Base for the display short URL
}
