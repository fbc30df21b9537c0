package entities

import "time"

// UrlMapping represents a shortened URL record in the database
type UrlMapping struct {
	ID          string    `json:"id"`                  // UUID
	ShortID     string    `json:"short_id"`            // Globally unique short code
	OriginalURL string    `json:"original_url"`        // Destination URL
	ShortURL    string    `json:"short_url"`           // Display value: frontend base URL + "/" + short ID
	UserID      *string   `json:"user_id,omitempty"`   // Pointer allows nil (for anonymous mappings), UUID
	Clicks      int       `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}
