package shortid

import (
	"crypto/rand"
	"fmt"
)

// Length is the fixed length of generated short IDs.
const Length = 6

// alphabet is the URL-safe character set for short IDs (base36, lowercase).
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// New generates a random short ID. IDs are compact and human-typable but
// not guaranteed unique; callers must handle collisions at insert time.
func New() (string, error) {
	bytes := make([]byte, Length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i, b := range bytes {
		bytes[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(bytes), nil
}
