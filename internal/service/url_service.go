package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"linkly-be/internal/cache"
	"linkly-be/internal/entities"
	"linkly-be/internal/repository"
	"linkly-be/internal/shortid"
)

// maxGenerateRetries bounds how often Create regenerates a short ID after
// a collision before giving up with ErrGenerationExhausted.
const maxGenerateRetries = 9

// URLService defines the interface for URL mapping business logic
type URLService interface {
	// Create shortens originalURL within the given ownership scope. When a
	// mapping for the URL already exists in that scope, the existing
	// mapping is returned with created=false instead of a new one.
	Create(ctx context.Context, originalURL, frontendURL string, scope entities.Scope) (mapping *entities.UrlMapping, created bool, err error)
	// List returns the scope's mappings, newest first. A non-empty
	// frontendURL recomputes each display URL, persisting only changes.
	List(ctx context.Context, frontendURL string, scope entities.Scope) ([]*entities.UrlMapping, error)
	// Resolve returns the original URL for a short ID and counts the visit.
	Resolve(ctx context.Context, shortID string) (string, error)
	// Delete removes a mapping by record ID, enforcing ownership when both
	// the caller and the record carry an identity.
	Delete(ctx context.Context, id string, scope entities.Scope) error
}

type urlService struct {
	repo  repository.URLRepository
	cache cache.Cache
	gen   func() (string, error)
}

// NewURLService creates a new URL mapping service
func NewURLService(repo repository.URLRepository, cacheClient cache.Cache) URLService {
	return &urlService{
		repo:  repo,
		cache: cacheClient,
		gen:   shortid.New,
	}
}

func buildShortURL(frontendURL, shortID string) string {
	return strings.TrimRight(frontendURL, "/") + "/" + shortID
}

// Create shortens a URL, deduplicating within the caller's scope and
// retrying identifier collisions a bounded number of times.
func (s *urlService) Create(ctx context.Context, originalURL, frontendURL string, scope entities.Scope) (*entities.UrlMapping, bool, error) {
	originalURL = strings.TrimSpace(originalURL)
	if originalURL == "" {
		return nil, false, ErrInvalidInput
	}

	// Dedup check: the same URL in the same scope maps to the existing
	// record. Different scopes keep independent mappings.
	existing, err := s.repo.FindByOriginalURL(ctx, originalURL, scope)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check for existing mapping: %w", err)
	}

	var mapping *entities.UrlMapping
	backoff := retry.WithMaxRetries(maxGenerateRetries, retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		sid, err := s.gen()
		if err != nil {
			return fmt.Errorf("failed to generate short ID: %w", err)
		}

		if taken := s.shortIDKnownTaken(ctx, sid); taken {
			return retry.RetryableError(repository.ErrDuplicateShortID)
		}

		created, err := s.repo.Insert(ctx, sid, originalURL, buildShortURL(frontendURL, sid), scope.UserID())
		if errors.Is(err, repository.ErrDuplicateShortID) {
			s.markShortIDTaken(ctx, sid)
			return retry.RetryableError(err)
		}
		if err != nil {
			return fmt.Errorf("failed to create mapping: %w", err)
		}

		mapping = created
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateShortID) {
			return nil, false, ErrGenerationExhausted
		}
		return nil, false, err
	}

	s.markShortIDTaken(ctx, mapping.ShortID)
	return mapping, true, nil
}

// List returns the scope's mappings, newest first, recomputing display
// URLs against frontendURL when one is supplied. Recomputation is
// idempotent: a second call with the same base writes nothing.
func (s *urlService) List(ctx context.Context, frontendURL string, scope entities.Scope) ([]*entities.UrlMapping, error) {
	mappings, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	if frontendURL == "" {
		return mappings, nil
	}

	for _, m := range mappings {
		want := buildShortURL(frontendURL, m.ShortID)
		if m.ShortURL == want {
			continue
		}
		if err := s.repo.UpdateShortURL(ctx, m.ID, want); err != nil {
			// The record may expire between the read and the write.
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to update short URL: %w", err)
		}
		m.ShortURL = want
	}

	return mappings, nil
}

// Resolve looks a short ID up globally and counts the visit. The lookup
// and the increment are a single store operation, so every successful
// call bumps the counter exactly once.
func (s *urlService) Resolve(ctx context.Context, shortID string) (string, error) {
	originalURL, err := s.repo.IncrementClicks(ctx, shortID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve short ID: %w", err)
	}
	return originalURL, nil
}

// Delete removes a mapping by record ID. An authenticated caller may not
// delete another owner's mapping; an anonymous caller is not blocked from
// deleting an owned one, matching the behavior of the original API.
func (s *urlService) Delete(ctx context.Context, id string, scope entities.Scope) error {
	mapping, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find mapping: %w", err)
	}

	if mapping.UserID != nil && scope.Owned() && *mapping.UserID != *scope.UserID() {
		return ErrNotOwner
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		// Already gone (expired or deleted concurrently).
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete mapping: %w", err)
	}

	s.invalidateShortID(ctx, mapping.ShortID)
	return nil
}

// ---- short ID availability cache ----

func takenCacheKey(shortID string) string {
	return fmt.Sprintf("shortid:taken:%s", shortID)
}

// shortIDKnownTaken reports whether a short ID is known to be in use,
// consulting the cache first and falling back to the store. Misses are
// fine: the unique constraint at insert time is the source of truth.
func (s *urlService) shortIDKnownTaken(ctx context.Context, shortID string) bool {
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, takenCacheKey(shortID)); err == nil && val == "taken" {
			return true
		}
	}

	_, err := s.repo.FindByShortID(ctx, shortID)
	if err == nil {
		s.markShortIDTaken(ctx, shortID)
		return true
	}
	return false
}

func (s *urlService) markShortIDTaken(ctx context.Context, shortID string) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, takenCacheKey(shortID), "taken", 1*time.Hour)
}

func (s *urlService) invalidateShortID(ctx context.Context, shortID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, takenCacheKey(shortID))
}
