package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkly-be/internal/entities"
)

// memoryRecord wraps a mapping with its insertion order so listings stay
// deterministic when two records share a creation timestamp.
type memoryRecord struct {
	mapping entities.UrlMapping
	seq     int64
}

// MemoryURLRepository is a mutex-guarded in-memory implementation of
// URLRepository. It backs tests and local development; the Postgres
// implementation is the production store.
type MemoryURLRepository struct {
	mu      sync.Mutex
	byShort map[string]*memoryRecord
	byID    map[string]*memoryRecord
	seq     int64
	nowFunc func() time.Time
}

// NewMemoryURLRepository creates an empty in-memory repository
func NewMemoryURLRepository() *MemoryURLRepository {
	return &MemoryURLRepository{
		byShort: make(map[string]*memoryRecord),
		byID:    make(map[string]*memoryRecord),
		nowFunc: time.Now,
	}
}

func scopeMatches(scope entities.Scope, userID *string) bool {
	if scope.Owned() {
		return userID != nil && *userID == *scope.UserID()
	}
	return userID == nil
}

func (r *MemoryURLRepository) expired(rec *memoryRecord) bool {
	return r.nowFunc().Sub(rec.mapping.CreatedAt) >= Retention
}

func copyMapping(rec *memoryRecord) *entities.UrlMapping {
	m := rec.mapping
	return &m
}

func (r *MemoryURLRepository) FindByOriginalURL(_ context.Context, originalURL string, scope entities.Scope) (*entities.UrlMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.byShort {
		if rec.mapping.OriginalURL == originalURL && scopeMatches(scope, rec.mapping.UserID) && !r.expired(rec) {
			return copyMapping(rec), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryURLRepository) FindByShortID(_ context.Context, shortID string) (*entities.UrlMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.byShort[shortID]
	if !exists || r.expired(rec) {
		return nil, ErrNotFound
	}
	return copyMapping(rec), nil
}

func (r *MemoryURLRepository) FindByID(_ context.Context, id string) (*entities.UrlMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.byID[id]
	if !exists || r.expired(rec) {
		return nil, ErrNotFound
	}
	return copyMapping(rec), nil
}

func (r *MemoryURLRepository) ListByScope(_ context.Context, scope entities.Scope) ([]*entities.UrlMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var recs []*memoryRecord
	for _, rec := range r.byShort {
		if scopeMatches(scope, rec.mapping.UserID) && !r.expired(rec) {
			recs = append(recs, rec)
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].mapping.CreatedAt.Equal(recs[j].mapping.CreatedAt) {
			return recs[i].mapping.CreatedAt.After(recs[j].mapping.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	mappings := make([]*entities.UrlMapping, len(recs))
	for i, rec := range recs {
		mappings[i] = copyMapping(rec)
	}
	return mappings, nil
}

func (r *MemoryURLRepository) Insert(_ context.Context, shortID, originalURL, shortURL string, userID *string) (*entities.UrlMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byShort[shortID]; exists {
		return nil, ErrDuplicateShortID
	}

	r.seq++
	rec := &memoryRecord{
		mapping: entities.UrlMapping{
			ID:          uuid.NewString(),
			ShortID:     shortID,
			OriginalURL: originalURL,
			ShortURL:    shortURL,
			UserID:      userID,
			CreatedAt:   r.nowFunc(),
		},
		seq: r.seq,
	}
	r.byShort[shortID] = rec
	r.byID[rec.mapping.ID] = rec

	return copyMapping(rec), nil
}

func (r *MemoryURLRepository) UpdateShortURL(_ context.Context, id, shortURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.byID[id]
	if !exists || r.expired(rec) {
		return ErrNotFound
	}
	rec.mapping.ShortURL = shortURL
	return nil
}

func (r *MemoryURLRepository) IncrementClicks(_ context.Context, shortID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.byShort[shortID]
	if !exists || r.expired(rec) {
		return "", ErrNotFound
	}
	rec.mapping.Clicks++
	return rec.mapping.OriginalURL, nil
}

func (r *MemoryURLRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.byID[id]
	if !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byShort, rec.mapping.ShortID)
	return nil
}

func (r *MemoryURLRepository) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for shortID, rec := range r.byShort {
		if r.expired(rec) {
			delete(r.byShort, shortID)
			delete(r.byID, rec.mapping.ID)
			purged++
		}
	}
	return purged, nil
}

// SetNowFunc overrides the repository clock. Tests use it to age records
// past the retention window.
func (r *MemoryURLRepository) SetNowFunc(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nowFunc = now
}
