package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"linkly-be/internal/entities"
)

// RetentionDays is how long a mapping lives before it is purged,
// measured from its creation time.
const RetentionDays = 365

// Retention is RetentionDays as a duration.
const Retention = RetentionDays * 24 * time.Hour

// retentionCond excludes rows that have outlived the retention window.
// Reads apply it so expiry is observable even before the purge runs.
const retentionCond = "created_at > NOW() - INTERVAL '365 days'"

// URLRepository defines the interface for URL mapping storage operations
type URLRepository interface {
	FindByOriginalURL(ctx context.Context, originalURL string, scope entities.Scope) (*entities.UrlMapping, error)
	FindByShortID(ctx context.Context, shortID string) (*entities.UrlMapping, error)
	FindByID(ctx context.Context, id string) (*entities.UrlMapping, error)
	ListByScope(ctx context.Context, scope entities.Scope) ([]*entities.UrlMapping, error)
	Insert(ctx context.Context, shortID, originalURL, shortURL string, userID *string) (*entities.UrlMapping, error)
	UpdateShortURL(ctx context.Context, id, shortURL string) error
	IncrementClicks(ctx context.Context, shortID string) (string, error)
	DeleteByID(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL mapping repository backed by Postgres
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

const mappingColumns = "id, short_id, original_url, short_url, user_id, clicks, created_at"

func scanMapping(row *sql.Row) (*entities.UrlMapping, error) {
	var m entities.UrlMapping
	err := row.Scan(
		&m.ID,
		&m.ShortID,
		&m.OriginalURL,
		&m.ShortURL,
		&m.UserID,
		&m.Clicks,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByOriginalURL finds a mapping for an original URL within the given
// ownership scope. Owned scopes match only that owner's mappings, the
// public scope matches only ownerless ones.
func (r *urlRepository) FindByOriginalURL(ctx context.Context, originalURL string, scope entities.Scope) (*entities.UrlMapping, error) {
	var query string
	var args []interface{}

	if scope.Owned() {
		query = fmt.Sprintf(`
			SELECT %s FROM url_mappings
			WHERE original_url = $1 AND user_id = $2 AND %s
		`, mappingColumns, retentionCond)
		args = []interface{}{originalURL, *scope.UserID()}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM url_mappings
			WHERE original_url = $1 AND user_id IS NULL AND %s
		`, mappingColumns, retentionCond)
		args = []interface{}{originalURL}
	}

	m, err := scanMapping(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find mapping: %w", err)
	}
	return m, nil
}

// FindByShortID finds a mapping by its short ID, regardless of owner.
func (r *urlRepository) FindByShortID(ctx context.Context, shortID string) (*entities.UrlMapping, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM url_mappings
		WHERE short_id = $1 AND %s
	`, mappingColumns, retentionCond)

	m, err := scanMapping(r.db.QueryRowContext(ctx, query, shortID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find mapping: %w", err)
	}
	return m, nil
}

// FindByID finds a mapping by its record ID (UUID).
func (r *urlRepository) FindByID(ctx context.Context, id string) (*entities.UrlMapping, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM url_mappings
		WHERE id = $1 AND %s
	`, mappingColumns, retentionCond)

	m, err := scanMapping(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find mapping: %w", err)
	}
	return m, nil
}

// ListByScope returns all mappings in the given scope, newest first.
func (r *urlRepository) ListByScope(ctx context.Context, scope entities.Scope) ([]*entities.UrlMapping, error) {
	var query string
	var args []interface{}

	if scope.Owned() {
		query = fmt.Sprintf(`
			SELECT %s FROM url_mappings
			WHERE user_id = $1 AND %s
			ORDER BY created_at DESC
		`, mappingColumns, retentionCond)
		args = []interface{}{*scope.UserID()}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM url_mappings
			WHERE user_id IS NULL AND %s
			ORDER BY created_at DESC
		`, mappingColumns, retentionCond)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*entities.UrlMapping
	for rows.Next() {
		var m entities.UrlMapping
		err := rows.Scan(
			&m.ID,
			&m.ShortID,
			&m.OriginalURL,
			&m.ShortURL,
			&m.UserID,
			&m.Clicks,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		mappings = append(mappings, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mappings: %w", err)
	}

	return mappings, nil
}

// Insert creates a new mapping. The short_id unique constraint enforces
// global uniqueness; a collision returns ErrDuplicateShortID and leaves
// the existing mapping untouched.
func (r *urlRepository) Insert(ctx context.Context, shortID, originalURL, shortURL string, userID *string) (*entities.UrlMapping, error) {
	query := fmt.Sprintf(`
		INSERT INTO url_mappings (id, short_id, original_url, short_url, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, mappingColumns)

	m, err := scanMapping(r.db.QueryRowContext(ctx, query, uuid.NewString(), shortID, originalURL, shortURL, userID))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateShortID
		}
		return nil, fmt.Errorf("failed to insert mapping: %w", err)
	}
	return m, nil
}

// UpdateShortURL persists a recomputed display URL.
func (r *urlRepository) UpdateShortURL(ctx context.Context, id, shortURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE url_mappings
		SET short_url = $1
		WHERE id = $2
	`, shortURL, id)
	if err != nil {
		return fmt.Errorf("failed to update short URL: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClicks bumps the click counter for a short ID and returns the
// original URL in the same statement. The increment happens in the
// database, so concurrent calls never lose updates.
func (r *urlRepository) IncrementClicks(ctx context.Context, shortID string) (string, error) {
	query := fmt.Sprintf(`
		UPDATE url_mappings
		SET clicks = clicks + 1
		WHERE short_id = $1 AND %s
		RETURNING original_url
	`, retentionCond)

	var originalURL string
	err := r.db.QueryRowContext(ctx, query, shortID).Scan(&originalURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to increment clicks: %w", err)
	}
	return originalURL, nil
}

// DeleteByID removes a mapping.
func (r *urlRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM url_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired deletes mappings older than the retention window and
// returns how many rows were removed.
func (r *urlRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM url_mappings
		WHERE created_at <= NOW() - INTERVAL '365 days'
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired mappings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
