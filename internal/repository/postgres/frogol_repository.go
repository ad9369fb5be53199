package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frogol/internal/domain"
	"frogol/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// frogolRepository is the PostgreSQL implementation of repository.FrogolRepository.
// The lowercase name means it's private to this package; constructors return
// the interface type for abstraction.
type frogolRepository struct {
	db *pgxpool.Pool
}

// NewFrogolRepository creates a new PostgreSQL page repository.
func NewFrogolRepository(db *pgxpool.Pool) repository.FrogolRepository {
	return &frogolRepository{db: db}
}

const frogolColumns = `id, user_id, slug, display_name, theme, avatar_url, bio, created_at`

func scanFrogol(row pgx.Row) (*domain.Frogol, error) {
	f := &domain.Frogol{}
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.Slug,
		&f.DisplayName, // pgx handles NULL -> nil conversion automatically
		&f.Theme,
		&f.AvatarURL,
		&f.Bio,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a new page. A slug collision violates the UNIQUE constraint
// and comes back as a plain error; the service treats the constraint as the
// authoritative guard.
func (r *frogolRepository) Create(ctx context.Context, frogol *domain.Frogol) error {
	query := `
		INSERT INTO frogols (id, user_id, slug, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		frogol.ID,
		frogol.UserID,
		frogol.Slug,
		frogol.DisplayName,
		frogol.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create frogol: %w", err)
	}

	return nil
}

// GetBySlug retrieves a page by its slug.
func (r *frogolRepository) GetBySlug(ctx context.Context, slug string) (*domain.Frogol, error) {
	query := `SELECT ` + frogolColumns + ` FROM frogols WHERE slug = $1`

	f, err := scanFrogol(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: frogol %q", domain.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get frogol: %w", err)
	}

	return f, nil
}

// GetByID retrieves a page by its UUID.
func (r *frogolRepository) GetByID(ctx context.Context, id string) (*domain.Frogol, error) {
	query := `SELECT ` + frogolColumns + ` FROM frogols WHERE id = $1`

	f, err := scanFrogol(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: frogol %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get frogol: %w", err)
	}

	return f, nil
}

// ListByUser returns one summary row per page the user owns, newest first.
// COUNT(DISTINCT ...) is required because the three left joins multiply rows.
func (r *frogolRepository) ListByUser(ctx context.Context, userID string) ([]domain.FrogolSummary, error) {
	query := `
		SELECT f.id, f.slug, COALESCE(f.display_name, 'Frogol'), f.created_at,
		       COUNT(DISTINCT l.id)  AS total_links,
		       COUNT(DISTINCT ld.id) AS total_leads,
		       COUNT(DISTINCT c.id)  AS total_clicks
		FROM frogols f
		LEFT JOIN links l   ON f.id = l.frogol_id
		LEFT JOIN leads ld  ON f.id = ld.frogol_id
		LEFT JOIN clicks c  ON l.id = c.link_id
		WHERE f.user_id = $1
		GROUP BY f.id, f.slug, f.display_name, f.created_at
		ORDER BY f.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list frogols: %w", err)
	}
	defer rows.Close()

	var summaries []domain.FrogolSummary
	for rows.Next() {
		var s domain.FrogolSummary
		err := rows.Scan(
			&s.ID,
			&s.Slug,
			&s.DisplayName,
			&s.CreatedAt,
			&s.TotalLinks,
			&s.TotalLeads,
			&s.TotalClicks,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frogol summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating frogol summaries: %w", err)
	}

	return summaries, nil
}

// Update modifies a page's profile fields. Avatar URL and bio use COALESCE so
// a nil value keeps whatever is stored instead of clearing it.
func (r *frogolRepository) Update(ctx context.Context, id, displayName, theme string, avatarURL, bio *string) (*domain.Frogol, error) {
	query := `
		UPDATE frogols
		SET display_name = $1,
		    theme = $2,
		    avatar_url = COALESCE($3, avatar_url),
		    bio = COALESCE($4, bio)
		WHERE id = $5
		RETURNING ` + frogolColumns

	f, err := scanFrogol(r.db.QueryRow(ctx, query, displayName, theme, avatarURL, bio, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: frogol %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update frogol: %w", err)
	}

	return f, nil
}

// UpdateAvatarURL sets just the avatar URL after an upload completes.
func (r *frogolRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) (*domain.Frogol, error) {
	query := `
		UPDATE frogols
		SET avatar_url = $1
		WHERE id = $2
		RETURNING ` + frogolColumns

	f, err := scanFrogol(r.db.QueryRow(ctx, query, avatarURL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: frogol %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update frogol avatar: %w", err)
	}

	return f, nil
}

// Delete removes a page. Links, leads, clicks and avatar rows go with it via
// ON DELETE CASCADE in the schema.
func (r *frogolRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM frogols WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete frogol: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: frogol %q", domain.ErrNotFound, id)
	}

	return nil
}

// UserAnalytics computes cross-page totals plus the five best performing
// pages. Four scalar counts and one grouped query; each query sees its own
// consistent snapshot, which is enough for a reporting path.
func (r *frogolRepository) UserAnalytics(ctx context.Context, userID string) (*domain.UserAnalytics, error) {
	a := &domain.UserAnalytics{}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM frogols WHERE user_id = $1`, userID,
	).Scan(&a.TotalFrogols)
	if err != nil {
		return nil, fmt.Errorf("failed to count frogols: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM links l
		JOIN frogols f ON l.frogol_id = f.id
		WHERE f.user_id = $1
	`, userID).Scan(&a.TotalLinks)
	if err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM leads l
		JOIN frogols f ON l.frogol_id = f.id
		WHERE f.user_id = $1
	`, userID).Scan(&a.TotalLeads)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM clicks c
		JOIN links l   ON c.link_id = l.id
		JOIN frogols f ON l.frogol_id = f.id
		WHERE f.user_id = $1
	`, userID).Scan(&a.TotalClicks)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.slug, COALESCE(f.display_name, 'Frogol'), f.created_at,
		       COUNT(DISTINCT l.id)  AS total_links,
		       COUNT(DISTINCT ld.id) AS total_leads,
		       COUNT(DISTINCT c.id)  AS total_clicks
		FROM frogols f
		LEFT JOIN links l   ON f.id = l.frogol_id
		LEFT JOIN leads ld  ON f.id = ld.frogol_id
		LEFT JOIN clicks c  ON l.id = c.link_id
		WHERE f.user_id = $1
		GROUP BY f.id, f.slug, f.display_name, f.created_at
		ORDER BY COUNT(DISTINCT c.id) DESC, COUNT(DISTINCT ld.id) DESC
		LIMIT 5
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get top frogols: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.FrogolSummary
		err := rows.Scan(
			&s.ID,
			&s.Slug,
			&s.DisplayName,
			&s.CreatedAt,
			&s.TotalLinks,
			&s.TotalLeads,
			&s.TotalClicks,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top frogol: %w", err)
		}
		a.TopFrogols = append(a.TopFrogols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top frogols: %w", err)
	}

	return a, nil
}

// InitDB initializes the database connection pool.
// This is called once at application startup; the pool is the only shared,
// internally-synchronized resource handlers have in common.
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
