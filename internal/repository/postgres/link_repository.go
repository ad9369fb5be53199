package postgres

import (
	"context"
	"errors"
	"fmt"

	"frogol/internal/domain"
	"frogol/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// linkRepository is the PostgreSQL implementation of repository.LinkRepository.
type linkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new PostgreSQL link repository.
func NewLinkRepository(db *pgxpool.Pool) repository.LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, frogol_id, url, label, sort_order, is_active, kind`

func scanLink(row pgx.Row) (*domain.Link, error) {
	l := &domain.Link{}
	err := row.Scan(
		&l.ID,
		&l.FrogolID,
		&l.URL,
		&l.Label,
		&l.SortOrder,
		&l.IsActive,
		&l.Kind,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a new link at the position the service computed for it.
func (r *linkRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO links (id, frogol_id, url, label, sort_order, is_active, kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		link.ID,
		link.FrogolID,
		link.URL,
		link.Label,
		link.SortOrder,
		link.IsActive,
		link.Kind,
	)
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetByID retrieves a single link.
func (r *linkRepository) GetByID(ctx context.Context, id string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	l, err := scanLink(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: link %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return l, nil
}

func (r *linkRepository) list(ctx context.Context, query, frogolID string) ([]*domain.Link, error) {
	rows, err := r.db.Query(ctx, query, frogolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// ListActive returns the page's visible links in display order.
// Ties on sort_order break by id so the order is deterministic.
func (r *linkRepository) ListActive(ctx context.Context, frogolID string) ([]*domain.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE frogol_id = $1 AND is_active = true
		ORDER BY sort_order, id
	`
	return r.list(ctx, query, frogolID)
}

// ListAll returns every link of the page, hidden ones included, for the
// owner's dashboard.
func (r *linkRepository) ListAll(ctx context.Context, frogolID string) ([]*domain.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE frogol_id = $1
		ORDER BY sort_order, id
	`
	return r.list(ctx, query, frogolID)
}

// NextSortOrder returns the next free position at the end of the page.
// COALESCE(-1)+1 yields 0 for a page with no links yet.
func (r *linkRepository) NextSortOrder(ctx context.Context, frogolID string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(sort_order), -1) + 1
		FROM links
		WHERE frogol_id = $1
	`

	var next int64
	if err := r.db.QueryRow(ctx, query, frogolID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next sort order: %w", err)
	}

	return next, nil
}

// Update changes url and label, leaving position and visibility alone.
func (r *linkRepository) Update(ctx context.Context, id, url, label string) (*domain.Link, error) {
	query := `
		UPDATE links
		SET url = $1, label = $2
		WHERE id = $3
		RETURNING ` + linkColumns

	l, err := scanLink(r.db.QueryRow(ctx, query, url, label, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: link %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	return l, nil
}

// SetActive toggles a link's visibility on the public page.
func (r *linkRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.Exec(ctx, `UPDATE links SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set link active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: link %q", domain.ErrNotFound, id)
	}

	return nil
}

// Delete hard-deletes a link; its click events cascade in the store.
func (r *linkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: link %q", domain.ErrNotFound, id)
	}

	return nil
}

// ReassignSortOrders rewrites sort_order = index for the resolved order in a
// single transaction. Either every position commits or none do; the frogol_id
// predicate keeps each update scoped to the page being reordered.
func (r *linkRepository) ReassignSortOrders(ctx context.Context, frogolID string, orderedIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback(ctx)

	for i, id := range orderedIDs {
		_, err := tx.Exec(
			ctx,
			`UPDATE links SET sort_order = $1 WHERE id = $2 AND frogol_id = $3`,
			int64(i),
			id,
			frogolID,
		)
		if err != nil {
			return fmt.Errorf("failed to set sort order for link %q: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	return nil
}
