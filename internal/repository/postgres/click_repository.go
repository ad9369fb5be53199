package postgres

import (
	"context"
	"fmt"

	"frogol/internal/domain"
	"frogol/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// clickRepository is the PostgreSQL implementation of repository.ClickRepository.
type clickRepository struct {
	db *pgxpool.Pool
}

// NewClickRepository creates a new PostgreSQL click repository.
func NewClickRepository(db *pgxpool.Pool) repository.ClickRepository {
	return &clickRepository{db: db}
}

// Create records a single click event.
func (r *clickRepository) Create(ctx context.Context, click *domain.Click) error {
	query := `
		INSERT INTO clicks (id, link_id, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		click.ID,
		click.LinkID,
		click.IPAddress,
		click.UserAgent,
		click.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// StatsByFrogol aggregates clicks across every link of a page. Unique counts
// distinct non-null IPs, so clicks without an address add to the total but
// never to unique.
func (r *clickRepository) StatsByFrogol(ctx context.Context, frogolID string) (*domain.ClickStats, error) {
	query := `
		SELECT
			COUNT(c.id),
			COUNT(DISTINCT c.ip_address) FILTER (WHERE c.ip_address IS NOT NULL)
		FROM clicks c
		JOIN links l ON l.id = c.link_id
		WHERE l.frogol_id = $1
	`

	stats := &domain.ClickStats{}
	err := r.db.QueryRow(ctx, query, frogolID).Scan(&stats.TotalClicks, &stats.UniqueClicks)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate click stats: %w", err)
	}

	return stats, nil
}

// CountPerLink returns a click count for every link of the page. The LEFT
// JOIN keeps links with no clicks in the result with a count of zero.
func (r *clickRepository) CountPerLink(ctx context.Context, frogolID string) (map[string]int64, error) {
	query := `
		SELECT l.id, COUNT(c.id)
		FROM links l
		LEFT JOIN clicks c ON c.link_id = l.id
		WHERE l.frogol_id = $1
		GROUP BY l.id
	`

	rows, err := r.db.Query(ctx, query, frogolID)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks per link: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var linkID string
		var count int64
		if err := rows.Scan(&linkID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan click count: %w", err)
		}
		counts[linkID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click counts: %w", err)
	}

	return counts, nil
}
