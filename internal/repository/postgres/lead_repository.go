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

// leadRepository is the PostgreSQL implementation of repository.LeadRepository.
type leadRepository struct {
	db *pgxpool.Pool
}

// NewLeadRepository creates a new PostgreSQL lead repository.
func NewLeadRepository(db *pgxpool.Pool) repository.LeadRepository {
	return &leadRepository{db: db}
}

const leadColumns = `id, frogol_id, email, source, score, message, created_at`

func scanLead(row pgx.Row) (*domain.Lead, error) {
	l := &domain.Lead{}
	err := row.Scan(
		&l.ID,
		&l.FrogolID,
		&l.Email,
		&l.Source,
		&l.Score,
		&l.Message,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a captured lead.
func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `
		INSERT INTO leads (id, frogol_id, email, source, score, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		lead.ID,
		lead.FrogolID,
		lead.Email,
		lead.Source,
		lead.Score,
		lead.Message,
		lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// GetByID retrieves a single lead.
func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	l, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: lead %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return l, nil
}

// ListByFrogol returns a page's leads, newest first.
func (r *leadRepository) ListByFrogol(ctx context.Context, frogolID string) ([]*domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE frogol_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, frogolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

// Update overwrites email and, when non-nil, source, score and message.
func (r *leadRepository) Update(ctx context.Context, id, email string, source *string, score *int64, message *string) (*domain.Lead, error) {
	query := `
		UPDATE leads
		SET email = $1,
		    source = COALESCE($2, source),
		    score = COALESCE($3, score),
		    message = COALESCE($4, message)
		WHERE id = $5
		RETURNING ` + leadColumns

	l, err := scanLead(r.db.QueryRow(ctx, query, email, source, score, message, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: lead %q", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return l, nil
}

// Delete removes a lead.
func (r *leadRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: lead %q", domain.ErrNotFound, id)
	}

	return nil
}
