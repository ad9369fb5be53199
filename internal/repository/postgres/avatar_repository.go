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

// avatarImageRepository is the PostgreSQL implementation of
// repository.AvatarImageRepository.
type avatarImageRepository struct {
	db *pgxpool.Pool
}

// NewAvatarImageRepository creates a new PostgreSQL avatar image repository.
func NewAvatarImageRepository(db *pgxpool.Pool) repository.AvatarImageRepository {
	return &avatarImageRepository{db: db}
}

// Create inserts metadata for a freshly stored avatar file.
func (r *avatarImageRepository) Create(ctx context.Context, image *domain.AvatarImage) error {
	query := `
		INSERT INTO frogol_avatar_images (id, frogol_id, filename, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, image.ID, image.FrogolID, image.Filename, image.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create avatar image: %w", err)
	}

	return nil
}

// Latest returns the most recent avatar row for a page, (nil, nil) when the
// page has never had one.
func (r *avatarImageRepository) Latest(ctx context.Context, frogolID string) (*domain.AvatarImage, error) {
	query := `
		SELECT id, frogol_id, filename, created_at
		FROM frogol_avatar_images
		WHERE frogol_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	img := &domain.AvatarImage{}
	err := r.db.QueryRow(ctx, query, frogolID).Scan(
		&img.ID,
		&img.FrogolID,
		&img.Filename,
		&img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest avatar image: %w", err)
	}

	return img, nil
}

// ListByFrogol returns every stored avatar row for a page, newest first.
// Callers use this to clean up the on-disk files before deleting the rows.
func (r *avatarImageRepository) ListByFrogol(ctx context.Context, frogolID string) ([]*domain.AvatarImage, error) {
	query := `
		SELECT id, frogol_id, filename, created_at
		FROM frogol_avatar_images
		WHERE frogol_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, frogolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list avatar images: %w", err)
	}
	defer rows.Close()

	var images []*domain.AvatarImage
	for rows.Next() {
		img := &domain.AvatarImage{}
		if err := rows.Scan(&img.ID, &img.FrogolID, &img.Filename, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan avatar image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating avatar images: %w", err)
	}

	return images, nil
}

// DeleteByFrogol removes all avatar rows of a page. Zero rows affected is
// fine - a page without avatars has nothing to delete.
func (r *avatarImageRepository) DeleteByFrogol(ctx context.Context, frogolID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM frogol_avatar_images WHERE frogol_id = $1`, frogolID)
	if err != nil {
		return fmt.Errorf("failed to delete avatar images: %w", err)
	}

	return nil
}
