package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"frogol/internal/domain"
	"frogol/internal/metrics"
	"frogol/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes.
const MaxAvatarSize = 5 << 20 // 5 MiB

// Concurrency limits for batch file I/O. Saves are heavier (full write +
// metadata insert) than deletions, so they get a tighter bound.
const (
	saveConcurrency   = 4
	deleteConcurrency = 8
)

// allowedImageTypes maps accepted avatar MIME types to their on-disk
// file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is one avatar file received from a client.
type Upload struct {
	Filename    string // Client's original name, used only for logging
	ContentType string // Client-declared MIME type, may be empty or generic
	Data        []byte
}

// AvatarService handles avatar image uploads for pages.
// Files live on disk under dir; the database keeps one metadata row per
// stored file so orphaned files can be found and page deletion can clean up.
type AvatarService struct {
	frogolRepo repository.FrogolRepository
	avatarRepo repository.AvatarImageRepository
	cache      Cache
	dir        string
}

// NewAvatarService creates a new avatar service storing files under dir.
func NewAvatarService(frogolRepo repository.FrogolRepository, avatarRepo repository.AvatarImageRepository, cache Cache, dir string) *AvatarService {
	return &AvatarService{
		frogolRepo: frogolRepo,
		avatarRepo: avatarRepo,
		cache:      cache,
		dir:        dir,
	}
}

// contentType resolves an upload's MIME type. The client's declared type is
// trusted when it's specific; an empty or generic declaration falls back to
// sniffing the file content.
func contentType(up Upload) string {
	if up.ContentType != "" && up.ContentType != "application/octet-stream" {
		return up.ContentType
	}
	return mimetype.Detect(up.Data).String()
}

// validate rejects empty, oversized or non-image uploads.
// Returns the resolved file extension for an accepted upload.
func validate(up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrValidation)
	}
	if len(up.Data) > MaxAvatarSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, MaxAvatarSize)
	}

	ct := contentType(up)
	ext, ok := allowedImageTypes[ct]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, ct)
	}

	return ext, nil
}

// save writes one upload to disk and records its metadata row.
func (s *AvatarService) save(ctx context.Context, frogolID string, up Upload) (*domain.AvatarImage, error) {
	ext, err := validate(up)
	if err != nil {
		return nil, err
	}

	img := &domain.AvatarImage{
		ID:        uuid.New().String(),
		FrogolID:  frogolID,
		Filename:  uuid.New().String() + ext,
		CreatedAt: time.Now(),
	}

	path := filepath.Join(s.dir, img.Filename)
	if err := os.WriteFile(path, up.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write avatar file: %w", err)
	}

	if err := s.avatarRepo.Create(ctx, img); err != nil {
		// Don't leave an orphan file behind when the row insert fails.
		os.Remove(path)
		return nil, fmt.Errorf("failed to record avatar image: %w", err)
	}

	metrics.RecordAvatarUploaded()

	return img, nil
}

// UploadAvatar stores a single avatar and makes it the page's current one.
// Returns the updated page.
func (s *AvatarService) UploadAvatar(ctx context.Context, frogolID string, up Upload) (*domain.Frogol, error) {
	// Verify the page exists before touching the disk.
	if _, err := s.frogolRepo.GetByID(ctx, frogolID); err != nil {
		return nil, err
	}

	img, err := s.save(ctx, frogolID, up)
	if err != nil {
		return nil, err
	}

	frogol, err := s.frogolRepo.UpdateAvatarURL(ctx, frogolID, AvatarURL(img.Filename))
	if err != nil {
		return nil, err
	}

	if err := s.cache.DeleteProfile(ctx, frogol.Slug); err != nil {
		fmt.Printf("Warning: failed to invalidate cached profile: %v\n", err)
	}

	return frogol, nil
}

// UploadAvatars stores a batch of avatar images concurrently and makes the
// first file of the batch the page's current avatar. The batch is bounded so
// a large upload can't exhaust file descriptors; one bad file fails the
// whole batch.
func (s *AvatarService) UploadAvatars(ctx context.Context, frogolID string, uploads []Upload) (*domain.Frogol, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files in upload", domain.ErrValidation)
	}

	if _, err := s.frogolRepo.GetByID(ctx, frogolID); err != nil {
		return nil, err
	}

	// Validate everything up front so a bad file rejects the batch before
	// any disk writes happen.
	for _, up := range uploads {
		if _, err := validate(up); err != nil {
			return nil, err
		}
	}

	// Indexed by upload position so each goroutine writes its own slot and
	// the batch's first file stays first regardless of completion order.
	stored := make([]*domain.AvatarImage, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)

	for i, up := range uploads {
		g.Go(func() error {
			img, err := s.save(gctx, frogolID, up)
			if err != nil {
				return err
			}
			stored[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	frogol, err := s.frogolRepo.UpdateAvatarURL(ctx, frogolID, AvatarURL(stored[0].Filename))
	if err != nil {
		return nil, err
	}

	if err := s.cache.DeleteProfile(ctx, frogol.Slug); err != nil {
		fmt.Printf("Warning: failed to invalidate cached profile: %v\n", err)
	}

	return frogol, nil
}

// DeleteAvatars removes every stored avatar file and metadata row of a page.
// File deletion keeps going past individual failures so one stuck file never
// strands the rest; the first failure is still reported to the caller.
func (s *AvatarService) DeleteAvatars(ctx context.Context, frogolID string) error {
	images, err := s.avatarRepo.ListByFrogol(ctx, frogolID)
	if err != nil {
		return err
	}

	// Plain errgroup (no context) - a failed removal must not cancel the
	// remaining ones.
	var g errgroup.Group
	g.SetLimit(deleteConcurrency)

	for _, img := range images {
		path := filepath.Join(s.dir, img.Filename)
		g.Go(func() error {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove avatar file %s: %w", img.Filename, err)
			}
			return nil
		})
	}

	firstErr := g.Wait()

	if err := s.avatarRepo.DeleteByFrogol(ctx, frogolID); err != nil {
		return err
	}

	return firstErr
}

// Latest returns a page's most recent avatar metadata, nil when it has none.
func (s *AvatarService) Latest(ctx context.Context, frogolID string) (*domain.AvatarImage, error) {
	return s.avatarRepo.Latest(ctx, frogolID)
}

// AvatarURL maps a stored filename to its public URL path.
func AvatarURL(filename string) string {
	return "/static/avatars/" + filename
}
