package service

import (
	"context"
	"errors"
	"fmt"

	"frogol/internal/domain"
	"frogol/internal/metrics"
	"frogol/internal/repository"
	"frogol/pkg/normalize"

	"github.com/google/uuid"
)

// Cache interface for public profile caching
// Using an interface allows for easy testing and swapping implementations
type Cache interface {
	GetProfile(ctx context.Context, slug string) (*domain.PublicProfile, error)
	SetProfile(ctx context.Context, slug string, profile *domain.PublicProfile) error
	DeleteProfile(ctx context.Context, slug string) error
}

// FrogolService handles business logic for pages, links and analytics.
// This is the SERVICE LAYER - it sits between HTTP handlers and repositories.
// Slug and URL normalization happen here, never in handlers or repositories,
// so every entry point gets the same canonical forms.
type FrogolService struct {
	frogolRepo repository.FrogolRepository
	linkRepo   repository.LinkRepository
	clickRepo  repository.ClickRepository
	cache      Cache // Redis cache for the public page read path
}

// NewFrogolService creates a new page service
func NewFrogolService(frogolRepo repository.FrogolRepository, linkRepo repository.LinkRepository, clickRepo repository.ClickRepository, cache Cache) *FrogolService {
	return &FrogolService{
		frogolRepo: frogolRepo,
		linkRepo:   linkRepo,
		clickRepo:  clickRepo,
		cache:      cache,
	}
}

// ==================== PAGES ====================

// CreateFrogol creates a new page for a user.
// The raw slug goes through full normalization; the pre-check against an
// existing page gives a friendly error, while the slug UNIQUE constraint in
// the store remains the authoritative guard against races.
func (s *FrogolService) CreateFrogol(ctx context.Context, userID, rawSlug, displayName string) (*domain.Frogol, error) {
	slug, err := normalize.Slug(rawSlug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// Friendly duplicate check. Only a confirmed "not found" clears the
	// slug - any other failure here must not let a duplicate slip through.
	existing, err := s.frogolRepo.GetBySlug(ctx, slug)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: slug %q is already taken", domain.ErrInvalidInput, slug)
	}

	frogol := domain.NewFrogol(uuid.New().String(), userID, slug, displayName)

	if err := s.frogolRepo.Create(ctx, frogol); err != nil {
		return nil, fmt.Errorf("failed to create frogol: %w", err)
	}

	metrics.RecordFrogolCreated()

	return frogol, nil
}

// GetFrogol retrieves a page by id.
func (s *FrogolService) GetFrogol(ctx context.Context, id string) (*domain.Frogol, error) {
	return s.frogolRepo.GetByID(ctx, id)
}

// ListFrogols returns dashboard summaries for every page the user owns.
func (s *FrogolService) ListFrogols(ctx context.Context, userID string) ([]domain.FrogolSummary, error) {
	return s.frogolRepo.ListByUser(ctx, userID)
}

// GetProfile retrieves the assembled public view of a page by slug.
// Implements CACHE-ASIDE PATTERN for performance: the public page is the
// hottest read path and must not hit the database on every visit.
func (s *FrogolService) GetProfile(ctx context.Context, slug string) (*domain.PublicProfile, error) {
	// STEP 1: Check cache first (cache-aside pattern)
	cached, err := s.cache.GetProfile(ctx, slug)
	if err == nil && cached != nil {
		// Cache hit! Return immediately
		return cached, nil
	}

	// STEP 2: Cache miss - get from database
	frogol, err := s.frogolRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	links, err := s.linkRepo.ListActive(ctx, frogol.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	profile := &domain.PublicProfile{Frogol: frogol, Links: links}

	// STEP 3: Store in cache for next time
	// Don't fail if caching fails - it's not critical
	if err := s.cache.SetProfile(ctx, slug, profile); err != nil {
		fmt.Printf("Warning: failed to cache profile: %v\n", err)
	}

	return profile, nil
}

// UpdateFrogol updates a page's presentation fields. Avatar URL and bio are
// only overwritten when provided. Invalidates the cached public profile.
func (s *FrogolService) UpdateFrogol(ctx context.Context, id, displayName, theme string, avatarURL, bio *string) (*domain.Frogol, error) {
	frogol, err := s.frogolRepo.Update(ctx, id, displayName, theme, avatarURL, bio)
	if err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, frogol.Slug)

	return frogol, nil
}

// DeleteFrogol removes a page and everything under it (links, leads, clicks
// and avatar rows cascade in the store). Invalidates the cached profile.
func (s *FrogolService) DeleteFrogol(ctx context.Context, id string) error {
	// Need the slug for cache invalidation before the row is gone.
	frogol, err := s.frogolRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.frogolRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateProfile(ctx, frogol.Slug)

	return nil
}

// invalidateProfile drops the cached public profile for a slug.
// Cache invalidation failing only means readers see stale data until the
// TTL expires, so it warns instead of failing the write.
func (s *FrogolService) invalidateProfile(ctx context.Context, slug string) {
	if err := s.cache.DeleteProfile(ctx, slug); err != nil {
		fmt.Printf("Warning: failed to invalidate cached profile: %v\n", err)
	}
}

// ==================== LINKS ====================

// AddLink appends a link to the end of a page.
// The URL gets protocol normalization; position is MAX(sort_order)+1 so new
// links always land at the bottom.
func (s *FrogolService) AddLink(ctx context.Context, frogolID, rawURL, label string) (*domain.Link, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: link label must not be empty", domain.ErrInvalidInput)
	}

	url := normalize.URL(rawURL)
	if url == "" {
		return nil, fmt.Errorf("%w: link url must not be empty", domain.ErrInvalidInput)
	}

	frogol, err := s.frogolRepo.GetByID(ctx, frogolID)
	if err != nil {
		return nil, err
	}

	next, err := s.linkRepo.NextSortOrder(ctx, frogolID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sort order: %w", err)
	}

	link := domain.NewLink(uuid.New().String(), frogolID, url, label, next)

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	metrics.RecordLinkCreated()
	s.invalidateProfile(ctx, frogol.Slug)

	return link, nil
}

// GetLink retrieves a single link.
func (s *FrogolService) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	return s.linkRepo.GetByID(ctx, id)
}

// ListLinks returns every link of a page for the owner's dashboard,
// hidden ones included.
func (s *FrogolService) ListLinks(ctx context.Context, frogolID string) ([]*domain.Link, error) {
	return s.linkRepo.ListAll(ctx, frogolID)
}

// UpdateLink changes a link's url and label, normalizing the url.
func (s *FrogolService) UpdateLink(ctx context.Context, id, rawURL, label string) (*domain.Link, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: link label must not be empty", domain.ErrInvalidInput)
	}

	url := normalize.URL(rawURL)
	if url == "" {
		return nil, fmt.Errorf("%w: link url must not be empty", domain.ErrInvalidInput)
	}

	link, err := s.linkRepo.Update(ctx, id, url, label)
	if err != nil {
		return nil, err
	}

	s.invalidateLinkProfile(ctx, link.FrogolID)

	return link, nil
}

// SetLinkActive toggles a link's visibility on the public page.
func (s *FrogolService) SetLinkActive(ctx context.Context, id string, active bool) error {
	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.linkRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.invalidateLinkProfile(ctx, link.FrogolID)

	return nil
}

// DeleteLink removes a link.
func (s *FrogolService) DeleteLink(ctx context.Context, id string) error {
	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.linkRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateLinkProfile(ctx, link.FrogolID)

	return nil
}

// invalidateLinkProfile invalidates the cached profile of the page owning a
// link, looking the page up by id for its slug.
func (s *FrogolService) invalidateLinkProfile(ctx context.Context, frogolID string) {
	frogol, err := s.frogolRepo.GetByID(ctx, frogolID)
	if err != nil {
		fmt.Printf("Warning: failed to resolve page for cache invalidation: %v\n", err)
		return
	}
	s.invalidateProfile(ctx, frogol.Slug)
}

// ReorderLinks applies a requested link ordering to a page.
//
// The page is identified by the first requested id - the reorder is scoped
// to whatever page that link belongs to. The requested list is tolerant
// input: duplicates keep their first occurrence, ids that don't belong to
// the page's active links are dropped, and active links the request omits
// keep their relative order at the end. An empty request is a no-op.
func (s *FrogolService) ReorderLinks(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	first, err := s.linkRepo.GetByID(ctx, orderedIDs[0])
	if err != nil {
		return err
	}

	existing, err := s.linkRepo.ListActive(ctx, first.FrogolID)
	if err != nil {
		return fmt.Errorf("failed to load links: %w", err)
	}

	resolved := resolveLinkOrder(orderedIDs, existing)

	if err := s.linkRepo.ReassignSortOrders(ctx, first.FrogolID, resolved); err != nil {
		return err
	}

	s.invalidateLinkProfile(ctx, first.FrogolID)

	return nil
}

// resolveLinkOrder turns a requested id ordering into the full final order:
// deduplicated requested ids that exist in the active set first, then every
// remaining active link in its current order. The result always contains
// each active link exactly once.
func resolveLinkOrder(requested []string, existing []*domain.Link) []string {
	existingSet := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		existingSet[l.ID] = struct{}{}
	}

	resolved := make([]string, 0, len(existing))
	seen := make(map[string]struct{}, len(requested))

	for _, id := range requested {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := existingSet[id]; !ok {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, id)
	}

	for _, l := range existing {
		if _, ok := seen[l.ID]; !ok {
			resolved = append(resolved, l.ID)
		}
	}

	return resolved
}

// ==================== ANALYTICS ====================

// RecordClick records a click event for a link.
// ipAddress and userAgent are nil when the request didn't carry them; a
// nil IP still counts toward the total but never toward unique visitors.
func (s *FrogolService) RecordClick(ctx context.Context, linkID string, ipAddress, userAgent *string) error {
	click := domain.NewClick(uuid.New().String(), linkID, ipAddress, userAgent)

	if err := s.clickRepo.Create(ctx, click); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	metrics.RecordClickRecorded()

	return nil
}

// GetClickStats returns total and unique-visitor click counts for a page.
func (s *FrogolService) GetClickStats(ctx context.Context, frogolID string) (*domain.ClickStats, error) {
	return s.clickRepo.StatsByFrogol(ctx, frogolID)
}

// ClicksPerLink returns per-link click counts for a page. Every link of the
// page appears in the map, zero-clicked ones included.
func (s *FrogolService) ClicksPerLink(ctx context.Context, frogolID string) (map[string]int64, error) {
	return s.clickRepo.CountPerLink(ctx, frogolID)
}

// GetUserAnalytics returns cross-page totals and top pages for a user.
func (s *FrogolService) GetUserAnalytics(ctx context.Context, userID string) (*domain.UserAnalytics, error) {
	return s.frogolRepo.UserAnalytics(ctx, userID)
}
