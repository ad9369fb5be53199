package repository

import (
	"context"

	"frogol/internal/domain"
)

// FrogolRepository defines the interface for page data access.
// This is the "Repository Pattern" - it abstracts data storage so the
// service layer can be tested against mocks and the store swapped without
// touching business logic.
type FrogolRepository interface {
	// Create inserts a new page. The slug UNIQUE constraint is the
	// authoritative duplicate guard; a violation surfaces as an error here.
	Create(ctx context.Context, frogol *domain.Frogol) error

	// GetBySlug retrieves a page by its slug (the public lookup path).
	GetBySlug(ctx context.Context, slug string) (*domain.Frogol, error)

	// GetByID retrieves a page by its UUID.
	GetByID(ctx context.Context, id string) (*domain.Frogol, error)

	// ListByUser returns dashboard summaries (page + aggregate counts) for
	// every page the user owns, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.FrogolSummary, error)

	// Update modifies display name and theme; avatar URL and bio are only
	// overwritten when non-nil (COALESCE semantics). Returns the new row.
	Update(ctx context.Context, id, displayName, theme string, avatarURL, bio *string) (*domain.Frogol, error)

	// UpdateAvatarURL sets just the avatar URL and returns the new row.
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) (*domain.Frogol, error)

	// Delete removes a page. The store cascades to its links, leads,
	// clicks and avatar image rows.
	Delete(ctx context.Context, id string) error

	// UserAnalytics computes cross-page totals and the top performing
	// pages for a user.
	UserAnalytics(ctx context.Context, userID string) (*domain.UserAnalytics, error)
}

// LinkRepository defines the interface for link data access.
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error

	GetByID(ctx context.Context, id string) (*domain.Link, error)

	// ListActive returns a page's visible links ordered by (sort_order, id).
	ListActive(ctx context.Context, frogolID string) ([]*domain.Link, error)

	// ListAll returns every link of a page, active or not, same ordering.
	ListAll(ctx context.Context, frogolID string) ([]*domain.Link, error)

	// NextSortOrder returns MAX(sort_order)+1 for the page, 0 when empty.
	NextSortOrder(ctx context.Context, frogolID string) (int64, error)

	// Update changes url and label, returning the new row.
	Update(ctx context.Context, id, url, label string) (*domain.Link, error)

	SetActive(ctx context.Context, id string, active bool) error

	// Delete hard-deletes a link; the store cascades its click events.
	Delete(ctx context.Context, id string) error

	// ReassignSortOrders rewrites sort_order = index for the given ids in a
	// single transaction. All updates commit or none do - a crash mid-reorder
	// must never leave a page with duplicate or gapped positions visible.
	ReassignSortOrders(ctx context.Context, frogolID string, orderedIDs []string) error
}

// ClickRepository defines the interface for analytics data access.
// Click events are append-only; there is no update or single delete.
type ClickRepository interface {
	Create(ctx context.Context, click *domain.Click) error

	// StatsByFrogol returns total and unique-IP click counts for a page.
	StatsByFrogol(ctx context.Context, frogolID string) (*domain.ClickStats, error)

	// CountPerLink returns click counts keyed by link id with left-join
	// semantics: every link of the page appears, zero-clicked ones included.
	CountPerLink(ctx context.Context, frogolID string) (map[string]int64, error)
}

// LeadRepository defines the interface for lead data access.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	ListByFrogol(ctx context.Context, frogolID string) ([]*domain.Lead, error)
	Update(ctx context.Context, id, email string, source *string, score *int64, message *string) (*domain.Lead, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for account and session data access.
// Lookup methods return (nil, nil) when no row matches - absence is an
// expected outcome on these paths, not an error.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)

	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AvatarImageRepository defines the interface for avatar metadata access.
type AvatarImageRepository interface {
	Create(ctx context.Context, image *domain.AvatarImage) error

	// Latest returns the most recent avatar row for a page, (nil, nil) when
	// the page has none.
	Latest(ctx context.Context, frogolID string) (*domain.AvatarImage, error)

	ListByFrogol(ctx context.Context, frogolID string) ([]*domain.AvatarImage, error)
	DeleteByFrogol(ctx context.Context, frogolID string) error
}
