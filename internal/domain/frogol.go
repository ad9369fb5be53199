package domain

import "time"

// Frogol represents a user's public link-in-bio page.
// This is our domain model - it contains both data AND behavior (methods).
// The slug is the page's URL path segment and is unique across the system.
type Frogol struct {
	ID          string     // UUID for internal identification
	UserID      string     // Owner of the page
	Slug        string     // Canonical URL path segment (e.g., "frogol.io/{slug}")
	DisplayName *string    // Optional public title (pointer = nullable)
	Theme       *string    // Optional theme name
	AvatarURL   *string    // Optional avatar image URL
	Bio         *string    // Optional short biography
	CreatedAt   time.Time  // When the page was created
}

// NewFrogol is a constructor function that creates a new page with sensible
// defaults. The caller supplies an already-normalized slug.
func NewFrogol(id, userID, slug string, displayName string) *Frogol {
	f := &Frogol{
		ID:        id,
		UserID:    userID,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	if displayName != "" {
		f.DisplayName = &displayName
	}
	return f
}

// Title returns the display name, falling back to a generic label when the
// owner never set one. Templates and summaries use this instead of handling
// the nil case everywhere.
func (f *Frogol) Title() string {
	if f.DisplayName != nil && *f.DisplayName != "" {
		return *f.DisplayName
	}
	return "Frogol"
}

// FrogolSummary is a dashboard row: one page plus its aggregate counts.
// Counts come from a single grouped query, not from loading the child rows.
type FrogolSummary struct {
	ID          string
	Slug        string
	DisplayName string
	TotalLinks  int64
	TotalLeads  int64
	TotalClicks int64
	CreatedAt   time.Time
}

// PublicProfile is the assembled public view of a page: the page itself plus
// its active links in display order. This is the unit the cache stores, so a
// cache hit serves the whole page without touching the database.
type PublicProfile struct {
	Frogol *Frogol
	Links  []*Link
}

// UserAnalytics aggregates activity across every page a user owns.
type UserAnalytics struct {
	TotalFrogols int64
	TotalLinks   int64
	TotalLeads   int64
	TotalClicks  int64
	// TopFrogols holds up to five pages ranked by clicks, then leads.
	TopFrogols []FrogolSummary
}
