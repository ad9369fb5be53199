package domain

// KindLink is the default kind for an outbound link entry.
const KindLink = "link"

// Link is an outbound URL entry on a page.
//
// SortOrder values for a page's links form a contiguous ascending sequence
// starting at 0; reads tie-break equal orders by id so the display order is
// stable even if a crash ever left duplicates behind.
type Link struct {
	ID        string // UUID
	FrogolID  string // Owning page
	URL       string // Absolute, http(s)-prefixed
	Label     string // Display text
	SortOrder int64  // Zero-based position within the page
	IsActive  bool   // Inactive links are hidden from the public page
	Kind      string // Entry kind, defaults to "link"
}

// NewLink creates an active link of the default kind at the given position.
func NewLink(id, frogolID, url, label string, sortOrder int64) *Link {
	return &Link{
		ID:        id,
		FrogolID:  frogolID,
		URL:       url,
		Label:     label,
		SortOrder: sortOrder,
		IsActive:  true,
		Kind:      KindLink,
	}
}
