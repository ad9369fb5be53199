package domain

import "time"

// Click represents a single click-through event for analytics.
// It is append-only: never mutated or individually deleted, only bulk-removed
// by the store cascade when the owning link or page is deleted.
type Click struct {
	ID        string    // UUID
	LinkID    string    // Foreign key to Link
	IPAddress *string   // Visitor IP, when known (pointer = nullable)
	UserAgent *string   // Browser/client information, when known
	CreatedAt time.Time // When the click occurred
}

// NewClick creates a new click event. IP and user agent are optional.
func NewClick(id, linkID string, ipAddress, userAgent *string) *Click {
	return &Click{
		ID:        id,
		LinkID:    linkID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
}

// ClickStats are the page-level aggregates shown on the dashboard.
type ClickStats struct {
	// TotalClicks counts every click event on the page's links.
	TotalClicks int64
	// UniqueClicks counts distinct non-null visitor IPs. Events recorded
	// without an IP contribute to TotalClicks but not here.
	UniqueClicks int64
}
