package domain

import "time"

// Lead is an email capture submitted by a visitor on a public page.
type Lead struct {
	ID        string    // UUID
	FrogolID  string    // Page the lead was captured on
	Email     string    // Visitor email
	Source    *string   // Where the visitor came from ("direct", "social", ...)
	Score     *int64    // Computed quality score
	Message   *string   // Optional free-form message
	CreatedAt time.Time // When the lead was captured
}

// NewLead creates a lead with its score already computed from the source.
func NewLead(id, frogolID, email string, source, message *string) *Lead {
	score := ScoreForSource(source)
	return &Lead{
		ID:        id,
		FrogolID:  frogolID,
		Email:     email,
		Source:    source,
		Score:     &score,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// ScoreForSource maps a lead source to a quality score.
// Total function: unknown and absent sources fall through to the baseline.
func ScoreForSource(source *string) int64 {
	if source == nil {
		return 70
	}
	switch *source {
	case "direct":
		return 100
	case "referral":
		return 90
	case "social":
		return 80
	default:
		return 70
	}
}
