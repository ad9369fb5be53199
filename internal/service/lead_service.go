package service

import (
	"context"
	"fmt"

	"frogol/internal/domain"
	"frogol/internal/metrics"
	"frogol/internal/repository"
	"frogol/pkg/normalize"

	"github.com/google/uuid"
)

// LeadService handles business logic for visitor lead capture.
type LeadService struct {
	leadRepo   repository.LeadRepository
	frogolRepo repository.FrogolRepository
}

// NewLeadService creates a new lead service
func NewLeadService(leadRepo repository.LeadRepository, frogolRepo repository.FrogolRepository) *LeadService {
	return &LeadService{
		leadRepo:   leadRepo,
		frogolRepo: frogolRepo,
	}
}

// CaptureLead records a visitor lead on a page. The quality score is derived
// from the traffic source at capture time and stored with the lead, so later
// changes to the scoring table never rewrite history.
func (s *LeadService) CaptureLead(ctx context.Context, frogolID, email string, source, message *string) (*domain.Lead, error) {
	if err := normalize.Email(email); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// The page must exist - leads on a deleted page would be orphans.
	if _, err := s.frogolRepo.GetByID(ctx, frogolID); err != nil {
		return nil, err
	}

	lead := domain.NewLead(uuid.New().String(), frogolID, email, source, message)

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to capture lead: %w", err)
	}

	metrics.RecordLeadCaptured()

	return lead, nil
}

// GetLead retrieves a single lead.
func (s *LeadService) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return s.leadRepo.GetByID(ctx, id)
}

// ListLeads returns a page's captured leads, newest first.
func (s *LeadService) ListLeads(ctx context.Context, frogolID string) ([]*domain.Lead, error) {
	return s.leadRepo.ListByFrogol(ctx, frogolID)
}

// UpdateLead lets the owner correct a captured lead. Email is always
// replaced; source, score and message only when provided. A provided source
// does NOT recompute the score - the stored score is what the owner sees and
// may itself be overridden explicitly.
func (s *LeadService) UpdateLead(ctx context.Context, id, email string, source *string, score *int64, message *string) (*domain.Lead, error) {
	if err := normalize.Email(email); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return s.leadRepo.Update(ctx, id, email, source, score, message)
}

// DeleteLead removes a lead.
func (s *LeadService) DeleteLead(ctx context.Context, id string) error {
	return s.leadRepo.Delete(ctx, id)
}
