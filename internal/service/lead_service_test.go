package service

import (
	"context"
	"testing"

	"frogol/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLeadService() (*LeadService, *MockLeadRepository, *MockFrogolRepository) {
	mockLeadRepo := new(MockLeadRepository)
	mockFrogolRepo := new(MockFrogolRepository)
	svc := NewLeadService(mockLeadRepo, mockFrogolRepo)
	return svc, mockLeadRepo, mockFrogolRepo
}

func TestCaptureLead_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockLeadRepo, mockFrogolRepo := newLeadService()

	source := "direct"
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1"}, nil)
	mockLeadRepo.On("Create", ctx, mock.AnythingOfType("*domain.Lead")).Return(nil)

	// Act
	lead, err := svc.CaptureLead(ctx, "f1", "visitor@example.com", &source, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "visitor@example.com", lead.Email)
	require.NotNil(t, lead.Score)
	assert.Equal(t, int64(100), *lead.Score)
	mockLeadRepo.AssertExpectations(t)
}

func TestCaptureLead_InvalidEmail(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockLeadRepo, _ := newLeadService()

	// Act
	lead, err := svc.CaptureLead(ctx, "f1", "not-an-email", nil, nil)

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, lead)
	mockLeadRepo.AssertNotCalled(t, "Create")
}

func TestCaptureLead_PageMissing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockLeadRepo, mockFrogolRepo := newLeadService()

	mockFrogolRepo.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

	// Act
	lead, err := svc.CaptureLead(ctx, "ghost", "visitor@example.com", nil, nil)

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, lead)
	mockLeadRepo.AssertNotCalled(t, "Create")
}

func TestScoreForSource_TableDriven(t *testing.T) {
	direct := "direct"
	referral := "referral"
	social := "social"
	newsletter := "newsletter"

	tests := []struct {
		name     string
		source   *string
		expected int64
	}{
		{name: "Direct traffic", source: &direct, expected: 100},
		{name: "Referral traffic", source: &referral, expected: 90},
		{name: "Social traffic", source: &social, expected: 80},
		{name: "Unknown source gets baseline", source: &newsletter, expected: 70},
		{name: "Absent source gets baseline", source: nil, expected: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ScoreForSource(tt.source))
		})
	}
}

func TestUpdateLead_DoesNotRecomputeScore(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockLeadRepo, _ := newLeadService()

	social := "social"
	storedScore := int64(100)
	updated := &domain.Lead{ID: "le1", Email: "v@example.com", Source: &social, Score: &storedScore}

	// Source changes but score stays what was stored at capture time
	mockLeadRepo.On("Update", ctx, "le1", "v@example.com", &social, (*int64)(nil), (*string)(nil)).Return(updated, nil)

	// Act
	lead, err := svc.UpdateLead(ctx, "le1", "v@example.com", &social, nil, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(100), *lead.Score)
	mockLeadRepo.AssertExpectations(t)
}

func TestDeleteLead(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockLeadRepo, _ := newLeadService()

	mockLeadRepo.On("Delete", ctx, "le1").Return(nil)

	// Act
	err := svc.DeleteLead(ctx, "le1")

	// Assert
	require.NoError(t, err)
	mockLeadRepo.AssertExpectations(t)
}
