package service

import (
	"context"

	"frogol/internal/domain"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================
// Shared mock implementations of the repository interfaces and the cache,
// used by every service test in this package.

// MockFrogolRepository is a mock implementation of FrogolRepository
type MockFrogolRepository struct {
	mock.Mock
}

func (m *MockFrogolRepository) Create(ctx context.Context, frogol *domain.Frogol) error {
	args := m.Called(ctx, frogol)
	return args.Error(0)
}

func (m *MockFrogolRepository) GetBySlug(ctx context.Context, slug string) (*domain.Frogol, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Frogol), args.Error(1)
}

func (m *MockFrogolRepository) GetByID(ctx context.Context, id string) (*domain.Frogol, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Frogol), args.Error(1)
}

func (m *MockFrogolRepository) ListByUser(ctx context.Context, userID string) ([]domain.FrogolSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FrogolSummary), args.Error(1)
}

func (m *MockFrogolRepository) Update(ctx context.Context, id, displayName, theme string, avatarURL, bio *string) (*domain.Frogol, error) {
	args := m.Called(ctx, id, displayName, theme, avatarURL, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Frogol), args.Error(1)
}

func (m *MockFrogolRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) (*domain.Frogol, error) {
	args := m.Called(ctx, id, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Frogol), args.Error(1)
}

func (m *MockFrogolRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFrogolRepository) UserAnalytics(ctx context.Context, userID string) (*domain.UserAnalytics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAnalytics), args.Error(1)
}

// MockLinkRepository is a mock implementation of LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id string) (*domain.Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) ListActive(ctx context.Context, frogolID string) ([]*domain.Link, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) ListAll(ctx context.Context, frogolID string) ([]*domain.Link, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) NextSortOrder(ctx context.Context, frogolID string) (int64, error) {
	args := m.Called(ctx, frogolID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLinkRepository) Update(ctx context.Context, id, url, label string) (*domain.Link, error) {
	args := m.Called(ctx, id, url, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockLinkRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLinkRepository) ReassignSortOrders(ctx context.Context, frogolID string, orderedIDs []string) error {
	args := m.Called(ctx, frogolID, orderedIDs)
	return args.Error(0)
}

// MockClickRepository is a mock implementation of ClickRepository
type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) Create(ctx context.Context, click *domain.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockClickRepository) StatsByFrogol(ctx context.Context, frogolID string) (*domain.ClickStats, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickStats), args.Error(1)
}

func (m *MockClickRepository) CountPerLink(ctx context.Context, frogolID string) (map[string]int64, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListByFrogol(ctx context.Context, frogolID string) ([]*domain.Lead, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id, email string, source *string, score *int64, message *string) (*domain.Lead, error) {
	args := m.Called(ctx, id, email, source, score, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUserRepository) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockUserRepository) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockAvatarImageRepository is a mock implementation of AvatarImageRepository
type MockAvatarImageRepository struct {
	mock.Mock
}

func (m *MockAvatarImageRepository) Create(ctx context.Context, image *domain.AvatarImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockAvatarImageRepository) Latest(ctx context.Context, frogolID string) (*domain.AvatarImage, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvatarImage), args.Error(1)
}

func (m *MockAvatarImageRepository) ListByFrogol(ctx context.Context, frogolID string) ([]*domain.AvatarImage, error) {
	args := m.Called(ctx, frogolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AvatarImage), args.Error(1)
}

func (m *MockAvatarImageRepository) DeleteByFrogol(ctx context.Context, frogolID string) error {
	args := m.Called(ctx, frogolID)
	return args.Error(0)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProfile(ctx context.Context, slug string) (*domain.PublicProfile, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublicProfile), args.Error(1)
}

func (m *MockCache) SetProfile(ctx context.Context, slug string, profile *domain.PublicProfile) error {
	args := m.Called(ctx, slug, profile)
	return args.Error(0)
}

func (m *MockCache) DeleteProfile(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}
