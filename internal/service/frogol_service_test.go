package service

import (
	"context"
	"testing"

	"frogol/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFrogolService() (*FrogolService, *MockFrogolRepository, *MockLinkRepository, *MockClickRepository, *MockCache) {
	mockFrogolRepo := new(MockFrogolRepository)
	mockLinkRepo := new(MockLinkRepository)
	mockClickRepo := new(MockClickRepository)
	mockCache := new(MockCache)
	svc := NewFrogolService(mockFrogolRepo, mockLinkRepo, mockClickRepo, mockCache)
	return svc, mockFrogolRepo, mockLinkRepo, mockClickRepo, mockCache
}

// ==================== PAGE TESTS ====================

func TestCreateFrogol_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, _ := newFrogolService()

	mockFrogolRepo.On("GetBySlug", ctx, "my-page").Return(nil, domain.ErrNotFound)
	mockFrogolRepo.On("Create", ctx, mock.AnythingOfType("*domain.Frogol")).Return(nil)

	// Act
	frogol, err := svc.CreateFrogol(ctx, "user1", "My Page", "My Page")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "my-page", frogol.Slug)
	assert.Equal(t, "user1", frogol.UserID)
	assert.NotEmpty(t, frogol.ID)
	mockFrogolRepo.AssertExpectations(t)
}

func TestCreateFrogol_ThenGetProfileBySlugRoundTrips(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockLinkRepo, _, mockCache := newFrogolService()

	// The availability check during create sees a free slug
	mockFrogolRepo.On("GetBySlug", ctx, "my-page").Return(nil, domain.ErrNotFound).Once()

	var created *domain.Frogol
	mockFrogolRepo.On("Create", ctx, mock.AnythingOfType("*domain.Frogol")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Frogol) }).
		Return(nil)

	// Act: create, then fetch the public profile by the generated slug
	frogol, err := svc.CreateFrogol(ctx, "user1", "My Page!", "My Page")
	require.NoError(t, err)

	mockCache.On("GetProfile", ctx, "my-page").Return(nil, nil)
	mockFrogolRepo.On("GetBySlug", ctx, "my-page").Return(created, nil).Once()
	mockLinkRepo.On("ListActive", ctx, created.ID).Return([]*domain.Link{}, nil)
	mockCache.On("SetProfile", ctx, "my-page", mock.Anything).Return(nil)

	profile, err := svc.GetProfile(ctx, "my-page")

	// Assert: the fetch returns exactly the page that was created
	require.NoError(t, err)
	assert.Same(t, frogol, profile.Frogol)
	assert.Equal(t, "my-page", profile.Frogol.Slug)
	assert.Equal(t, "user1", profile.Frogol.UserID)
	mockFrogolRepo.AssertExpectations(t)
}

func TestCreateFrogol_NormalizesURLLikeInput(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, _ := newFrogolService()

	mockFrogolRepo.On("GetBySlug", ctx, "example-com").Return(nil, domain.ErrNotFound)
	mockFrogolRepo.On("Create", ctx, mock.AnythingOfType("*domain.Frogol")).Return(nil)

	// Act
	frogol, err := svc.CreateFrogol(ctx, "user1", "HTTPS://WWW.Example.com/about", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "example-com", frogol.Slug)
}

func TestCreateFrogol_SlugTaken(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, _ := newFrogolService()

	existing := &domain.Frogol{ID: "f1", Slug: "taken"}
	mockFrogolRepo.On("GetBySlug", ctx, "taken").Return(existing, nil)

	// Act
	frogol, err := svc.CreateFrogol(ctx, "user1", "taken", "")

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, frogol)
	mockFrogolRepo.AssertNotCalled(t, "Create")
}

func TestCreateFrogol_ReservedSlug(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, _ := newFrogolService()

	// Act
	frogol, err := svc.CreateFrogol(ctx, "user1", "Login", "")

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, frogol)
	// Normalization rejects before any repository access
	mockFrogolRepo.AssertNotCalled(t, "GetBySlug")
	mockFrogolRepo.AssertNotCalled(t, "Create")
}

func TestCreateFrogol_SlugCheckFails(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, _ := newFrogolService()

	// A store failure on the availability check must not be treated as
	// "slug free" - the create is refused.
	mockFrogolRepo.On("GetBySlug", ctx, "my-page").Return(nil, assert.AnError)

	// Act
	frogol, err := svc.CreateFrogol(ctx, "user1", "my-page", "")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, frogol)
	mockFrogolRepo.AssertNotCalled(t, "Create")
}

func TestGetProfile_CacheHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockLinkRepo, _, mockCache := newFrogolService()

	cached := &domain.PublicProfile{
		Frogol: &domain.Frogol{ID: "f1", Slug: "my-page"},
		Links:  []*domain.Link{{ID: "l1", URL: "https://example.com", Label: "Example"}},
	}

	// Mock: cache hit
	mockCache.On("GetProfile", ctx, "my-page").Return(cached, nil)

	// Act
	profile, err := svc.GetProfile(ctx, "my-page")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cached, profile)
	mockCache.AssertExpectations(t)
	// Database should NOT be called (cache hit)
	mockFrogolRepo.AssertNotCalled(t, "GetBySlug")
	mockLinkRepo.AssertNotCalled(t, "ListActive")
}

func TestGetProfile_CacheMiss_DatabaseHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockLinkRepo, _, mockCache := newFrogolService()

	frogol := &domain.Frogol{ID: "f1", Slug: "my-page"}
	links := []*domain.Link{
		{ID: "l1", FrogolID: "f1", SortOrder: 0, IsActive: true},
		{ID: "l2", FrogolID: "f1", SortOrder: 1, IsActive: true},
	}

	// Mock: cache miss, database hit, then populate cache
	mockCache.On("GetProfile", ctx, "my-page").Return(nil, nil)
	mockFrogolRepo.On("GetBySlug", ctx, "my-page").Return(frogol, nil)
	mockLinkRepo.On("ListActive", ctx, "f1").Return(links, nil)
	mockCache.On("SetProfile", ctx, "my-page", mock.AnythingOfType("*domain.PublicProfile")).Return(nil)

	// Act
	profile, err := svc.GetProfile(ctx, "my-page")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, frogol, profile.Frogol)
	assert.Len(t, profile.Links, 2)
	mockCache.AssertExpectations(t)
	mockFrogolRepo.AssertExpectations(t)
}

func TestGetProfile_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, mockCache := newFrogolService()

	mockCache.On("GetProfile", ctx, "ghost").Return(nil, nil)
	mockFrogolRepo.On("GetBySlug", ctx, "ghost").Return(nil, domain.ErrNotFound)

	// Act
	profile, err := svc.GetProfile(ctx, "ghost")

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, profile)
}

func TestUpdateFrogol_InvalidatesCache(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, mockCache := newFrogolService()

	updated := &domain.Frogol{ID: "f1", Slug: "my-page"}
	mockFrogolRepo.On("Update", ctx, "f1", "New Name", "dark", (*string)(nil), (*string)(nil)).Return(updated, nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Act
	frogol, err := svc.UpdateFrogol(ctx, "f1", "New Name", "dark", nil, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, updated, frogol)
	mockCache.AssertExpectations(t)
}

func TestDeleteFrogol_InvalidatesCache(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, _, _, mockCache := newFrogolService()

	frogol := &domain.Frogol{ID: "f1", Slug: "my-page"}
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(frogol, nil)
	mockFrogolRepo.On("Delete", ctx, "f1").Return(nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Act
	err := svc.DeleteFrogol(ctx, "f1")

	// Assert
	require.NoError(t, err)
	mockFrogolRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// ==================== LINK TESTS ====================

func TestAddLink_NormalizesURLAndAppends(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockLinkRepo, _, mockCache := newFrogolService()

	frogol := &domain.Frogol{ID: "f1", Slug: "my-page"}
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(frogol, nil)
	mockLinkRepo.On("NextSortOrder", ctx, "f1").Return(int64(3), nil)
	mockLinkRepo.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Act
	link, err := svc.AddLink(ctx, "f1", "example.com/shop", "Shop")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/shop", link.URL)
	assert.Equal(t, int64(3), link.SortOrder)
	assert.True(t, link.IsActive)
	assert.Equal(t, domain.KindLink, link.Kind)
	mockLinkRepo.AssertExpectations(t)
}

func TestAddLink_EmptyLabel(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, mockLinkRepo, _, _ := newFrogolService()

	// Act
	link, err := svc.AddLink(ctx, "f1", "example.com", "")

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, link)
	mockLinkRepo.AssertNotCalled(t, "Create")
}

// ==================== REORDER TESTS ====================

func TestReorderLinks_EmptyRequestIsNoOp(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, mockLinkRepo, _, _ := newFrogolService()

	// Act
	err := svc.ReorderLinks(ctx, nil)

	// Assert
	require.NoError(t, err)
	// Nothing should be touched at all
	mockLinkRepo.AssertNotCalled(t, "GetByID")
	mockLinkRepo.AssertNotCalled(t, "ReassignSortOrders")
}

func TestReorderLinks_PartialRequestAppendsRemainder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockLinkRepo, _, mockCache := newFrogolService()

	active := []*domain.Link{
		{ID: "A", FrogolID: "f1", SortOrder: 0, IsActive: true},
		{ID: "B", FrogolID: "f1", SortOrder: 1, IsActive: true},
		{ID: "C", FrogolID: "f1", SortOrder: 2, IsActive: true},
	}

	mockLinkRepo.On("GetByID", ctx, "C").Return(active[2], nil)
	mockLinkRepo.On("ListActive", ctx, "f1").Return(active, nil)
	// Requested [C, A] -> final order [C, A, B]: omitted links keep their
	// relative order at the end
	mockLinkRepo.On("ReassignSortOrders", ctx, "f1", []string{"C", "A", "B"}).Return(nil)
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1", Slug: "my-page"}, nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Act
	err := svc.ReorderLinks(ctx, []string{"C", "A"})

	// Assert
	require.NoError(t, err)
	mockLinkRepo.AssertExpectations(t)
}

func TestReorderLinks_DropsDuplicatesAndForeignIDs(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockLinkRepo, _, mockCache := newFrogolService()

	active := []*domain.Link{
		{ID: "A", FrogolID: "f1", SortOrder: 0, IsActive: true},
		{ID: "B", FrogolID: "f1", SortOrder: 1, IsActive: true},
	}

	mockLinkRepo.On("GetByID", ctx, "B").Return(active[1], nil)
	mockLinkRepo.On("ListActive", ctx, "f1").Return(active, nil)
	// Duplicate B keeps its first occurrence; "X" belongs to no active link
	// and is dropped
	mockLinkRepo.On("ReassignSortOrders", ctx, "f1", []string{"B", "A"}).Return(nil)
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1", Slug: "my-page"}, nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Act
	err := svc.ReorderLinks(ctx, []string{"B", "X", "B", "A"})

	// Assert
	require.NoError(t, err)
	mockLinkRepo.AssertExpectations(t)
}

func TestReorderLinks_FirstIDUnknown(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, mockLinkRepo, _, _ := newFrogolService()

	mockLinkRepo.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

	// Act
	err := svc.ReorderLinks(ctx, []string{"ghost"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockLinkRepo.AssertNotCalled(t, "ReassignSortOrders")
}

func TestResolveLinkOrder_TableDriven(t *testing.T) {
	existing := []*domain.Link{
		{ID: "A"}, {ID: "B"}, {ID: "C"},
	}

	tests := []struct {
		name      string
		requested []string
		expected  []string
	}{
		{
			name:      "Full reorder",
			requested: []string{"C", "B", "A"},
			expected:  []string{"C", "B", "A"},
		},
		{
			name:      "Partial request appends remainder in current order",
			requested: []string{"B"},
			expected:  []string{"B", "A", "C"},
		},
		{
			name:      "Duplicates keep first occurrence",
			requested: []string{"A", "A", "B"},
			expected:  []string{"A", "B", "C"},
		},
		{
			name:      "Unknown ids dropped",
			requested: []string{"Z", "C"},
			expected:  []string{"C", "A", "B"},
		},
		{
			name:      "Everything unknown falls back to current order",
			requested: []string{"X", "Y"},
			expected:  []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveLinkOrder(tt.requested, existing))
		})
	}
}

// ==================== ANALYTICS TESTS ====================

func TestRecordClick_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, _, mockClickRepo, _ := newFrogolService()

	ip := "192.168.1.1"
	ua := "Mozilla/5.0"

	mockClickRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Click) bool {
		return c.LinkID == "l1" && c.IPAddress != nil && *c.IPAddress == ip
	})).Return(nil)

	// Act
	err := svc.RecordClick(ctx, "l1", &ip, &ua)

	// Assert
	require.NoError(t, err)
	mockClickRepo.AssertExpectations(t)
}

func TestRecordClick_NilIPAndAgent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, _, mockClickRepo, _ := newFrogolService()

	mockClickRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Click) bool {
		return c.LinkID == "l1" && c.IPAddress == nil && c.UserAgent == nil
	})).Return(nil)

	// Act
	err := svc.RecordClick(ctx, "l1", nil, nil)

	// Assert
	require.NoError(t, err)
	mockClickRepo.AssertExpectations(t)
}

func TestClicksPerLink_IncludesZeroClickedLinks(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, _, mockClickRepo, _ := newFrogolService()

	counts := map[string]int64{"l1": 5, "l2": 0}
	mockClickRepo.On("CountPerLink", ctx, "f1").Return(counts, nil)

	// Act
	result, err := svc.ClicksPerLink(ctx, "f1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(5), result["l1"])
	// Zero-clicked links are present, not missing
	count, ok := result["l2"]
	assert.True(t, ok)
	assert.Equal(t, int64(0), count)
}

func TestGetClickStats(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, _, mockClickRepo, _ := newFrogolService()

	stats := &domain.ClickStats{TotalClicks: 12, UniqueClicks: 7}
	mockClickRepo.On("StatsByFrogol", ctx, "f1").Return(stats, nil)

	// Act
	result, err := svc.GetClickStats(ctx, "f1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.TotalClicks)
	assert.Equal(t, int64(7), result.UniqueClicks)
}
