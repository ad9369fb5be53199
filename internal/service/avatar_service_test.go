package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"frogol/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// pngHeader is the PNG magic number - enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newAvatarService(t *testing.T) (*AvatarService, *MockFrogolRepository, *MockAvatarImageRepository, *MockCache, string) {
	t.Helper()
	dir := t.TempDir()
	mockFrogolRepo := new(MockFrogolRepository)
	mockAvatarRepo := new(MockAvatarImageRepository)
	mockCache := new(MockCache)
	svc := NewAvatarService(mockFrogolRepo, mockAvatarRepo, mockCache, dir)
	return svc, mockFrogolRepo, mockAvatarRepo, mockCache, dir
}

func TestUploadAvatar_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, mockCache, dir := newAvatarService(t)

	frogol := &domain.Frogol{ID: "f1", Slug: "my-page"}
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(frogol, nil)
	mockAvatarRepo.On("Create", ctx, mock.AnythingOfType("*domain.AvatarImage")).Return(nil)
	mockFrogolRepo.On("UpdateAvatarURL", ctx, "f1", mock.MatchedBy(func(url string) bool {
		return filepath.Ext(url) == ".png"
	})).Return(frogol, nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	up := Upload{Filename: "me.png", ContentType: "image/png", Data: pngHeader}

	// Act
	updated, err := svc.UploadAvatar(ctx, "f1", up)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, frogol, updated)
	// Exactly one file landed on disk
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
	mockAvatarRepo.AssertExpectations(t)
}

func TestUploadAvatar_SniffsGenericContentType(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, mockCache, _ := newAvatarService(t)

	frogol := &domain.Frogol{ID: "f1", Slug: "my-page"}
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(frogol, nil)
	mockAvatarRepo.On("Create", ctx, mock.AnythingOfType("*domain.AvatarImage")).Return(nil)
	mockFrogolRepo.On("UpdateAvatarURL", ctx, "f1", mock.MatchedBy(func(url string) bool {
		return filepath.Ext(url) == ".png"
	})).Return(frogol, nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Client declared nothing useful - content sniffing must identify the PNG
	up := Upload{Filename: "blob", ContentType: "application/octet-stream", Data: pngHeader}

	// Act
	_, err := svc.UploadAvatar(ctx, "f1", up)

	// Assert
	require.NoError(t, err)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, _, dir := newAvatarService(t)

	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1", Slug: "my-page"}, nil)

	up := Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")}

	// Act
	updated, err := svc.UploadAvatar(ctx, "f1", up)

	// Assert
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, updated)
	// Nothing written to disk
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	mockAvatarRepo.AssertNotCalled(t, "Create")
}

func TestUploadAvatar_RejectsEmptyFile(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, _, _ := newAvatarService(t)

	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1", Slug: "my-page"}, nil)

	// Act
	updated, err := svc.UploadAvatar(ctx, "f1", Upload{Filename: "empty.png"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, updated)
	mockAvatarRepo.AssertNotCalled(t, "Create")
}

func TestUploadAvatar_CleansUpFileWhenRowInsertFails(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, _, dir := newAvatarService(t)

	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1", Slug: "my-page"}, nil)
	mockAvatarRepo.On("Create", ctx, mock.AnythingOfType("*domain.AvatarImage")).Return(assert.AnError)

	up := Upload{Filename: "me.png", ContentType: "image/png", Data: pngHeader}

	// Act
	updated, err := svc.UploadAvatar(ctx, "f1", up)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, updated)
	// The orphan file was removed again
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	mockFrogolRepo.AssertNotCalled(t, "UpdateAvatarURL")
}

func TestUploadAvatars_Batch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, mockCache, dir := newAvatarService(t)

	frogol := &domain.Frogol{ID: "f1", Slug: "my-page"}
	mockFrogolRepo.On("GetByID", ctx, "f1").Return(frogol, nil)
	// Saves run on the group's derived context, not the caller's
	mockAvatarRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AvatarImage")).Return(nil)

	var avatarURL string
	mockFrogolRepo.On("UpdateAvatarURL", ctx, "f1", mock.Anything).
		Run(func(args mock.Arguments) { avatarURL = args.String(2) }).
		Return(frogol, nil)
	mockCache.On("DeleteProfile", ctx, "my-page").Return(nil)

	// Distinct content so the winning file is identifiable on disk
	first := append(append([]byte{}, pngHeader...), 0x01)
	uploads := []Upload{
		{Filename: "a.png", ContentType: "image/png", Data: first},
		{Filename: "b.png", ContentType: "image/png", Data: pngHeader},
		{Filename: "c.png", ContentType: "image/png", Data: pngHeader},
	}

	// Act
	updated, err := svc.UploadAvatars(ctx, "f1", uploads)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, frogol, updated)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	mockAvatarRepo.AssertNumberOfCalls(t, "Create", 3)

	// The batch's first file is the one that became the current avatar,
	// regardless of which goroutine finished first
	filename := strings.TrimPrefix(avatarURL, "/static/avatars/")
	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, first, data)
}

func TestUploadAvatars_OneBadFileRejectsBatchBeforeWriting(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, mockFrogolRepo, mockAvatarRepo, _, dir := newAvatarService(t)

	mockFrogolRepo.On("GetByID", ctx, "f1").Return(&domain.Frogol{ID: "f1", Slug: "my-page"}, nil)

	uploads := []Upload{
		{Filename: "a.png", ContentType: "image/png", Data: pngHeader},
		{Filename: "evil.txt", ContentType: "text/plain", Data: []byte("nope")},
	}

	// Act
	updated, err := svc.UploadAvatars(ctx, "f1", uploads)

	// Assert
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, updated)
	// Up-front validation means not even the good file was written
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	mockAvatarRepo.AssertNotCalled(t, "Create")
}

func TestUploadAvatars_EmptyBatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, _, _, _ := newAvatarService(t)

	// Act
	updated, err := svc.UploadAvatars(ctx, "f1", nil)

	// Assert
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, updated)
}

func TestDeleteAvatars_RemovesFilesAndRows(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, mockAvatarRepo, _, dir := newAvatarService(t)

	images := []*domain.AvatarImage{
		{ID: "a1", FrogolID: "f1", Filename: "one.png"},
		{ID: "a2", FrogolID: "f1", Filename: "two.png"},
	}
	for _, img := range images {
		require.NoError(t, os.WriteFile(filepath.Join(dir, img.Filename), pngHeader, 0o644))
	}

	mockAvatarRepo.On("ListByFrogol", ctx, "f1").Return(images, nil)
	mockAvatarRepo.On("DeleteByFrogol", ctx, "f1").Return(nil)

	// Act
	err := svc.DeleteAvatars(ctx, "f1")

	// Assert
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	mockAvatarRepo.AssertExpectations(t)
}

func TestDeleteAvatars_MissingFileIsNotAnError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, _, mockAvatarRepo, _, _ := newAvatarService(t)

	// The row exists but the file is already gone - cleanup still succeeds
	images := []*domain.AvatarImage{{ID: "a1", FrogolID: "f1", Filename: "gone.png"}}
	mockAvatarRepo.On("ListByFrogol", ctx, "f1").Return(images, nil)
	mockAvatarRepo.On("DeleteByFrogol", ctx, "f1").Return(nil)

	// Act
	err := svc.DeleteAvatars(ctx, "f1")

	// Assert
	require.NoError(t, err)
	mockAvatarRepo.AssertExpectations(t)
}
