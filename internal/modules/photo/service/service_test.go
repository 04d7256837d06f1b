package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	photoDto "octofit.app/tracker/internal/modules/photo/dto"
	photoRepo "octofit.app/tracker/internal/modules/photo/repository"
	userRepo "octofit.app/tracker/internal/modules/user/repository"
	"octofit.app/tracker/internal/testutil"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/storage"
)

type memoryStorage struct {
	folders []string
	deleted []string
	fail    error
}

func (m *memoryStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (*storage.UploadedImage, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	m.folders = append(m.folders, folder)
	id := folder + "/" + strings.TrimSuffix(fileName, ".jpg")
	return &storage.UploadedImage{URL: "https://res.cloudinary.com/demo/image/upload/v1/" + id + ".webp", PublicID: id}, nil
}

func (m *memoryStorage) DeleteImage(_ context.Context, ref string) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

func jpeg() photoDto.PhotoFile {
	return photoDto.PhotoFile{Reader: strings.NewReader("fake image"), FileName: "day1.jpg"}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestUploadStoresUnderUserFolder(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "flexer", nil)
	store := &memoryStorage{}
	svc := NewPhotoService(photoRepo.NewPhotoRepository(db), userRepo.NewUserRepository(db), store)
	ctx := context.Background()

	res, err := svc.Upload(ctx, user.ID, jpeg(), photoDto.UploadPhotoInput{Caption: "<b>Week 1</b>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"progress_photos/flexer"}, store.folders)
	assert.Equal(t, "Week 1", res.Caption)

	photos, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, res.ID, photos[0].ID)
}

func TestUploadWithoutStorage(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "nostore", nil)
	svc := NewPhotoService(photoRepo.NewPhotoRepository(db), userRepo.NewUserRepository(db), nil)

	_, err := svc.Upload(context.Background(), user.ID, jpeg(), photoDto.UploadPhotoInput{})
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))

	svc = NewPhotoService(photoRepo.NewPhotoRepository(db), userRepo.NewUserRepository(db), &memoryStorage{fail: storage.ErrNotConfigured})
	_, err = svc.Upload(context.Background(), user.ID, jpeg(), photoDto.UploadPhotoInput{})
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner", nil)
	other := testutil.CreateUser(t, db, "other", nil)
	store := &memoryStorage{}
	svc := NewPhotoService(photoRepo.NewPhotoRepository(db), userRepo.NewUserRepository(db), store)
	ctx := context.Background()

	res, err := svc.Upload(ctx, owner.ID, jpeg(), photoDto.UploadPhotoInput{})
	require.NoError(t, err)

	err = svc.Delete(ctx, other.ID, res.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	require.NoError(t, svc.Delete(ctx, owner.ID, res.ID))
	assert.Equal(t, []string{"progress_photos/owner/day1"}, store.deleted)

	err = svc.Delete(ctx, owner.ID, res.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	err = svc.Delete(ctx, owner.ID, uuid.New())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
