package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myancal/backend/config"
)

func newTestPhotoStorage(t *testing.T) *PhotoStorage {
	t.Helper()
	awsCfg := aws.Config{
		Region:      "ap-southeast-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
	client := config.NewS3ClientFromConfig(awsCfg, config.StorageConfig{Endpoint: "http://localhost:9000"})
	return NewPhotoStorage(s3.NewPresignClient(client), "meal-photos", 10*time.Minute)
}

func TestPresignUpload(t *testing.T) {
	storage := newTestPhotoStorage(t)
	photoID := uuid.MustParse("6f1c1a3e-0000-4000-8000-000000000001")
	storage.newID = func() uuid.UUID { return photoID }
	userID, mealID := uuid.New(), uuid.New()

	up, err := storage.PresignUpload(context.Background(), userID, mealID, "IMAGE/PNG")
	require.NoError(t, err)
	assert.Equal(t, "meals/"+userID.String()+"/"+mealID.String()+"/"+photoID.String()+".png", up.PhotoKey)
	assert.Equal(t, 600, up.ExpiresIn)

	u, err := url.Parse(up.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/meal-photos/"+up.PhotoKey, u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestPresignUploadContentTypes(t *testing.T) {
	storage := newTestPhotoStorage(t)
	ctx := context.Background()

	up, err := storage.PresignUpload(ctx, uuid.New(), uuid.New(), "")
	require.NoError(t, err)
	assert.Contains(t, up.PhotoKey, ".jpg")

	_, err = storage.PresignUpload(ctx, uuid.New(), uuid.New(), "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPresignView(t *testing.T) {
	storage := newTestPhotoStorage(t)

	raw, err := storage.PresignView(context.Background(), "meals/a/b/c.jpg")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/meal-photos/meals/a/b/c.jpg", u.Path)
}

func TestPhotoStorageDisabled(t *testing.T) {
	ctx := context.Background()
	for name, storage := range map[string]*PhotoStorage{
		"nil":       nil,
		"no client": NewPhotoStorage(nil, "bucket", 0),
		"no bucket": NewPhotoStorage(s3.NewPresignClient(s3.New(s3.Options{Region: "ap-southeast-1"})), "", 0),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, storage.Enabled())
			_, err := storage.PresignUpload(ctx, uuid.New(), uuid.New(), "image/jpeg")
			assert.ErrorIs(t, err, ErrStorageDisabled)
			_, err = storage.PresignView(ctx, "k")
			assert.ErrorIs(t, err, ErrStorageDisabled)
		})
	}
}
