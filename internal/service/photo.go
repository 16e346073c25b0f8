package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

// Presigner is the subset of the S3 presign client in use.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PhotoUpload is a presigned upload target.
type PhotoUpload struct {
	UploadURL string `json:"upload_url"`
	PhotoKey  string `json:"photo_key"`
	ExpiresIn int    `json:"expires_in"`
}

// PhotoStorage issues presigned URLs for meal photos.
type PhotoStorage struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
	newID     func() uuid.UUID
}

// NewPhotoStorage returns storage for bucket. A nil presigner or empty bucket
// disables it.
func NewPhotoStorage(presigner Presigner, bucket string, ttl time.Duration) *PhotoStorage {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PhotoStorage{presigner: presigner, bucket: bucket, ttl: ttl, newID: uuid.New}
}

// Enabled reports whether uploads can be issued.
func (p *PhotoStorage) Enabled() bool {
	return p != nil && p.presigner != nil && p.bucket != ""
}

// PresignUpload returns a PUT URL for a new photo of the meal.
func (p *PhotoStorage) PresignUpload(ctx context.Context, userID, mealID uuid.UUID, contentType string) (*PhotoUpload, error) {
	if !p.Enabled() {
		return nil, ErrStorageDisabled
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, invalidInput("unsupported photo content type")
	}

	key := fmt.Sprintf("meals/%s/%s/%s.%s", userID, mealID, p.newID(), ext)
	req, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	return &PhotoUpload{UploadURL: req.URL, PhotoKey: key, ExpiresIn: int(p.ttl.Seconds())}, nil
}

// PresignView returns a GET URL for a stored photo.
func (p *PhotoStorage) PresignView(ctx context.Context, key string) (string, error) {
	if !p.Enabled() {
		return "", ErrStorageDisabled
	}
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign view: %w", err)
	}
	return req.URL, nil
}
