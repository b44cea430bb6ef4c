package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	storage "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

const uploadPrefix = "uploads"

// Uploader stores submission images in a public bucket.
type Uploader struct {
	bucket    string
	upload    func(path string, data io.Reader, contentType string) error
	publicURL func(path string) string
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewUploader creates an uploader for bucket.
func NewUploader(client *supabase.Client, bucket string, clock clockwork.Clock, logger *slog.Logger) *Uploader {
	return &Uploader{
		bucket: bucket,
		upload: func(path string, data io.Reader, contentType string) error {
			_, err := client.Storage.UploadFile(bucket, path, data, storage.FileOptions{ContentType: &contentType})
			return err
		},
		publicURL: func(path string) string {
			return client.Storage.GetPublicUrl(bucket, path).SignedURL
		},
		clock:  clock,
		logger: logger,
	}
}

// Upload stores img and returns its public URL.
func (u *Uploader) Upload(_ context.Context, img domain.ImageFile) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("upload image: empty file")
	}

	path := u.objectPath(img)
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}

	if err := u.upload(path, bytes.NewReader(img.Data), contentType); err != nil {
		return "", fmt.Errorf("upload image to %s/%s: %w", u.bucket, path, err)
	}

	url := u.publicURL(path)
	if url == "" {
		return "", fmt.Errorf("upload image: no public url for %s/%s", u.bucket, path)
	}
	u.logger.Info("image uploaded", "bucket", u.bucket, "path", path)
	return url, nil
}

// objectPath builds "uploads/<unix-millis>-<random>.<ext>"; the original
// filename never reaches the object key.
func (u *Uploader) objectPath(img domain.ImageFile) string {
	millis := strconv.FormatInt(u.clock.Now().UnixMilli(), 10)
	random := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%s-%s.%s", uploadPrefix, millis, random, img.Ext())
}
