package services

import (
	"context"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	apperrors "threads-server/pkg/errors"
)

// MediaUploader is the media-hosting collaborator. Upload takes the raw
// payload (a data URI or remote URL) and returns the hosted URL.
type MediaUploader interface {
	Upload(ctx context.Context, payload string) (string, error)
	Destroy(ctx context.Context, hostedURL string) error
}

// CloudinaryUploader implements MediaUploader against Cloudinary.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{client: client}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, payload string) (string, error) {
	result, err := u.client.Upload.Upload(ctx, payload, uploader.UploadParams{})
	if err != nil {
		return "", apperrors.ErrUploadFailed(err)
	}
	return result.SecureURL, nil
}

func (u *CloudinaryUploader) Destroy(ctx context.Context, hostedURL string) error {
	_, err := u.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: PublicIDFromURL(hostedURL),
	})
	if err != nil {
		return apperrors.ErrDestroyFailed(err)
	}
	return nil
}

// disabledUploader rejects media operations when no hosting credentials
// are configured, so the rest of the server keeps working without them.
type disabledUploader struct{}

func NewDisabledUploader() MediaUploader { return disabledUploader{} }

func (disabledUploader) Upload(_ context.Context, _ string) (string, error) {
	return "", apperrors.Upstream("media hosting is not configured")
}

func (disabledUploader) Destroy(_ context.Context, _ string) error {
	return apperrors.Upstream("media hosting is not configured")
}

// PublicIDFromURL derives the hosted asset's public id: the substring
// after the last '/', with the extension after the last '.' stripped.
func PublicIDFromURL(hostedURL string) string {
	id := hostedURL
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[:i]
	}
	return id
}
