package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("image storage is not configured")

// UploadedImage is what callers persist after an upload.
type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStorage hosts user images (progress photos, avatars).
type ImageStorage interface {
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (*UploadedImage, error)
	// DeleteImage accepts either a public ID or a delivery URL.
	DeleteImage(ctx context.Context, ref string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage uses cloudinaryURL when given, otherwise CLOUDINARY_URL from the environment.
func NewCloudinaryStorage(cloudinaryURL string) (ImageStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cloudinaryURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (*UploadedImage, error) {
	if s == nil || s.cld == nil {
		return nil, ErrNotConfigured
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	params := uploader.UploadParams{
		Folder:         folder,
		PublicID:       fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102"), base),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		Format:         "webp",
		Transformation: "q_auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return nil, errors.New("cloudinary upload succeeded but secure URL is empty")
	}

	return &UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *cloudinaryStorage) DeleteImage(ctx context.Context, ref string) error {
	if s == nil || s.cld == nil {
		return ErrNotConfigured
	}

	publicID := ref
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		publicID = PublicIDFromURL(ref)
	}
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from %q", ref)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy returned %s", resp.Result)
	}

	return nil
}

// PublicIDFromURL extracts "folder/name" from
// https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.webp.
func PublicIDFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	rest := parts[uploadIndex+1:]
	if isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}

	joined := strings.Join(rest, "/")
	return strings.TrimSuffix(joined, filepath.Ext(joined))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
