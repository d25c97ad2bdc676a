package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Store sube al folder <base>/<folder> y devuelve la SecureURL.
type Store struct {
	cld  *cloudinary.Cloudinary
	base string
}

func New(cloudName, apiKey, apiSecret, baseFolder string) (*Store, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &Store{cld: cld, base: strings.Trim(baseFolder, "/")}, nil
}

func (s *Store) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       path.Join(s.base, folder),
		PublicID:     strings.TrimSuffix(filename, path.Ext(filename)),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload error: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// Delete recibe la SecureURL; el public id es <base>/<folder>/<nombre sin extensión>.
func (s *Store) Delete(ctx context.Context, folder, ref string) error {
	if ref == "" {
		return nil
	}
	name := path.Base(ref)
	publicID := path.Join(s.base, folder, strings.TrimSuffix(name, path.Ext(name)))

	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary delete error: %s", res.Error.Message)
	}
	return nil
}
