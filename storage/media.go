// Package storage keeps uploaded image payloads on disk and hands back
// opaque references stored on the owning entity.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"social-lab/errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// allowedImageTypes maps accepted MIME types to the file extension used on
// disk. Detection is done on content, never on the client-provided name.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type MediaStore struct {
	root string
}

func NewMediaStore(root string) (*MediaStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media root creation failed: %w", err)
	}
	return &MediaStore{root: root}, nil
}

// Save sniffs the payload, rejects anything that is not an accepted image
// and writes it under {root}/{category}/{uuid}{ext}. The returned
// reference is the path relative to the media root.
func (m *MediaStore) Save(category string, data []byte) (string, error) {
	ext, ok := allowedImageTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", errors.ErrUnsupportedImage
	}

	dir := filepath.Join(m.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(category, name)), nil
}

// Remove deletes a previously saved payload. A missing file is not an
// error: deletion is part of best-effort cleanup cascades.
func (m *MediaStore) Remove(ref string) error {
	if ref == "" || strings.Contains(ref, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(m.root, filepath.FromSlash(ref)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
