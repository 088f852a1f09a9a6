package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const imageDir = "recipes/images"

// LocalStore keeps images under a media directory served at a URL prefix.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a LocalStore writing below root and producing
// references that start with baseURL.
func NewLocalStore(root, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}
}

// Save writes the image under a fresh name and returns its URL.
func (s *LocalStore) Save(_ context.Context, img *Image) (string, error) {
	key := path.Join(imageDir, uuid.New().String()+img.Ext)
	target := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", key, err)
	}
	return s.baseURL + key, nil
}

// Delete removes the file behind ref. Unknown or already missing files are
// not an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL)
	if !ok || key == "" || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}
