package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploaded images under a root directory and hands back
// relative paths like "hotels/3f2a8c….jpg". The relative path is what gets
// persisted; clients resolve it against the static file base URL.
type Store struct{ root string }

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("image root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) Save(_ context.Context, dir, originalName string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	rel := path.Join(dir, uuid.NewString()+ext)

	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		_ = os.Remove(abs)
		return "", err
	}
	return rel, nil
}

func (s *Store) Remove(_ context.Context, rel string) error {
	// refuse anything that escapes the root
	clean := path.Clean(rel)
	if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return fmt.Errorf("invalid image path %q", rel)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
