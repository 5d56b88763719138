package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/abzsd/CareAgents/internal/logger"
)

// Error variables
var (
	ErrNotFound = errors.New("blob not found")
)

// BlobStore persists uploaded files and hands back retrieval keys.
type BlobStore interface {
	Put(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, folder string) ([]string, error)
}

// DiskStore stores blobs under a root directory. Keys are
// folder/uuid-filename relative paths.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Put writes the reader's contents to a fresh key inside folder.
func (s *DiskStore) Put(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	key := filepath.ToSlash(filepath.Join(sanitize(folder), uuid.NewString()+"-"+sanitize(filename)))

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}

	logger.Log.Infow("blob stored", "key", key)
	return key, nil
}

// Get opens the blob for reading. Returns ErrNotFound for unknown keys.
func (s *DiskStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes the blob. Deleting an unknown key returns ErrNotFound.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// List returns the keys stored under a folder, sorted by name. An
// unknown folder yields an empty list.
func (s *DiskStore) List(ctx context.Context, folder string) ([]string, error) {
	dir := sanitize(folder)

	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		keys = append(keys, dir+"/"+e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

// resolve maps a key to an absolute path, rejecting escapes from root.
func (s *DiskStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrNotFound
	}
	return filepath.Join(s.root, clean), nil
}

// sanitize keeps keys to a safe character set.
func sanitize(s string) string {
	s = filepath.Base(strings.TrimSpace(s))
	if s == "." || s == string(filepath.Separator) || s == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, s)
}
