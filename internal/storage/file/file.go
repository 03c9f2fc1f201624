// Package file stores each save key as a JSON file in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/AaronLay10/pointclick/internal/save"
)

const ext = ".json"

// Store is a directory of save files, one per key.
type Store struct {
	path string

	mu sync.RWMutex
}

// New opens a store rooted at path, creating the directory if needed.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}
	return &Store{path: path}, nil
}

// filePath maps a key to a file name. Keys are path-escaped so ':' and '/' are safe on disk.
func (s *Store) filePath(key string) string {
	return filepath.Join(s.path, url.PathEscape(key)+ext)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, save.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return atomicWrite(s.filePath(key), value, 0o644)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			slog.Warn("skipping save file with invalid name", "file", name, "error", err)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
