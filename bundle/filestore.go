package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Bundle files carry this extension under the store directory.
const fileExt = ".sd"

type fileStore struct {
	root string
}

// NewFileStore creates a Store backed by the filesystem. Each bundle maps to
// <root>/<name>.sd. Names are flat — no path separators.
func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *fileStore) Load(_ context.Context, name string) (Bundle, error) {
	path, err := s.path(name)
	if err != nil {
		return Bundle{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Bundle{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Bundle{}, fmt.Errorf("%w: %s: %v", ErrLoadFailed, name, err)
	}
	return Bundle{Name: name, Snippet: string(data)}, nil
}

func (s *fileStore) Save(_ context.Context, b Bundle) error {
	path, err := s.path(b.Name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, b.Name, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, b.Name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.Snippet); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, b.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, b.Name, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, b.Name, err)
	}
	return nil
}

func (s *fileStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete failed: %s: %w", name, err)
	}
	return nil
}

// path validates a bundle name and returns its file path. Rejecting
// separators and dot prefixes keeps lookups inside the store directory.
func (s *fileStore) path(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, name+fileExt), nil
}
