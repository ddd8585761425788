package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ait-tooling/ait/internal/bus"
)

// FileStore keeps the conversation as a JSON array in <dir>/<key>.json.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at dir, creating dir if necessary.
func NewFileStore(dir, key string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: filepath.Join(dir, safeFilename(key)+".json")}, nil
}

// Path returns the file the conversation is written to.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) ([]bus.DialogMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", s.path, err)
	}
	return decode(data)
}

// Save writes to a temporary file and renames it over the old one.
func (s *FileStore) Save(_ context.Context, msgs []bus.DialogMessage) error {
	data, err := encode(msgs)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove history %s: %w", s.path, err)
	}
	return nil
}

// safeFilename replaces filesystem-unsafe characters with underscores.
func safeFilename(name string) string {
	const unsafe = `<>:"/\|?*`
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(unsafe, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
