package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes processed images into the managed upload directory and hands
// back the relative paths persisted on catalog records. Filenames are always
// generated (timestamp plus uuid fragment), never derived from user input,
// and every resolved path is checked to stay inside the directory.
type Store struct {
	dir    string // absolute upload directory
	prefix string // public path prefix, e.g. "uploads"
}

func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: abs, prefix: filepath.Base(abs)}, nil
}

// Dir returns the absolute upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Write stores data under a fresh collision-resistant filename and returns
// the relative path to persist, e.g. "uploads/20240101120000_1a2b3c4d.jpg".
func (s *Store) Write(data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.jpg", time.Now().Format("20060102150405"), uuid.NewString()[:8])

	abs, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return s.prefix + "/" + name, nil
}

// Read loads the bytes of a previously stored image by its persisted
// relative path.
func (s *Store) Read(storedPath string) ([]byte, error) {
	abs, err := s.resolve(filepath.Base(storedPath))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return data, nil
}

// Remove deletes a previously stored image file. A missing file is not an
// error; callers treat removal as best-effort cleanup.
func (s *Store) Remove(storedPath string) error {
	if storedPath == "" {
		return nil
	}
	abs, err := s.resolve(filepath.Base(storedPath))
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// resolve joins name onto the upload dir and rejects anything that escapes it.
func (s *Store) resolve(name string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("resolve image path: %w", err)
	}
	if abs != s.dir && !strings.HasPrefix(abs, s.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("image path %q escapes upload directory", name)
	}
	return abs, nil
}
