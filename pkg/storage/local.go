package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// PublicPrefix is the URL path uploaded files are served under.
const PublicPrefix = "/upload/"

// Local stores uploads in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates dir if needed and returns a store writing into it.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *Local) Dir() string { return s.dir }

// Save writes content under a fresh name keeping the extension of filename and
// returns its public path.
func (s *Local) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}

	logger.Debug("stored upload", zap.String("original", filename), zap.String("name", name))
	return PublicPrefix + name, nil
}

// Remove deletes a file previously returned by Save. A missing file is not an
// error.
func (s *Local) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := filepath.Base(strings.TrimPrefix(path, PublicPrefix))
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid upload path %q", path)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
