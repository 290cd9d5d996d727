package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aihub/internal/domain"
)

var _ domain.ObjectFetcher = (*DirFetcher)(nil)

// DirFetcher reads dataset objects from a local directory. It backs the
// development mode where no S3 storage is configured, and test setups.
type DirFetcher struct {
	root string
}

// NewDirFetcher creates a fetcher rooted at dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{root: dir}
}

// Fetch opens the file stored under key, relative to the root directory.
// Keys that escape the root are rejected.
func (f *DirFetcher) Fetch(_ context.Context, key string) (io.ReadCloser, error) {
	clean := filepath.Clean(filepath.Join(f.root, filepath.FromSlash(key)))
	rootAbs, err := filepath.Abs(f.root)
	if err != nil {
		return nil, err
	}
	cleanAbs, err := filepath.Abs(clean)
	if err != nil {
		return nil, err
	}
	if cleanAbs != rootAbs && !strings.HasPrefix(cleanAbs, rootAbs+string(filepath.Separator)) {
		return nil, domain.ErrValidation("storage key %q escapes the data directory", key)
	}

	file, err := os.Open(cleanAbs) //nolint:gosec // confined to root above
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound("object %q not found", key)
		}
		return nil, err
	}
	return file, nil
}
