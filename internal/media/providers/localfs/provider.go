// Package localfs implements media.StorageProvider on the local filesystem.
// A key "<folder>/<file>" maps to "<root>/<folder>/<file>".
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/memohai/imgkeeper/internal/media"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Provider stores images under a root directory.
type Provider struct {
	root string
}

// New creates a filesystem provider rooted at root (e.g. "images").
// The root is created if absent.
func New(root string) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Provider{root: abs}, nil
}

// Root returns the absolute storage root.
func (p *Provider) Root() string {
	return p.root
}

// EnsureDir creates the folder under the root. It is a no-op when the folder exists.
func (p *Provider) EnsureDir(_ context.Context, folder string) error {
	dir, err := p.HostPath(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// Put streams reader into a temp file beside the destination and renames it
// into place once fully written and synced. On any failure the temp file is
// removed and nothing exists at the destination path.
func (p *Provider) Put(_ context.Context, key string, reader io.Reader, maxBytes int64) (int64, error) {
	dest, err := p.HostPath(key)
	if err != nil {
		return 0, err
	}
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, dirPerm); err != nil {
		return 0, fmt.Errorf("create parent dir: %w", err)
	}
	tmp, err := os.CreateTemp(parent, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := media.CopyWithLimit(tmp, reader, maxBytes)
	if err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return 0, fmt.Errorf("chmod file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return 0, fmt.Errorf("commit file: %w", err)
	}
	committed = true
	return written, nil
}

// Open reads a stored file.
func (p *Provider) Open(_ context.Context, key string) (io.ReadCloser, error) {
	dest, err := p.HostPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dest)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// HostPath converts a key into a path under the root, rejecting absolute
// keys and keys that escape the root.
func (p *Provider) HostPath(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty storage key")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute key %s", media.ErrPathTraversal, key)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", media.ErrPathTraversal, key)
	}
	joined := filepath.Join(p.root, clean)
	if joined != p.root && !strings.HasPrefix(joined, p.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", media.ErrPathTraversal, key)
	}
	return joined, nil
}
