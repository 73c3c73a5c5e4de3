package media

import (
	"context"
	"io"
)

// SavedImage describes an image written to storage. Key is
// "<folder>/<file_name>", relative to the storage root.
type SavedImage struct {
	Folder      string `json:"folder"`
	FileName    string `json:"file_name"`
	Key         string `json:"key"`
	Path        string `json:"path"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

// StorageProvider abstracts where image files live.
type StorageProvider interface {
	// EnsureDir creates the folder (and parents) if absent.
	EnsureDir(ctx context.Context, folder string) error
	// Put writes reader under key. The object at key is either complete or
	// absent when Put returns.
	Put(ctx context.Context, key string, reader io.Reader, maxBytes int64) (int64, error)
	// Open returns a reader for the given key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// HostPath returns the filesystem path for key.
	HostPath(key string) (string, error)
}
