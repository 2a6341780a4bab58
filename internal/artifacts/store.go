package artifacts

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Store defines the remote storage that pipeline artifacts are pushed to
type Store interface {
	// Upload writes content under key
	Upload(ctx context.Context, key string, content io.Reader, contentType string) error

	// Exists checks if an object exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Download opens the object stored under key. The caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// URL returns the public URL of key
	URL(key string) string
}

// DetectContentType maps artifact file extensions to MIME types
func DetectContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".txt", ".log":
		return "text/plain"
	default:
		// .npy, .obj, .gob, .pkl and anything else
		return "application/octet-stream"
	}
}
