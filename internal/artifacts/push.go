package artifacts

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// PushOptions contains options for pushing an artifact directory
type PushOptions struct {
	// Prefix is prepended to every key (e.g. "artifacts/")
	Prefix string

	// Force uploads even if the key already exists
	Force bool

	// DryRun reports what would be uploaded without touching the store
	DryRun bool
}

// PushResult counts what happened to each file
type PushResult struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Key returns the remote key for a path relative to the pushed directory
func Key(prefix, relPath string) string {
	key := filepath.ToSlash(relPath)
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}

// Push uploads every file under dir to store. Per-file failures are logged
// and counted; only a failure to walk dir itself is returned.
func Push(ctx context.Context, store Store, dir string, opts PushOptions) (PushResult, error) {
	var res PushResult

	info, err := os.Stat(dir)
	if err != nil {
		return res, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("%s is not a directory", dir)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to access path")
			res.Failed++
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to compute relative path")
			res.Failed++
			return nil
		}
		key := Key(opts.Prefix, rel)
		contentType := DetectContentType(path)

		if opts.DryRun {
			log.Info().Str("key", key).Str("contentType", contentType).Msg("Would upload")
			res.Uploaded++
			return nil
		}

		if !opts.Force {
			exists, err := store.Exists(ctx, key)
			if err != nil {
				log.Error().Err(err).Str("key", key).Msg("Failed to check existence")
				res.Failed++
				return nil
			}
			if exists {
				log.Info().Str("key", key).Msg("Skipped, already exists")
				res.Skipped++
				return nil
			}
		}

		if err := uploadFile(ctx, store, path, key, contentType); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Upload failed")
			res.Failed++
			return nil
		}

		log.Info().Str("key", key).Str("url", store.URL(key)).Msg("Uploaded")
		res.Uploaded++
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return res, nil
}

func uploadFile(ctx context.Context, store Store, path, key, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return store.Upload(ctx, key, f, contentType)
}
