package artifacts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog/log"
)

// PullResult counts what happened to each key
type PullResult struct {
	Downloaded int
	Failed     int
}

// LocalPath maps a remote key back to a path relative to the pull
// directory by stripping prefix. Keys that would land outside the
// directory are rejected.
func LocalPath(prefix, key string) (string, error) {
	rel := key
	if p := strings.TrimSuffix(prefix, "/"); p != "" {
		rel = strings.TrimPrefix(key, p+"/")
	}
	rel = filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("key %q does not map to a path inside the artifact directory", key)
	}
	return rel, nil
}

// Pull downloads each key into dir, replacing existing files atomically.
// Per-key failures are logged and counted; only a cancelled context is
// returned as an error.
func Pull(ctx context.Context, store Store, keys []string, dir, prefix string) (PullResult, error) {
	var res PullResult

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rel, err := LocalPath(prefix, key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Invalid key")
			res.Failed++
			continue
		}
		path := filepath.Join(dir, rel)

		if err := downloadFile(ctx, store, key, path); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Download failed")
			res.Failed++
			continue
		}

		log.Info().Str("key", key).Str("path", path).Msg("Downloaded")
		res.Downloaded++
	}
	return res, nil
}

func downloadFile(ctx context.Context, store Store, key, path string) error {
	body, err := store.Download(ctx, key)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer pf.Cleanup()

	if _, err := io.Copy(pf, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return pf.CloseAtomicallyReplace()
}
