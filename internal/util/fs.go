package util

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// ensureParentDir creates the directory that will hold path
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, dirPerm)
}

// writeAtomic streams write's output into a temp file next to path and
// renames it over path once write succeeds. The temp file is removed on
// every failure path.
func writeAtomic(path string, write func(w io.Writer) error) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(filePerm))
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	if err := write(pf); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}

// writeFile replaces path with data atomically
func writeFile(path string, data []byte) error {
	return renameio.WriteFile(path, data, filePerm)
}
