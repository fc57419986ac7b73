package manifest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Walker finds the manifest of a decompiled application by walking its
// directory tree.
type Walker struct {
	Log logrus.FieldLogger
}

// Locate returns the first AndroidManifest.xml found under root. An
// unreadable root yields ErrManifestNotFound like an empty one. Directories
// are visited top-down and a directory's own files are checked before any of
// its subdirectories. With several manifests in sibling trees the winner
// depends on directory listing order.
func (w Walker) Locate(ctx context.Context, root string) (string, error) {
	log := w.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				log.WithError(err).WithField("root", root).Debug("Cannot walk root")
				return fs.SkipAll
			}
			log.WithError(err).WithField("dir", path).Debug("Skipping unreadable directory")
			return fs.SkipDir
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() {
			return nil
		}
		candidate := filepath.Join(path, FileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			found = candidate
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", ErrManifestNotFound
	}
	log.WithField("manifest", found).Debug("Found manifest")
	return found, nil
}

// Locate walks root with a Walker using the standard logger.
func Locate(ctx context.Context, root string) (string, error) {
	return Walker{}.Locate(ctx, root)
}
