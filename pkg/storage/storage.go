package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/utils"
)

// OpenDir returns a filesystem rooted at dir, creating it when missing and probing that it
// is writable. Transient failures (e.g. a slow network mount) are retried with backoff.
func OpenDir(ctx context.Context, dir string) (billy.Filesystem, error) {
	b := utils.Backoff{
		MaxRetries: 3,
		Delay:      100 * time.Millisecond,
		MaxDelay:   time.Second,
	}

	var err error
	for attempt := 0; ; attempt++ {
		if err = os.MkdirAll(dir, 0o755); err == nil {
			fs := osfs.New(dir)
			if err = Probe(fs); err == nil {
				return fs, nil
			}
		}
		if attempt >= b.MaxRetries {
			return nil, fmt.Errorf("open storage dir %q failed after retries: %w", dir, err)
		}
		logger.L().Warn("storage dir not ready", zap.String("dir", dir), zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("open storage dir %q canceled: %w", dir, ctx.Err())
		case <-time.After(b.Next(attempt)):
		}
	}
}

// WriteFileAtomic replaces name with data by writing a sibling temp file and renaming it
// over the target, so readers see either the old or the new content. Parent dirs are created.
func WriteFileAtomic(fs billy.Filesystem, name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", dir, err)
	}
	tmp, err := util.TempFile(fs, dir, "."+filepath.Base(name)+"-")
	if err != nil {
		return fmt.Errorf("billy: tempfile for %q: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("billy: write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("billy: close %q: %w", tmpName, err)
	}
	if chmod, ok := fs.(billy.Change); ok {
		_ = chmod.Chmod(tmpName, perm)
	}
	if err := fs.Rename(tmpName, name); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("billy: rename %q -> %q: %w", tmpName, name, err)
	}
	return nil
}

// Exists reports whether name exists on fs.
func Exists(fs billy.Filesystem, name string) (bool, error) {
	_, err := fs.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: stat %q: %w", name, err)
	}
}

// Probe checks that fs accepts writes by creating and removing a temp file.
func Probe(fs billy.Filesystem) error {
	f, err := util.TempFile(fs, ".", ".probe-")
	if err != nil {
		return fmt.Errorf("storage not writable: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return fs.Remove(name)
}
