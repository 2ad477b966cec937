package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode of new files written with mode 0.
const DefaultFileMode os.FileMode = 0o644

// WriteAtomic replaces path with content through a synced temp file in the
// same directory, so a watcher never sees a half-written file. Mode 0 keeps
// the mode of an existing file, or uses DefaultFileMode for a new one.
//
// When path already holds content with the requested mode nothing is written
// and the file's modification time is left alone. The returned FileInfo
// describes the file now on disk.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	existing, err := os.Stat(path)
	switch {
	case err == nil && existing.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	case err == nil:
		if mode == 0 {
			mode = existing.Mode().Perm()
		}
		if _, info, readErr := ReadFile(ctx, path); readErr == nil &&
			info.Mode.Perm() == mode && info.Hash == Hash(content) {
			return info, nil
		}
	case mode == 0:
		mode = DefaultFileMode
	}

	tmpPath, err := writeTemp(path, content, mode)
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("rename %s: %w", tmpPath, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, classify(path, err)
	}

	return &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    int64(len(content)),
		Hash:    Hash(content),
	}, nil
}

// writeTemp stores content in a new temp file next to path and returns its
// name. The temp file is removed on any failure.
func writeTemp(path string, content []byte, mode os.FileMode) (_ string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return "", classify(filepath.Dir(path), err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	return tmp.Name(), nil
}
