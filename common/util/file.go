package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func DoesFileExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// MakeDirectoriesIfNotExist creates each given directory with the mode of
// base, or 0755 if base is missing.
func MakeDirectoriesIfNotExist(base string, dirs ...string) error {
	mode := os.FileMode(0755)
	if info, err := os.Stat(base); err == nil {
		mode = info.Mode().Perm()
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, mode); err != nil {
			return err
		}
	}
	return nil
}

// FileStem returns the file name without directory and extension.
func FileStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// WriteFileAtomic writes to a temporary file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
