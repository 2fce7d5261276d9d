package backlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the list as one newline-delimited file. Replace writes
// a sibling temp file, syncs it and renames it over the old one, so a
// crash mid-write leaves either the old list or the new one, never a
// torn mix.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) GetList() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var items []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			items = append(items, line)
		}
	}
	return items, nil
}

func (f *FileStore) Replace(items []string) error {
	if len(items) == 0 {
		err := os.Remove(f.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}

	tmp := f.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(strings.Join(items, "\n") + "\n"); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, f.path)
}
