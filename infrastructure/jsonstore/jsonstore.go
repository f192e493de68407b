package jsonstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if missing. Existing directories are
// not an error.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// ReadFile decodes the JSON document at path into v. A missing or corrupt
// file leaves v untouched and returns false: the caller proceeds with an
// empty store rather than failing the operation.
func ReadFile(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("read store file failed", slog.String("path", path), slog.Any("err", err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Error("store file is not valid JSON, treating as empty", slog.String("path", path), slog.Any("err", err))
		return false
	}
	return true
}

// WriteFile replaces the document at path with the JSON encoding of v.
// The document is written to a temp file in the same directory and renamed
// over the target, so a crash mid-write never leaves a truncated store.
func WriteFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
