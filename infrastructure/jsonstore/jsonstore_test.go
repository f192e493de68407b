package jsonstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileThenReadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	in := map[string]string{"007": "CellA"}
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := map[string]string{}
	if !ReadFile(path, &out) {
		t.Fatalf("expected read to succeed")
	}
	if out["007"] != "CellA" {
		t.Fatalf("expected CellA, got %q", out["007"])
	}
}

func TestReadFileMissingFileReturnsFalse(t *testing.T) {
	out := map[string]string{}
	if ReadFile(filepath.Join(t.TempDir(), "absent.json"), &out) {
		t.Fatalf("expected false for missing file")
	}
	if len(out) != 0 {
		t.Fatalf("expected target untouched, got %v", out)
	}
}

func TestReadFileCorruptFileReturnsFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	out := map[string]string{}
	if ReadFile(path, &out) {
		t.Fatalf("expected false for corrupt file")
	}
}

func TestWriteFileLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	if err := WriteFile(path, []int{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "store.json" {
		t.Fatalf("expected only store.json, got %v", entries)
	}
}
