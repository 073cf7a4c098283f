package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Create(t *testing.T) {
	fs := OSFileSystem{}
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "created.txt")

	w, err := fs.Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("created via Create")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("reading back %q: %v", testFile, err)
	}
	if string(data) != "created via Create" {
		t.Errorf("expected 'created via Create', got %q", data)
	}
}

func TestOSFileSystem_CreateTruncates(t *testing.T) {
	fs := OSFileSystem{}
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "truncated.txt")

	for _, content := range []string{"first, much longer", "second"} {
		w, err := fs.Create(testFile)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("reading back %q: %v", testFile, err)
	}
	if string(data) != "second" {
		t.Errorf("expected Create to truncate, got %q", data)
	}
}
