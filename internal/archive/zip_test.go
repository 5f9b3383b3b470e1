// internal/archive/zip_test.go
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/core"
)

func TestWriter_Create(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sub", "deep"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"root.txt":       "hello",
		"sub/a.txt":      "aaa",
		"sub/deep/b.bin": "binary-ish",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dest := filepath.Join(t.TempDir(), "2025", "08", "15", "app_20250815_120000.zip")
	size, err := NewWriter(zap.NewNop()).Create(context.Background(), src, dest)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if size <= 0 {
		t.Errorf("size = %d, want > 0", size)
	}

	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	got := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		got[f.Name] = string(data)
	}

	for name, content := range files {
		if got[name] != content {
			t.Errorf("entry %s = %q, want %q", name, got[name], content)
		}
	}
	if len(got) != len(files) {
		t.Errorf("archive has %d entries, want %d", len(got), len(files))
	}
}

func TestWriter_Create_EmptySource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.zip")
	_, err := NewWriter(zap.NewNop()).Create(context.Background(), t.TempDir(), dest)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("empty archive should still be a valid zip: %v", err)
	}
	r.Close()
}

func TestWriter_Create_MissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	_, err := NewWriter(zap.NewNop()).Create(context.Background(), filepath.Join(t.TempDir(), "nope"), dest)
	if !errors.Is(err, core.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestWriter_Create_Canceled(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWriter(zap.NewNop()).Create(ctx, src, filepath.Join(t.TempDir(), "out.zip"))
	if err == nil {
		t.Fatal("expected error on canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
