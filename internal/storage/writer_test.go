package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TestWriterSave tests basic save behavior.
func TestWriterSave(t *testing.T) {
	t.Parallel()

	t.Run("writes file into per-domain directory", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		path, err := w.Save("example.com", "photo.jpg", []byte("content"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if filepath.Base(path) != "photo.jpg" {
			t.Errorf("filename = %q, expected %q", filepath.Base(path), "photo.jpg")
		}
		if filepath.Base(filepath.Dir(path)) != "example.com" {
			t.Errorf("directory = %q, expected %q", filepath.Dir(path), "example.com")
		}

		data, err := os.ReadFile(path) //nolint:gosec // Test-owned path
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("content = %q, expected %q", string(data), "content")
		}
	})

	t.Run("empty domain falls back to unknown-host", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		path, err := w.Save("", "a.png", []byte("x"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(filepath.Dir(path)) != "unknown-host" {
			t.Errorf("directory = %q, expected unknown-host", filepath.Dir(path))
		}
	})

	t.Run("empty name gets sniffed extension", func(t *testing.T) {
		t.Parallel()

		// Minimal PNG header so content sniffing identifies image/png.
		png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

		w := NewWriter(t.TempDir())
		path, err := w.Save("example.com", "", png)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := filepath.Base(path); got != "image.png" {
			t.Errorf("filename = %q, expected %q", got, "image.png")
		}
	})

	t.Run("collision gets numeric suffix", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		first, err := w.Save("example.com", "pic.jpg", []byte("one"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := w.Save("example.com", "pic.jpg", []byte("two"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if filepath.Base(first) != "pic.jpg" {
			t.Errorf("first = %q, expected pic.jpg", filepath.Base(first))
		}
		if filepath.Base(second) != "pic_1.jpg" {
			t.Errorf("second = %q, expected pic_1.jpg", filepath.Base(second))
		}
	})

	t.Run("collision with file from earlier run", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		dir := filepath.Join(base, "example.com")
		if err := os.MkdirAll(dir, 0750); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "old.gif"), []byte("old"), 0640); err != nil {
			t.Fatalf("failed to write existing file: %v", err)
		}

		w := NewWriter(base)
		path, err := w.Save("example.com", "old.gif", []byte("new"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(path) != "old_1.gif" {
			t.Errorf("filename = %q, expected old_1.gif", filepath.Base(path))
		}
	})
}

// TestWriterConcurrency tests concurrent saves under the same name.
func TestWriterConcurrency(t *testing.T) {
	t.Parallel()

	const workers = 20

	w := NewWriter(t.TempDir())
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paths = make(map[string]bool)
	)

	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := w.Save("example.com", "same.jpg", []byte(fmt.Sprintf("content-%d", i)))
			if err != nil {
				t.Errorf("save failed: %v", err)
				return
			}
			mu.Lock()
			if paths[path] {
				t.Errorf("path %q handed out twice", path)
			}
			paths[path] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(paths) != workers {
		t.Fatalf("expected %d distinct paths, got %d", workers, len(paths))
	}

	// Every file must exist with its own content intact.
	entries, err := os.ReadDir(filepath.Join(w.baseDir, "example.com"))
	if err != nil {
		t.Fatalf("failed to list output dir: %v", err)
	}
	if len(entries) != workers {
		t.Errorf("expected %d files on disk, got %d", workers, len(entries))
	}
}

// TestSanitizeName tests filename sanitization.
func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name kept", "photo.jpg", "photo.jpg"},
		{"disallowed characters stripped", `a b/c\d*e.png`, "abcde.png"},
		{"dots and dashes kept", "my-image_v2.final.webp", "my-image_v2.final.webp"},
		{"only junk becomes empty", "///***", ""},
		{"only dots becomes empty", "...", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sanitizeName(tt.in); got != tt.want {
				t.Errorf("sanitizeName(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("long base capped at limit", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", 300) + ".jpg"
		got := sanitizeName(long)
		ext := filepath.Ext(got)
		if ext != ".jpg" {
			t.Errorf("extension = %q, expected .jpg", ext)
		}
		if base := strings.TrimSuffix(got, ext); len(base) != maxNameLength {
			t.Errorf("base length = %d, expected %d", len(base), maxNameLength)
		}
	})
}
