package storage

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// maxNameLength caps the base filename (without extension) so URLs
// with absurdly long final segments still produce usable paths.
const maxNameLength = 100

// fallbackBaseName is used when the URL yields no usable filename.
const fallbackBaseName = "image"

// Writer saves image payloads under baseDir/<domain>/.
type Writer struct {
	// baseDir is the output directory configured for the run.
	baseDir string

	// mu serializes name reservation and directory creation.
	mu sync.Mutex

	// used tracks names reserved during this run, keyed by full path.
	// The on-disk existence check alone is not enough: a name is taken
	// from the moment it is reserved, before its file hits the disk.
	used map[string]bool
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{
		baseDir: baseDir,
		used:    make(map[string]bool),
	}
}

// Dir returns the output directory for a domain.
func (w *Writer) Dir(domain string) string {
	if domain == "" {
		domain = "unknown-host"
	}
	return filepath.Join(w.baseDir, domain)
}

// EnsureDir creates the per-domain directory if it does not exist.
// Safe to call concurrently from multiple workers: os.MkdirAll is a
// no-op when the directory already exists.
func (w *Writer) EnsureDir(domain string) (string, error) {
	dir := w.Dir(domain)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// Save writes data into the domain directory under a filesystem-safe
// name derived from suggestedName, resolving collisions with an
// incrementing numeric suffix. It returns the full path written.
func (w *Writer) Save(domain, suggestedName string, data []byte) (string, error) {
	dir, err := w.EnsureDir(domain)
	if err != nil {
		return "", err
	}

	name := sanitizeName(suggestedName)
	if name == "" {
		name = fallbackBaseName + guessExtension(data)
	}

	path, err := w.reserve(dir, name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0640); err != nil { //nolint:gosec // Path is derived from user-chosen output dir
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return path, nil
}

// reserve picks the first free variant of name inside dir and marks it
// used. Free means neither reserved during this run nor present on
// disk from an earlier run.
func (w *Writer) reserve(dir, name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for counter := 1; w.taken(candidate); counter++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		if counter > 10000 {
			return "", fmt.Errorf("could not find a free name for %s", name)
		}
	}

	w.used[candidate] = true
	return candidate, nil
}

// taken reports whether a path is reserved in this run or exists on disk.
func (w *Writer) taken(path string) bool {
	if w.used[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// sanitizeName derives a filesystem-safe filename from a URL path
// segment: NFC-normalized, restricted to alphanumerics and ".-_",
// with the base capped at maxNameLength characters.
func sanitizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}
	safe := sb.String()

	// A name of only dots would collapse to the directory itself.
	if strings.Trim(safe, ".") == "" {
		return ""
	}

	ext := filepath.Ext(safe)
	base := strings.TrimSuffix(safe, ext)
	if len(base) > maxNameLength {
		base = base[:maxNameLength]
	}
	return base + ext
}

// guessExtension sniffs the payload's content type and returns a
// matching extension, falling back to ".img" when the type is unknown.
func guessExtension(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}

	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ".img"
	}

	// Prefer the conventional extension when the registry offers
	// several (e.g. jpeg -> .jpg).
	for _, preferred := range []string{".jpg", ".png", ".gif", ".webp", ".svg"} {
		for _, e := range exts {
			if e == preferred {
				return e
			}
		}
	}
	return exts[0]
}
