package ingest

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions are the report file types picked up by a directory scan.
var DefaultExtensions = []string{"txt", "md", "text"}

// NormalizeExt lower-cases ext and drops a leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
