package filesystem

import (
	"path/filepath"
	"strings"
)

// DisplayPath returns path relative to root for display, or path unchanged
// when it lies outside root.
func DisplayPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
