package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayPath(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"inside root", "/data", "/data/notices/fees.pdf", "notices/fees.pdf"},
		{"root itself", "/data", "/data", "."},
		{"outside root", "/data", "/other/file.txt", "/other/file.txt"},
		{"no root", "", "/data/a.txt", "/data/a.txt"},
		{"sibling prefix", "/data", "/data2/a.txt", "/data2/a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayPath(tt.root, tt.path))
		})
	}
}
