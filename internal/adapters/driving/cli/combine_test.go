package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineCmd_OutputFlag(t *testing.T) {
	flag := combineCmd.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "combined.txt", flag.DefValue)
}

func TestCombineCmd_WritesFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "all.txt")

	out, err := execute(t, "", "combine", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "combined text", string(data))
	assert.Contains(t, out, "Combined 4 documents into "+path)
	assert.Contains(t, out, "pdf   loaded 1, failed 0")
	assert.Contains(t, out, "docx  loaded 0, failed 1")
	assert.Contains(t, out, "skipped dataset/broken.docx: unreadable file")
}

func TestCombineCmd_Stdout(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "combine", "-o", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "combined text")
	assert.NotContains(t, out, "Combined 4 documents")
}

func TestCombineCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	combiner = &mockCombiner{err: errors.New("dataset missing")}

	_, err := execute(t, "", "combine", "-o", filepath.Join(t.TempDir(), "x.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "combine failed: dataset missing")
}
