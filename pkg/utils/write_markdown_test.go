package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMarkdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")

	path, err := WriteMarkdown(dir, "conversation-1", "# Title\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation-1.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", string(data))
}

func TestWriteMarkdownKeepsSuffix(t *testing.T) {
	path, err := WriteMarkdown(t.TempDir(), "notes.MD", "x")
	require.NoError(t, err)
	assert.Equal(t, "notes.MD", filepath.Base(path))
}
