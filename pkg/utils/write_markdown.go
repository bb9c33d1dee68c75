package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteMarkdown writes content to dir/fileName, creating dir when needed, and
// returns the full path. A missing ".md" suffix is added.
func WriteMarkdown(dir, fileName, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".md") {
		fileName += ".md"
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return path, nil
}
