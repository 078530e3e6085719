package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is wrapped by every path validation failure.
var ErrUnsafePath = errors.New("unsafe path")

const maxPathLength = 4096

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("%w: unsupported tilde form %q", ErrUnsafePath, path)
	}
	return path, nil
}

// CleanPath expands, absolutizes and cleans path, rejecting control
// characters and ".." components.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrUnsafePath)
	}
	if len(path) > maxPathLength {
		return "", fmt.Errorf("%w: path too long (max %d characters)", ErrUnsafePath, maxPathLength)
	}
	for _, r := range path {
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("%w: path contains control characters", ErrUnsafePath)
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: directory traversal not allowed", ErrUnsafePath)
		}
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	return filepath.Clean(abs), nil
}

// FilePath validates a path that will be opened as a regular file and
// creates its parent directory.
func FilePath(path string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsafePath, clean)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return clean, nil
}

// DirPath validates a path used as a directory, such as a bleve index.
func DirPath(path string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(clean); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrUnsafePath, clean)
	}
	return clean, nil
}
