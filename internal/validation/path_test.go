package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/.nearby/places.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".nearby", "places.db"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
	if _, err := ExpandHome("~other/file"); !errors.Is(err, ErrUnsafePath) {
		t.Errorf("expected ErrUnsafePath, got %v", err)
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "cannot be empty"},
		{"traversal", "/tmp/../etc/passwd", "traversal"},
		{"control chars", "/tmp/a\x01b", "control characters"},
		{"null byte", "/tmp/a\x00b", "control characters"},
		{"too long", "/" + strings.Repeat("a", 5000), "too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CleanPath(tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	got, err := CleanPath("relative/dir/")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) || strings.HasSuffix(got, "/") {
		t.Errorf("expected clean absolute path, got %q", got)
	}
}

func TestFilePathCreatesParent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "places.db")

	got, err := FilePath(target)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("got %q, want %q", got, target)
	}
	if info, err := os.Stat(filepath.Dir(target)); err != nil || !info.IsDir() {
		t.Errorf("parent directory not created: %v", err)
	}

	if _, err := FilePath(dir); !errors.Is(err, ErrUnsafePath) {
		t.Errorf("directory accepted as file: %v", err)
	}
}

func TestDirPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := DirPath(filepath.Join(dir, "index.bleve")); err != nil {
		t.Errorf("missing dir should be accepted: %v", err)
	}
	if _, err := DirPath(file); !errors.Is(err, ErrUnsafePath) {
		t.Errorf("file accepted as directory: %v", err)
	}
}
