package tui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/nearby/internal/config"
)

func TestShowBanner(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	ShowBanner("1.0.0-test")

	w.Close()
	os.Stdout = old
	out := <-outC

	if !strings.Contains(out, "places around you") {
		t.Errorf("Expected banner to contain tagline, got: %s", out)
	}
	// Check for border characters
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Errorf("Expected banner to contain border characters, got: %s", out)
	}
	if !strings.Contains(out, "v1.0.0-test") {
		t.Errorf("Expected banner to contain version 'v1.0.0-test', got: %s", out)
	}
}

func TestBannerTextOmitsDevVersion(t *testing.T) {
	out := BannerText("dev")
	if strings.Contains(out, "vdev") {
		t.Errorf("dev builds should not print a version, got: %s", out)
	}
}

func TestGetCompactBanner(t *testing.T) {
	message := "Test message"
	result := GetCompactBanner(message)

	if !strings.Contains(result, message) {
		t.Errorf("Expected compact banner to contain '%s', got: %s", message, result)
	}
	if !strings.Contains(result, "█▄ █") {
		t.Errorf("Expected compact banner to contain logo elements, got: %s", result)
	}
}

func TestLogoConstants(t *testing.T) {
	if len(LogoLines) != 2 {
		t.Errorf("Expected 2 logo lines, got %d", len(LogoLines))
	}
	if len(BannerColors) == 0 {
		t.Error("Expected banner colors to be defined")
	}
}

func TestApplyTheme(t *testing.T) {
	original := PrimaryColor
	originalMuted := MutedColor
	t.Cleanup(func() {
		ApplyTheme(config.UIColors{Primary: string(original), Muted: string(originalMuted)})
	})

	ApplyTheme(config.UIColors{Primary: "#123456"})

	if PrimaryColor != lipgloss.Color("#123456") {
		t.Errorf("PrimaryColor = %s, want #123456", PrimaryColor)
	}
	if MutedColor != originalMuted {
		t.Errorf("empty color should keep MutedColor, got %s", MutedColor)
	}
}
