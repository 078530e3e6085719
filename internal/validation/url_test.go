package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAndNormalize(t *testing.T) {
	v := NewURLValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
		errorMsg    string
	}{
		{name: "empty URL", input: "", shouldError: true, errorMsg: "URL cannot be empty"},
		{name: "whitespace-only URL", input: "   ", shouldError: true, errorMsg: "URL cannot be empty"},
		{name: "URL without protocol gets HTTPS", input: "api.places.dev/v3", expected: "https://api.places.dev/v3"},
		{name: "HTTP URL preserved", input: "http://api.places.dev", expected: "http://api.places.dev"},
		{name: "surrounding whitespace trimmed", input: "  https://feeds.city.gov/parks.rss ", expected: "https://feeds.city.gov/parks.rss"},
		{name: "URL too long", input: "https://a.dev/" + strings.Repeat("x", 2100), shouldError: true, errorMsg: "too long"},
		{name: "invalid characters", input: "https://a.dev/<b>", shouldError: true, errorMsg: "invalid characters"},
		{name: "ftp rejected", input: "ftp://files.city.gov/feed", shouldError: true, errorMsg: "http or https"},
		{name: "localhost blocked", input: "http://localhost:8080/api", shouldError: true, errorMsg: "localhost"},
		{name: "loopback blocked", input: "http://127.0.0.1:8080", shouldError: true, errorMsg: "localhost"},
		{name: "private IP blocked", input: "http://192.168.1.10/api", shouldError: true, errorMsg: "private IP"},
		{name: "unspecified address", input: "http://0.0.0.0", shouldError: true, errorMsg: "unroutable"},
		{name: "traversal", input: "https://a.dev/../etc/passwd", shouldError: true, errorMsg: "traversal"},
		{name: "script in query", input: "https://a.dev/?q=javascript:alert(1)", shouldError: true, errorMsg: "suspicious"},
		{name: "public IP allowed", input: "http://8.8.8.8/feed", expected: "http://8.8.8.8/feed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("expected error containing %q, got %q", tt.errorMsg, got)
				}
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("expected ErrInvalidURL, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPermissiveValidatorAllowsLocalHosts(t *testing.T) {
	v := NewPermissiveURLValidator()
	for _, input := range []string{"http://localhost:8080", "http://127.0.0.1:4000/api", "http://10.0.0.5"} {
		if _, err := v.ValidateAndNormalize(input); err != nil {
			t.Errorf("%s: unexpected error %v", input, err)
		}
	}
}

func TestValidateBaseURL(t *testing.T) {
	v := NewURLValidator()
	u, err := v.ValidateBaseURL("https://api.places.dev/v3/?key=1#frag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u.String(); got != "https://api.places.dev/v3" {
		t.Errorf("got %q", got)
	}
}
