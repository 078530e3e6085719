package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrInvalidURL is wrapped by every URL validation failure.
var ErrInvalidURL = errors.New("invalid URL")

func invalidURL(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidURL, fmt.Sprintf(format, args...))
}

// URLValidator checks URLs for the places API endpoint and for feed imports.
type URLValidator struct {
	AllowLocalhost  bool
	AllowPrivateIPs bool
	MaxLength       int
}

// NewURLValidator blocks localhost and private networks.
func NewURLValidator() *URLValidator {
	return &URLValidator{MaxLength: 2048}
}

// NewPermissiveURLValidator allows local and private hosts, e.g. a self-hosted API.
func NewPermissiveURLValidator() *URLValidator {
	return &URLValidator{AllowLocalhost: true, AllowPrivateIPs: true, MaxLength: 2048}
}

// ValidateAndNormalize returns input as an absolute http(s) URL. A missing
// scheme defaults to https.
func (v *URLValidator) ValidateAndNormalize(input string) (string, error) {
	u, err := v.parse(input)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// ValidateBaseURL validates an API base URL and strips its query, fragment
// and trailing slash.
func (v *URLValidator) ValidateBaseURL(input string) (*url.URL, error) {
	u, err := v.parse(input)
	if err != nil {
		return nil, err
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

func (v *URLValidator) parse(input string) (*url.URL, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, invalidURL("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return nil, invalidURL("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return nil, invalidURL("URL contains invalid characters")
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalidURL("URL must use http or https")
	}
	if u.Hostname() == "" {
		return nil, invalidURL("URL must have a hostname")
	}
	if err := v.checkHost(u.Hostname()); err != nil {
		return nil, err
	}
	if strings.Contains(u.Path, "..") {
		return nil, invalidURL("directory traversal not allowed in path")
	}
	if q := strings.ToLower(u.RawQuery); strings.Contains(q, "<script") || strings.Contains(q, "javascript:") {
		return nil, invalidURL("suspicious query parameters")
	}
	return u, nil
}

func (v *URLValidator) checkHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return invalidURL("localhost URLs are not permitted")
	}
	ip := net.ParseIP(hostname)
	if ip != nil && !v.AllowPrivateIPs && isPrivateIP(ip) {
		return invalidURL("private IP addresses are not permitted")
	}
	if ip != nil && (ip.IsUnspecified() || ip.Equal(net.IPv4bcast)) {
		return invalidURL("unroutable address %s", hostname)
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
