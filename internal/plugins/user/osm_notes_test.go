package user

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSMNotesPlugin_CanHandle(t *testing.T) {
	plugin := NewOSMNotesPlugin()

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"map fragment", "https://www.openstreetmap.org/#map=17/52.52/13.405", true},
		{"without www", "https://openstreetmap.org/#map=12/48.85/2.35", true},
		{"marker query", "https://www.openstreetmap.org/?mlat=52.52&mlon=13.405#map=17/52.52/13.405", true},
		{"marker only", "https://www.openstreetmap.org/?mlat=52.52&mlon=13.405", true},
		{"fragment with layers", "https://www.openstreetmap.org/#map=15/52.5/13.4&layers=N", true},
		{"no position", "https://www.openstreetmap.org/about", false},
		{"bad coordinates", "https://www.openstreetmap.org/#map=17/123/456", false},
		{"other host", "https://example.com/#map=17/52.52/13.405", false},
		{"unparseable", "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plugin.CanHandle(tt.url))
		})
	}
}

func TestOSMNotesPlugin_ResolveFeed(t *testing.T) {
	plugin := NewOSMNotesPlugin()

	info, err := plugin.ResolveFeed(context.Background(), "https://www.openstreetmap.org/#map=16/52.52/13.405", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.FeedURL, "https://api.openstreetmap.org/api/0.6/notes/feed?bbox="))
	assert.Equal(t, "osm-notes", info.Metadata["plugin"])
	assert.Contains(t, info.Title, "52.5200, 13.4050")

	u, err := url.Parse(info.FeedURL)
	require.NoError(t, err)
	bbox := strings.Split(u.Query().Get("bbox"), ",")
	require.Len(t, bbox, 4)
	assert.Equal(t, info.Metadata["bbox"], u.Query().Get("bbox"))
}

func TestOSMNotesPlugin_LowZoomIsCapped(t *testing.T) {
	plugin := NewOSMNotesPlugin()

	info, err := plugin.ResolveFeed(context.Background(), "https://www.openstreetmap.org/#map=2/0/0", nil)
	require.NoError(t, err)
	assert.Equal(t, "-2.00000,-2.00000,2.00000,2.00000", info.Metadata["bbox"])
}

func TestOSMNotesPlugin_RejectsMissingPosition(t *testing.T) {
	plugin := NewOSMNotesPlugin()

	_, err := plugin.ResolveFeed(context.Background(), "https://www.openstreetmap.org/about", nil)
	assert.Error(t, err)
}
