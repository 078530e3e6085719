package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/plugins"
	"github.com/pders01/nearby/internal/storage"
	"github.com/pders01/nearby/internal/validation"
)

const geoRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:georss="http://www.georss.org/georss" xmlns:geo="http://www.w3.org/2003/01/geo/wgs84_pos#">
	<channel>
		<title>Coffee Map</title>
		<link>http://example.com</link>
		<description>Places worth a detour</description>
		<item>
			<title>Bean There</title>
			<link>https://beanthere.example</link>
			<guid>bean-1</guid>
			<category>Coffee Shop</category>
			<description><![CDATA[<p>Great <b>espresso</b>.</p><address>Hauptstr. 1,<br/>Berlin</address>]]></description>
			<georss:point>52.52 13.405</georss:point>
		</item>
		<item>
			<title>Old Library</title>
			<guid>lib-1</guid>
			<geo:lat>48.85</geo:lat>
			<geo:long>2.35</geo:long>
		</item>
		<item>
			<title>Nowhere</title>
			<guid>bad-point</guid>
			<georss:point>123 456</georss:point>
		</item>
		<item>
			<title></title>
			<guid>blank</guid>
		</item>
	</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:georss="http://www.georss.org/georss">
	<title>Parks</title>
	<id>urn:parks</id>
	<updated>2025-01-01T00:00:00Z</updated>
	<entry>
		<title>Tiergarten</title>
		<id>urn:parks:tiergarten</id>
		<updated>2025-01-01T00:00:00Z</updated>
		<category term="Park"/>
		<georss:point>52.5145 13.3501</georss:point>
	</entry>
</feed>`

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	parsed, err := parser.Parse(strings.NewReader(geoRSS), "https://example.com/map.xml")
	require.NoError(t, err)

	assert.Equal(t, "Coffee Map", parsed.Title)
	assert.Equal(t, 1, parsed.Skipped)
	require.Len(t, parsed.Places, 3)

	bean := parsed.Places[0]
	assert.Equal(t, "Bean There", bean.Name)
	assert.Equal(t, "Coffee Shop", bean.Category)
	assert.Equal(t, "https://beanthere.example", bean.Website)
	assert.Equal(t, "Hauptstr. 1, Berlin", bean.Address)
	assert.InDelta(t, 52.52, bean.Lat, 1e-9)
	assert.InDelta(t, 13.405, bean.Lon, 1e-9)
	assert.Contains(t, bean.Notes, "espresso")
	assert.NotContains(t, bean.Notes, "<p>")
	assert.True(t, strings.HasPrefix(bean.ID, "import:"))

	library := parsed.Places[1]
	assert.InDelta(t, 48.85, library.Lat, 1e-9)
	assert.InDelta(t, 2.35, library.Lon, 1e-9)

	nowhere := parsed.Places[2]
	assert.Zero(t, nowhere.Lat, "out of range coordinates are dropped")
	assert.Zero(t, nowhere.Lon)
}

func TestParser_Atom(t *testing.T) {
	parsed, err := NewParser().Parse(strings.NewReader(atomFeed), "urn:parks")
	require.NoError(t, err)
	require.Len(t, parsed.Places, 1)

	park := parsed.Places[0]
	assert.Equal(t, "Tiergarten", park.Name)
	assert.Equal(t, "Park", park.Category)
	assert.InDelta(t, 52.5145, park.Lat, 1e-9)
}

func TestParser_InvalidFeed(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("not a feed"), "x")
	assert.Error(t, err)
}

func TestGenerateIDIsStable(t *testing.T) {
	a, err := NewParser().Parse(strings.NewReader(geoRSS), "https://example.com/map.xml")
	require.NoError(t, err)
	b, err := NewParser().Parse(strings.NewReader(geoRSS), "https://example.com/map.xml")
	require.NoError(t, err)
	c, err := NewParser().Parse(strings.NewReader(geoRSS), "https://other.example/map.xml")
	require.NoError(t, err)

	assert.Equal(t, a.Places[0].ID, b.Places[0].ID)
	assert.NotEqual(t, a.Places[0].ID, c.Places[0].ID)
	assert.NotEqual(t, a.Places[0].ID, a.Places[1].ID)
}

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no address", "<p>hello</p>", ""},
		{"address element", "<div><address>  Main   St 5 </address></div>", "Main St 5"},
		{"first wins", "<address>A</address><address>B</address>", "A"},
		{"nested markup", "<address><span>Rue 9</span>, <em>Paris</em></address>", "Rue 9, Paris"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractAddress(tt.body))
		})
	}
}

type recordingIndex struct {
	mu    sync.Mutex
	count int
	err   error
}

func (r *recordingIndex) Index(ps []*storage.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count += len(ps)
	return r.err
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "places.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImporter_Import(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "nearby-test")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(geoRSS))
	}))
	defer server.Close()

	store := newTestStore(t)
	index := &recordingIndex{}
	im := New(store, Options{UserAgent: "nearby-test/1.0", AllowPrivate: true, Index: index})

	res, err := im.Import(context.Background(), server.URL+"/map.xml")
	require.NoError(t, err)
	assert.Equal(t, "Coffee Map", res.Title)
	assert.Len(t, res.Places, 3)
	assert.Equal(t, 3, index.count)

	saved, err := store.GetPlace(res.Places[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Bean There", saved.Name)
}

func TestImporter_KeepsFavoriteFlag(t *testing.T) {
	store := newTestStore(t)
	im := New(store, Options{})

	first, err := im.ImportReader(strings.NewReader(geoRSS), "feed")
	require.NoError(t, err)

	fav := first.Places[0].Clone()
	fav.IsFavorite = true
	require.NoError(t, store.SaveFavorite(fav))

	second, err := im.ImportReader(strings.NewReader(geoRSS), "feed")
	require.NoError(t, err)
	assert.True(t, second.Places[0].IsFavorite)
	assert.False(t, second.Places[1].IsFavorite)
}

func TestImporter_IndexFailureIsNotFatal(t *testing.T) {
	store := newTestStore(t)
	im := New(store, Options{Index: &recordingIndex{err: errors.New("index closed")}})

	res, err := im.ImportReader(strings.NewReader(geoRSS), "feed")
	require.NoError(t, err)
	assert.Len(t, res.Places, 3)
}

func TestImporter_RejectsPrivateURLByDefault(t *testing.T) {
	im := New(newTestStore(t), Options{})

	_, err := im.Import(context.Background(), "http://127.0.0.1/feed.xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.ErrInvalidURL)
}

func TestImporter_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   places.FailureClass
	}{
		{"not found", http.StatusNotFound, places.Unrecoverable},
		{"server error", http.StatusBadGateway, places.Recoverable},
		{"rate limited", http.StatusTooManyRequests, places.Recoverable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			im := New(newTestStore(t), Options{AllowPrivate: true})
			_, err := im.Import(context.Background(), server.URL)
			require.Error(t, err)
			assert.Equal(t, tt.want, places.Classify(err))
		})
	}
}

type stubResolver struct {
	feedURL string
	err     error
	asked   []string
}

func (r *stubResolver) ResolveFeed(_ context.Context, url string) (*plugins.FeedInfo, error) {
	r.asked = append(r.asked, url)
	if r.err != nil {
		return nil, r.err
	}
	return &plugins.FeedInfo{OriginalURL: url, FeedURL: r.feedURL, Title: "Resolved map"}, nil
}

func TestImporter_UsesResolvedFeed(t *testing.T) {
	untitled := strings.Replace(geoRSS, "<title>Coffee Map</title>", "", 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes.rss", r.URL.Path)
		_, _ = w.Write([]byte(untitled))
	}))
	defer server.Close()

	resolver := &stubResolver{feedURL: server.URL + "/notes.rss"}
	im := New(newTestStore(t), Options{AllowPrivate: true, Resolver: resolver})

	res, err := im.Import(context.Background(), "https://maps.example/#view")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://maps.example/#view"}, resolver.asked)
	assert.Equal(t, "Resolved map", res.Title, "resolver title fills in for an untitled feed")
	assert.Len(t, res.Places, 3)
}

func TestImporter_ResolverError(t *testing.T) {
	resolver := &stubResolver{err: errors.New("no position")}
	im := New(newTestStore(t), Options{Resolver: resolver})

	_, err := im.Import(context.Background(), "https://maps.example/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no position")
}
