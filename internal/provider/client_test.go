package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/validation"
)

const searchBody = `{"results":[
 {"fsq_id":"4b1","name":"Torchy's Tacos","categories":[{"name":"Taco Place"}],
  "location":{"formatted_address":"1822 S Congress Ave, Austin, TX"},
  "geocodes":{"main":{"latitude":30.2459,"longitude":-97.7515}},
  "distance":420,"website":"https://torchystacos.com","tel":"(512) 555-0100","rating":8.9},
 {"fsq_id":"","name":"no id"},
 {"fsq_id":"4b2","name":" Veracruz ","location":{"address":"1704 E Cesar Chavez","locality":"Austin"}}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL + "/v3/", APIKey: "secret", AllowPrivate: true, Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestClientSearch(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	})

	res, err := c.Search(context.Background(), "taco", places.SearchOptions{Near: "Austin+TX", Limit: 20})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/v3/places/search", got.URL.Path)
	assert.Equal(t, "taco", got.URL.Query().Get("query"))
	assert.Equal(t, "Austin TX", got.URL.Query().Get("near"))
	assert.Equal(t, "20", got.URL.Query().Get("limit"))
	assert.Empty(t, got.URL.Query().Get("ll"))
	assert.Equal(t, "secret", got.Header.Get("Authorization"))
	assert.Contains(t, got.Header.Get("User-Agent"), "nearby")

	require.Len(t, res, 2, "results without an id are skipped")
	assert.Equal(t, "4b1", res[0].ID)
	assert.Equal(t, "Taco Place", res[0].Category)
	assert.Equal(t, 30.2459, res[0].Lat)
	assert.Equal(t, 420, res[0].Distance)
	assert.Equal(t, "(512) 555-0100", res[0].Phone)
	assert.Equal(t, "Veracruz", res[1].Name)
	assert.Equal(t, "1704 E Cesar Chavez, Austin", res[1].Address)
}

func TestClientSearchWithCoordinates(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	res, err := c.Search(context.Background(), "cafe", places.SearchOptions{Near: "Austin", Lat: 30.2672, Lon: -97.7431, HasCoords: true})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.NotNil(t, res)
	assert.Contains(t, query, "ll=30.267200%2C-97.743100")
	assert.NotContains(t, query, "near=")
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   places.FailureClass
	}{
		{"server error", http.StatusBadGateway, "", places.Recoverable},
		{"rate limited", http.StatusTooManyRequests, "", places.Recoverable},
		{"bad request", http.StatusBadRequest, "", places.Unrecoverable},
		{"unauthorized", http.StatusUnauthorized, "", places.Unrecoverable},
		{"malformed body", http.StatusOK, "<html>", places.Unrecoverable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Search(context.Background(), "x", places.SearchOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.want, places.Classify(err))
		})
	}
}

func TestClientTransportFailureIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: base, AllowPrivate: true, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "x", places.SearchOptions{})
	require.Error(t, err)
	assert.Equal(t, places.Recoverable, places.Classify(err))
}

func TestClientDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/places/4b1", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"Torchy's Tacos","website":"https://torchystacos.com"}`))
	})

	p, err := c.Details(context.Background(), "4b1")
	require.NoError(t, err)
	assert.Equal(t, "4b1", p.ID)
	assert.True(t, p.ShowWebsite)

	_, err = c.Details(context.Background(), "../admin")
	assert.ErrorIs(t, err, places.ErrRejected)
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "http://localhost:9000"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrInvalidURL))

	_, err = NewClient(ClientConfig{BaseURL: ""})
	assert.Error(t, err)
}
