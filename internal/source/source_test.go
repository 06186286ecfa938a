package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agungatd/daily-data-fetcher/internal/config"
)

func TestResolveShapePresets(t *testing.T) {
	s, err := ResolveShape(config.SourceConfig{Type: "nobel"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.nobelprize.org/2.1/nobelPrizes", s.URL)
	assert.Equal(t, "nobelPrizes", s.Collection)
	assert.Equal(t, "category.en", s.CategoryPath)
	assert.Contains(t, s.RequiredFields, "awardYear")
	assert.False(t, s.CaseSensitive)

	s, err = ResolveShape(config.SourceConfig{Type: "publicapis", CaseSensitive: true})
	require.NoError(t, err)
	assert.Equal(t, "entries", s.Collection)
	assert.Equal(t, "Category", s.CategoryPath)
	assert.True(t, s.CaseSensitive)
}

func TestResolveShapeOverrides(t *testing.T) {
	s, err := ResolveShape(config.SourceConfig{
		Type:           "nobel",
		URL:            "http://mirror.local/prizes",
		RequiredFields: []string{"awardYear"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://mirror.local/prizes", s.URL)
	assert.Equal(t, []string{"awardYear"}, s.RequiredFields)

	// overriding must not leak into the preset table
	p, _ := ResolveShape(config.SourceConfig{Type: "nobel"})
	assert.Len(t, p.RequiredFields, 3)
}

func TestResolveShapeErrors(t *testing.T) {
	_, err := ResolveShape(config.SourceConfig{Type: "weather"})
	assert.ErrorContains(t, err, "unknown source type")

	_, err = ResolveShape(config.SourceConfig{Type: "custom", URL: "http://x"})
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 1, "nobelPrizes": [{"awardYear": "1901", "category": {"en": "Physics"}}]}`))
	}))
	defer server.Close()

	src := NewHTTPSource("nobel", Shape{URL: server.URL, Collection: "nobelPrizes"}, config.CommonHTTP{
		Timeout:   time.Second,
		UserAgent: "daily-fetcher-test",
	})
	payload, err := src.Fetch(context.Background())
	require.NoError(t, err)

	recs, ok := payload.Collection("nobelPrizes")
	assert.True(t, ok)
	assert.Len(t, recs, 1)
	assert.Equal(t, "daily-fetcher-test", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "nobel", src.Name())
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewHTTPSource("nobel", Shape{URL: server.URL}, config.CommonHTTP{Timeout: time.Second})
	_, err := src.Fetch(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestFetchDecodeError(t *testing.T) {
	for name, body := range map[string]string{
		"malformed": `{"nobelPrizes": [`,
		"array":     `[{"awardYear": "1901"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			src := NewHTTPSource("nobel", Shape{URL: server.URL}, config.CommonHTTP{Timeout: time.Second})
			_, err := src.Fetch(context.Background())

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, http.StatusOK, te.StatusCode)
			assert.Contains(t, err.Error(), "decode json")
		})
	}
}

func TestFetchConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	src := NewHTTPSource("nobel", Shape{URL: url}, config.CommonHTTP{Timeout: time.Second})
	_, err := src.Fetch(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestFetchHonoursContext(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	src := NewHTTPSource("nobel", Shape{URL: server.URL}, config.CommonHTTP{})
	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
