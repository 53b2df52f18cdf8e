package spotify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URL with query params",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc123",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "URL with locale",
			input:    "https://open.spotify.com/intl-ja/track/4uLU6hMCjMI75M1A2tKUQC/",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Plain track ID",
			input:    "4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractTrackID(tt.input)
			assert.Equal(t, tt.expected, result,
				"extractTrackID(%s) should return %s", tt.input, tt.expected)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rate limit error with 429",
			err:      errors.New("Error 429: rate limit exceeded"),
			expected: true,
		},
		{
			name:     "rate limit text",
			err:      errors.New("rate limit exceeded"),
			expected: true,
		},
		{
			name:     "server error 500",
			err:      errors.New("Error 500: internal server error"),
			expected: true,
		},
		{
			name:     "server error 502",
			err:      errors.New("502 Bad Gateway"),
			expected: true,
		},
		{
			name:     "server error 503",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "server error 504",
			err:      errors.New("504 Gateway Timeout"),
			expected: true,
		},
		{
			name:     "client error 400",
			err:      errors.New("400 Bad Request"),
			expected: false,
		},
		{
			name:     "not found error",
			err:      errors.New("404 not found"),
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 5, clampLimit(0, 5))
	assert.Equal(t, 5, clampLimit(-1, 5))
	assert.Equal(t, 12, clampLimit(12, 5))
	assert.Equal(t, 50, clampLimit(500, 5))
}

// newTestClient returns a client talking to a local test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := spotify.New(server.Client(), spotify.WithBaseURL(server.URL+"/"))
	c := newClient(api, Config{Market: "JP", RequestsPerSecond: 1000, Burst: 10})
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_TopTracks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artists/a1/top-tracks", r.URL.Path)
		assert.Equal(t, "JP", r.URL.Query().Get("country"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"tracks": [
				{
					"id": "t1",
					"name": "Song",
					"popularity": 70,
					"duration_ms": 200000,
					"artists": [{"id": "a1", "name": "Artist"}],
					"album": {
						"id": "al1",
						"name": "Album",
						"release_date": "2020-05-01",
						"release_date_precision": "day"
					}
				},
				{
					"id": "t2",
					"name": "Old Song",
					"popularity": 30,
					"artists": [{"id": "a1", "name": "Artist"}],
					"album": {"id": "al2", "name": "Debut", "release_date": "1999", "release_date_precision": "year"}
				}
			]
		}`)
	})

	tracks, err := c.TopTracks(t.Context(), "a1")

	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, "Song", tracks[0].Name)
	assert.Equal(t, 70, tracks[0].Popularity)
	assert.Equal(t, 200*time.Second, tracks[0].Duration)
	assert.Equal(t, []string{"Artist"}, tracks[0].Artists)
	assert.Equal(t, "Album", tracks[0].Album.Name)
	assert.Equal(t, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), tracks[0].Album.ReleaseDate)
	assert.Equal(t, 1999, tracks[1].Album.ReleaseDate.Year())
	assert.True(t, tracks[0].Album.ReleaseDate.After(tracks[1].Album.ReleaseDate))
}

func TestClient_SearchArtists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "artist", r.URL.Query().Get("type"))
		assert.Equal(t, "queen", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"artists": {
				"items": [
					{"id": "q1", "name": "Queen"},
					{"id": "q2", "name": "Queens of the Stone Age"}
				]
			}
		}`)
	})

	artists, err := c.SearchArtists(t.Context(), "queen", 5)

	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, "q1", string(artists[0].ID))
	assert.Equal(t, "Queen", artists[0].Name)
}

func TestClient_SearchArtists_EmptyQuery(t *testing.T) {
	c := newClient(nil, Config{})

	_, err := c.SearchArtists(t.Context(), "", 5)

	assert.Error(t, err)
}

func TestClient_StartPlayback(t *testing.T) {
	var body struct {
		URIs []string `json:"uris"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/me/player/play", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.StartPlayback(t.Context(), "spotify:track:t1")

	require.NoError(t, err)
	assert.Equal(t, []string{"spotify:track:t1"}, body.URIs)
}

func TestClient_ErrorsAreMarkedUnavailable(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error": {"status": 404, "message": "Player command failed: No active device found"}}`)
	})

	err := c.PausePlayback(t.Context())

	require.Error(t, err)
	assert.True(t, cerrors.Is(err, ErrCatalogUnavailable))
	assert.Equal(t, 1, calls, "client errors are not retried")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error": {"status": 503, "message": "503 Service Unavailable"}}`)
	})

	_, err := c.TopTracks(t.Context(), "a1")

	require.Error(t, err)
	assert.True(t, cerrors.Is(err, ErrCatalogUnavailable))
	assert.Equal(t, 3, calls)
}
