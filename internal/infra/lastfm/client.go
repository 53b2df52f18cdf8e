// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Client is a Last.fm API client.
// Responses are cached for the lifetime of the client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// Cache for artist lists, keyed by method and parameters
	artistCache map[string][]Artist

	// Mutex for cache access
	cacheMu sync.RWMutex
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey string
}

// Artist represents an artist returned by Last.fm.
type Artist struct {
	Name  string
	Match float64 // Similarity in [0, 1]; zero for tag charts
}

// GetSimilarResponse represents the response from artist.getSimilar API.
type GetSimilarResponse struct {
	SimilarArtists struct {
		Artist []struct {
			Name  string `json:"name"`
			Match string `json:"match"`
		} `json:"artist"`
	} `json:"similarartists"`
}

// GetTagTopArtistsResponse represents the response from tag.getTopArtists API.
type GetTagTopArtistsResponse struct {
	TopArtists struct {
		Artist []struct {
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"topartists"`
}

// LastFMError represents an error response from Last.fm API.
type LastFMError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}

	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     "https://ws.audioscrobbler.com/2.0/",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		artistCache: make(map[string][]Artist),
	}, nil
}

// GetSimilarArtists retrieves artists similar to artistName.
// Reference: https://www.last.fm/api/show/artist.getSimilar
func (c *Client) GetSimilarArtists(ctx context.Context, artistName string, limit int) ([]Artist, error) {
	if artistName == "" {
		return nil, errors.New("artist name is required")
	}
	limit = clampLimit(limit)

	cacheKey := fmt.Sprintf("similar:%s:%d", artistName, limit)
	if cached, ok := c.cached(cacheKey); ok {
		zlog.Debug().Msgf("using cached similar artists: %s", artistName)
		return cached, nil
	}

	params := url.Values{}
	params.Set("method", "artist.getSimilar")
	params.Set("artist", artistName)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("autocorrect", "1")

	var response GetSimilarResponse
	if err := c.get(ctx, params, &response); err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(response.SimilarArtists.Artist))
	for _, a := range response.SimilarArtists.Artist {
		match, _ := strconv.ParseFloat(a.Match, 64)
		artists = append(artists, Artist{Name: a.Name, Match: match})
	}

	c.store(cacheKey, artists)
	zlog.Debug().Msgf("cached similar artists: %s (count: %d)", artistName, len(artists))
	return artists, nil
}

// GetTagTopArtists retrieves the top artists for a tag.
// Reference: https://www.last.fm/api/show/tag.getTopArtists
func (c *Client) GetTagTopArtists(ctx context.Context, tagName string, limit int) ([]Artist, error) {
	if tagName == "" {
		return nil, errors.New("tag name is required")
	}
	limit = clampLimit(limit)

	cacheKey := fmt.Sprintf("tagartists:%s:%d", tagName, limit)
	if cached, ok := c.cached(cacheKey); ok {
		zlog.Debug().Msgf("using cached top artists for tag: %s", tagName)
		return cached, nil
	}

	params := url.Values{}
	params.Set("method", "tag.getTopArtists")
	params.Set("tag", tagName)
	params.Set("limit", fmt.Sprintf("%d", limit))

	var response GetTagTopArtistsResponse
	if err := c.get(ctx, params, &response); err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(response.TopArtists.Artist))
	for i, a := range response.TopArtists.Artist {
		if i >= limit {
			break
		}
		artists = append(artists, Artist{Name: a.Name})
	}

	c.store(cacheKey, artists)
	zlog.Debug().Msgf("cached top artists for tag: %s (count: %d)", tagName, len(artists))
	return artists, nil
}

// get performs a GET request and decodes a successful JSON response into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// Check for Last.fm API errors
	var apiError LastFMError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != 0 {
		return errors.Errorf("last.fm API error %d: %s", apiError.Error, apiError.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

func (c *Client) cached(key string) ([]Artist, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	artists, ok := c.artistCache[key]
	return artists, ok
}

func (c *Client) store(key string, artists []Artist) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.artistCache[key] = artists
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
