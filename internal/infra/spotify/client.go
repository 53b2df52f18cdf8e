// Package spotify provides a client for the Spotify API.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/osa030/seedmix/internal/domain/artist"
	"github.com/osa030/seedmix/internal/domain/track"
)

// ErrCatalogUnavailable marks every error returned by a Spotify API call.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Scopes are the OAuth scopes the client needs.
var Scopes = []string{
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	Market            string
	RequestsPerSecond float64
	Burst             int
}

// New creates a new Spotify client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(Scopes...),
	)

	// Create token from refresh token
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	// Get HTTP client with auto-refresh capability
	httpClient := auth.Client(ctx, token)

	return newClient(spotify.New(httpClient), cfg), nil
}

func newClient(api *spotify.Client, cfg Config) *Client {
	market := cfg.Market
	if market == "" {
		market = "US"
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		client:     api,
		market:     market,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// CurrentUserID returns the ID of the authenticated user.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var user *spotify.PrivateUser
	err := c.retry(ctx, func() error {
		u, err := c.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return "", unavailable(err, "failed to get current user")
	}
	return user.ID, nil
}

// SearchArtists searches for artists matching query.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]artist.Artist, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}
	limit = clampLimit(limit, 5)

	var result *spotify.SearchResult
	err := c.retry(ctx, func() error {
		r, err := c.client.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(limit))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, unavailable(err, "failed to search artists")
	}

	if result.Artists == nil {
		return []artist.Artist{}, nil
	}
	return convertArtists(result.Artists.Artists, limit), nil
}

// TopArtists returns the current user's top artists.
func (c *Client) TopArtists(ctx context.Context, limit int) ([]artist.Artist, error) {
	limit = clampLimit(limit, 5)

	var page *spotify.FullArtistPage
	err := c.retry(ctx, func() error {
		p, err := c.client.CurrentUsersTopArtists(ctx, spotify.Limit(limit))
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, unavailable(err, "failed to get top artists")
	}

	return convertArtists(page.Artists, limit), nil
}

// RelatedArtists returns up to limit artists related to artistID.
func (c *Client) RelatedArtists(ctx context.Context, artistID artist.ID, limit int) ([]artist.Artist, error) {
	limit = clampLimit(limit, 5)

	var related []spotify.FullArtist
	err := c.retry(ctx, func() error {
		r, err := c.client.GetRelatedArtists(ctx, spotify.ID(artistID))
		if err != nil {
			return err
		}
		related = r
		return nil
	})
	if err != nil {
		return nil, unavailable(err, "failed to get related artists")
	}

	return convertArtists(related, limit), nil
}

// TopTracks returns the artist's top tracks in catalog order.
func (c *Client) TopTracks(ctx context.Context, artistID artist.ID) ([]track.Track, error) {
	var result []spotify.FullTrack
	err := c.retry(ctx, func() error {
		r, err := c.client.GetArtistsTopTracks(ctx, spotify.ID(artistID), c.market)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, unavailable(err, "failed to get top tracks")
	}

	tracks := make([]track.Track, 0, len(result))
	for i := range result {
		tracks = append(tracks, convertTrack(&result[i]))
	}
	return tracks, nil
}

// CreatePlaylist creates a new playlist owned by ownerID.
func (c *Client) CreatePlaylist(ctx context.Context, ownerID, name string, public bool) (string, error) {
	var playlist *spotify.FullPlaylist
	err := c.retry(ctx, func() error {
		p, err := c.client.CreatePlaylistForUser(ctx, ownerID, name, "", public, false)
		if err != nil {
			return err
		}
		playlist = p
		return nil
	})
	if err != nil {
		return "", unavailable(err, "failed to create playlist")
	}

	return string(playlist.ID), nil
}

// AddTracksToPlaylist adds tracks to a playlist.
// trackIDs can be Spotify IDs, URLs, or URIs.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := make([]spotify.ID, len(trackIDs))
	for i, trackID := range trackIDs {
		ids[i] = spotify.ID(extractTrackID(trackID))
	}

	// Spotify allows max 100 tracks per request
	for i := 0; i < len(ids); i += 100 {
		end := min(i+100, len(ids))
		batch := ids[i:end]

		err := c.retry(ctx, func() error {
			_, err := c.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...)
			return err
		})
		if err != nil {
			return unavailable(err, "failed to add tracks to playlist")
		}
	}

	return nil
}

// StartPlayback starts playing a single track on the user's active device.
func (c *Client) StartPlayback(ctx context.Context, trackURI string) error {
	uri := spotify.URI("spotify:track:" + extractTrackID(trackURI))
	err := c.retry(ctx, func() error {
		return c.client.PlayOpt(ctx, &spotify.PlayOptions{
			URIs: []spotify.URI{uri},
		})
	})
	if err != nil {
		return unavailable(err, "failed to start playback")
	}
	return nil
}

// PausePlayback pauses playback on the user's active device.
func (c *Client) PausePlayback(ctx context.Context) error {
	err := c.retry(ctx, func() error {
		return c.client.Pause(ctx)
	})
	if err != nil {
		return unavailable(err, "failed to pause playback")
	}
	return nil
}

// GetPlaylistURL returns the Spotify URL for a playlist.
func (c *Client) GetPlaylistURL(playlistID string) string {
	return fmt.Sprintf("https://open.spotify.com/playlist/%s", playlistID)
}

// GetTrackURL returns the Spotify URL for a track.
func GetTrackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
}

// convertTrack converts a Spotify FullTrack to domain Track.
func convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	var released time.Time
	if t.Album.ReleaseDate != "" {
		released = t.Album.ReleaseDateTime()
	}

	return track.Track{
		ID:      string(t.ID),
		Name:    t.Name,
		Artists: artists,
		Album: track.AlbumRef{
			ID:                   string(t.Album.ID),
			Name:                 t.Album.Name,
			ReleaseDate:          released,
			ReleaseDatePrecision: t.Album.ReleaseDatePrecision,
		},
		Duration:   time.Duration(t.Duration) * time.Millisecond,
		URL:        GetTrackURL(string(t.ID)),
		Popularity: int(t.Popularity),
	}
}

// convertArtists converts up to limit Spotify artists to domain artists.
func convertArtists(src []spotify.FullArtist, limit int) []artist.Artist {
	if len(src) > limit {
		src = src[:limit]
	}
	result := make([]artist.Artist, 0, len(src))
	for _, a := range src {
		result = append(result, artist.Artist{
			ID:   artist.ID(a.ID),
			Name: a.Name,
		})
	}
	return result
}

// clampLimit keeps limit within the API's 1..50 range.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 50 {
		return 50
	}
	return limit
}

// unavailable wraps err and marks it as a catalog failure.
func unavailable(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrCatalogUnavailable)
}

// retry retries an operation with linear backoff. Every attempt waits for
// the rate limiter first.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter wait aborted")
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "retry aborted")
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:track:TRACK_ID
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	// Handle URL format: https://open.spotify.com/track/TRACK_ID or https://open.spotify.com/intl-XX/track/TRACK_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			// Remove query parameters and trailing slashes
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	// Assume it's already a track ID
	return input
}
