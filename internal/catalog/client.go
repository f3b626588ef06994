package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

//go:generate mockgen -source=client.go -destination=../mocks/catalog/mock_client.go -package=mock_catalog Client

// Client defines the music catalog lookups used by the command layer.
type Client interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)
	GetTrack(ctx context.Context, trackID string) (*Track, error)
	CanonicalArtist(ctx context.Context, name string) (*Artist, error)
}

// Config holds Spotify API credentials and endpoints. The URLs default to
// the public Spotify endpoints and exist as fields for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	APIURL       string
}

// SpotifyClient implements Client against the Spotify Web API using the
// client-credentials flow. Access tokens are cached until 60 seconds
// before expiry.
type SpotifyClient struct {
	config Config
	http   *resty.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

var _ Client = (*SpotifyClient)(nil)

func NewSpotifyClient(config Config) *SpotifyClient {
	if config.AuthURL == "" {
		config.AuthURL = "https://accounts.spotify.com/api/token"
	}
	if config.APIURL == "" {
		config.APIURL = "https://api.spotify.com/v1"
	}
	return &SpotifyClient{
		config: config,
		http:   resty.New(),
	}
}

// SearchTracks searches tracks by a free text query.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	body, err := c.get(ctx, c.config.APIURL+"/search", map[string]string{
		"q":     query,
		"type":  "track",
		"limit": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("c.get(search tracks) > %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if resp.Tracks == nil {
		return nil, nil
	}
	tracks := make([]Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		tracks = append(tracks, item.toTrack())
	}
	return tracks, nil
}

// SearchArtists searches artists by name.
func (c *SpotifyClient) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	body, err := c.get(ctx, c.config.APIURL+"/search", map[string]string{
		"q":     query,
		"type":  "artist",
		"limit": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("c.get(search artists) > %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if resp.Artists == nil {
		return nil, nil
	}
	artists := make([]Artist, 0, len(resp.Artists.Items))
	for _, item := range resp.Artists.Items {
		artists = append(artists, Artist{ID: item.ID, Name: item.Name, Popularity: item.Popularity})
	}
	return artists, nil
}

// GetTrack fetches a single track by its Spotify ID.
func (c *SpotifyClient) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	body, err := c.get(ctx, c.config.APIURL+"/tracks/"+trackID, nil)
	if err != nil {
		return nil, fmt.Errorf("c.get(track) > %w", err)
	}

	var item trackItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	track := item.toTrack()
	return &track, nil
}

// CanonicalArtist returns the best matching artist for a name, or nil when
// nothing matches.
func (c *SpotifyClient) CanonicalArtist(ctx context.Context, name string) (*Artist, error) {
	artists, err := c.SearchArtists(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, nil
	}
	return &artists[0], nil
}

// ResolveTrack returns the best matching track for a free text query, or
// nil when nothing matches.
func ResolveTrack(ctx context.Context, c Client, query string) (*Track, error) {
	tracks, err := c.SearchTracks(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return &tracks[0], nil
}

func (c *SpotifyClient) get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	var body []byte
	if err := retry.Do(
		func() error {
			token, err := c.token(ctx)
			if err != nil {
				return fmt.Errorf("c.token > %w", err)
			}
			res, err := c.http.R().
				SetContext(ctx).
				SetQueryParams(params).
				SetHeader("Authorization", "Bearer "+token).
				Get(url)
			if err != nil {
				return fmt.Errorf("client.R.Get > %w", err)
			}
			if res.StatusCode() != http.StatusOK {
				err := fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
				if !isRetryableStatus(res.StatusCode()) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			body = res.Body()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
	); err != nil {
		return nil, err
	}
	return body, nil
}

// token returns a cached access token, fetching a new one when the cached
// token is within 60 seconds of expiry.
func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.config.ClientID, c.config.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(c.config.AuthURL)
	if err != nil {
		return "", fmt.Errorf("client.R.Post > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}

	var token tokenResponse
	if err := json.Unmarshal(res.Body(), &token); err != nil {
		return "", fmt.Errorf("json.Unmarshal > %w", err)
	}
	c.accessToken = token.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (item trackItem) toTrack() Track {
	names := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		names = append(names, a.Name)
	}
	year := ""
	if item.Album.ReleaseDate != "" {
		year = strings.SplitN(item.Album.ReleaseDate, "-", 2)[0]
	}
	return Track{
		TrackID:    item.ID,
		Title:      item.Name,
		ArtistName: strings.Join(names, ", "),
		URL:        item.ExternalURLs.Spotify,
		Year:       year,
	}
}
