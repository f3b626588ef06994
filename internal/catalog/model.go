// Package catalog provides the Spotify Web API client used to validate and
// canonicalise tracks and artists.
package catalog

// Track is the subset of Spotify track metadata the bot stores locally.
type Track struct {
	TrackID    string
	Title      string
	ArtistName string
	URL        string
	Year       string
}

// Artist is a canonical Spotify artist.
type Artist struct {
	ID         string
	Name       string
	Popularity int
}

// Wire types for the Spotify Web API responses.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type searchResponse struct {
	Tracks  *trackPage  `json:"tracks"`
	Artists *artistPage `json:"artists"`
}

type trackPage struct {
	Items []trackItem `json:"items"`
}

type artistPage struct {
	Items []artistItem `json:"items"`
}

type trackItem struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []artistItem `json:"artists"`
	Album        albumItem    `json:"album"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type artistItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
}

type albumItem struct {
	ReleaseDate string `json:"release_date"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}
