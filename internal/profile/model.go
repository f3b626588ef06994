// Package profile manages user collections: owned Epics, wishlist entries
// and favourite artists, each kept in user-controlled order by the
// collection engine.
package profile

import (
	"database/sql"
	"errors"

	"github.com/TonnenFred/soundmap-bot/internal/collection"
)

// ErrAlreadyExists is returned when an entry for the same item is already
// in the user's list.
var ErrAlreadyExists = errors.New("already in the list")

// User is one row of the users table.
type User struct {
	UserID       string                `db:"user_id"`
	Username     sql.NullString        `db:"username"`
	EpicsSort    collection.SortPolicy `db:"epics_sort"`
	WishlistSort collection.SortPolicy `db:"wishlist_sort"`
	ArtistsSort  collection.SortPolicy `db:"artists_sort"`
}

// Epic is one owned Epic joined with its track metadata.
type Epic struct {
	TrackID    string `db:"track_id"`
	EpicNumber int    `db:"epic_number"`
	Position   int    `db:"position"`
	Title      string `db:"title"`
	ArtistName string `db:"artist_name"`
	URL        string `db:"url"`
}

// Wish is one wishlist entry joined with its track metadata.
type Wish struct {
	TrackID    string         `db:"track_id"`
	Note       sql.NullString `db:"note"`
	Position   int            `db:"position"`
	Title      string         `db:"title"`
	ArtistName string         `db:"artist_name"`
	URL        string         `db:"url"`
}

// FavArtist is one favourite artist joined with its artist row.
type FavArtist struct {
	ArtistID int64          `db:"artist_id"`
	Name     string         `db:"name"`
	Badge    sql.NullString `db:"badge"`
	Position int            `db:"position"`
}
