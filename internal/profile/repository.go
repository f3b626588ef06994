package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/database"
)

// UserRepository manages the users table.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure creates the user row on first use.
func (r *UserRepository) Ensure(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO users(user_id) VALUES(?) ON CONFLICT DO NOTHING", userID); err != nil {
		return fmt.Errorf("db.ExecContext(ensure user) > %w", err)
	}
	return nil
}

// SetUsername sets the in-game username.
func (r *UserRepository) SetUsername(ctx context.Context, userID, name string) error {
	if err := r.Ensure(ctx, userID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET username = ? WHERE user_id = ?", name, userID); err != nil {
		return fmt.Errorf("db.ExecContext(set username) > %w", err)
	}
	return nil
}

// Find returns the user row, or nil when the user is unknown.
func (r *UserRepository) Find(ctx context.Context, userID string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(user) > %w", err)
	}
	return &user, nil
}

// EpicRepository manages owned Epics. A user owns at most one Epic per
// song; the serial number is payload, not part of the key.
type EpicRepository struct {
	db       *sqlx.DB
	resolver *collection.Resolver
}

func NewEpicRepository(db *sqlx.DB) *EpicRepository {
	return &EpicRepository{db: db, resolver: collection.NewResolver(db)}
}

// Add inserts a new Epic at the top of the user's list.
func (r *EpicRepository) Add(ctx context.Context, userID string, track catalog.Track, epicNumber int) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := upsertTrack(ctx, tx, track); err != nil {
			return err
		}
		owned, err := epicExists(ctx, tx, userID, track.TrackID)
		if err != nil {
			return err
		}
		if owned {
			return fmt.Errorf("%w: epic %s", ErrAlreadyExists, track.TrackID)
		}
		pos, err := collection.OpenTop(ctx, tx, collection.KindEpics, userID)
		if err != nil {
			return err
		}
		return insertEpic(ctx, tx, userID, track.TrackID, epicNumber, pos)
	})
}

// AddLast inserts a new Epic at the end of the user's list. Used by bulk
// import so a file keeps its order.
func (r *EpicRepository) AddLast(ctx context.Context, userID string, track catalog.Track, epicNumber int) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := upsertTrack(ctx, tx, track); err != nil {
			return err
		}
		owned, err := epicExists(ctx, tx, userID, track.TrackID)
		if err != nil {
			return err
		}
		if owned {
			return fmt.Errorf("%w: epic %s", ErrAlreadyExists, track.TrackID)
		}
		pos, err := collection.NextPosition(ctx, tx, collection.KindEpics, userID)
		if err != nil {
			return err
		}
		return insertEpic(ctx, tx, userID, track.TrackID, epicNumber, pos)
	})
}

// Remove deletes an Epic and compacts the remaining positions.
func (r *EpicRepository) Remove(ctx context.Context, userID, trackID string) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return collection.Remove(ctx, tx, collection.KindEpics, userID, collection.Key{trackID})
	})
}

// Move repositions an Epic in the manual order.
func (r *EpicRepository) Move(ctx context.Context, userID, trackID string, target int) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return collection.Move(ctx, tx, collection.KindEpics, userID, collection.Key{trackID}, target)
	})
}

// List returns the user's Epics in the currently effective display order.
func (r *EpicRepository) List(ctx context.Context, userID string) ([]Epic, error) {
	var epics []Epic
	if err := r.db.SelectContext(ctx, &epics, `
		SELECT ue.track_id, ue.epic_number, ue.position, t.title, t.artist_name, t.url
		FROM user_epics ue
		JOIN tracks t ON t.track_id = ue.track_id
		WHERE ue.user_id = ?
		ORDER BY ue.position`, userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(epics) > %w", err)
	}

	keys, err := r.resolver.EffectiveOrder(ctx, userID, collection.KindEpics)
	if err != nil {
		return nil, err
	}
	return orderBy(epics, keys, func(e Epic) string { return e.TrackID }), nil
}

// WishRepository manages the wishlist.
type WishRepository struct {
	db       *sqlx.DB
	resolver *collection.Resolver
}

func NewWishRepository(db *sqlx.DB) *WishRepository {
	return &WishRepository{db: db, resolver: collection.NewResolver(db)}
}

// Add inserts a wish at the top of the list. Re-adding an existing wish
// only updates its note; the returned bool reports whether a new entry was
// created.
func (r *WishRepository) Add(ctx context.Context, userID string, track catalog.Track, note string) (bool, error) {
	created := false
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := upsertTrack(ctx, tx, track); err != nil {
			return err
		}

		var exists int
		err := sqlx.GetContext(ctx, tx, &exists,
			"SELECT 1 FROM user_wishlist_epics WHERE user_id = ? AND track_id = ?", userID, track.TrackID)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				"UPDATE user_wishlist_epics SET note = ? WHERE user_id = ? AND track_id = ?",
				nullable(note), userID, track.TrackID)
			if err != nil {
				return fmt.Errorf("tx.ExecContext(update wish note) > %w", err)
			}
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sqlx.GetContext(wish exists) > %w", err)
		}

		pos, err := collection.OpenTop(ctx, tx, collection.KindWishes, userID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_wishlist_epics(user_id, track_id, note, position) VALUES(?,?,?,?)",
			userID, track.TrackID, nullable(note), pos); err != nil {
			return fmt.Errorf("tx.ExecContext(insert wish) > %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

// Remove deletes a wish and compacts the remaining positions.
func (r *WishRepository) Remove(ctx context.Context, userID, trackID string) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return collection.Remove(ctx, tx, collection.KindWishes, userID, collection.Key{trackID})
	})
}

// Move repositions a wish in the manual order.
func (r *WishRepository) Move(ctx context.Context, userID, trackID string, target int) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return collection.Move(ctx, tx, collection.KindWishes, userID, collection.Key{trackID}, target)
	})
}

// List returns the wishlist in the currently effective display order.
func (r *WishRepository) List(ctx context.Context, userID string) ([]Wish, error) {
	var wishes []Wish
	if err := r.db.SelectContext(ctx, &wishes, `
		SELECT uw.track_id, uw.note, uw.position, t.title, t.artist_name, t.url
		FROM user_wishlist_epics uw
		JOIN tracks t ON t.track_id = uw.track_id
		WHERE uw.user_id = ?
		ORDER BY uw.position`, userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(wishes) > %w", err)
	}

	keys, err := r.resolver.EffectiveOrder(ctx, userID, collection.KindWishes)
	if err != nil {
		return nil, err
	}
	return orderBy(wishes, keys, func(w Wish) string { return w.TrackID }), nil
}

// ArtistRepository manages favourite artists and their badges.
type ArtistRepository struct {
	db       *sqlx.DB
	resolver *collection.Resolver
}

func NewArtistRepository(db *sqlx.DB) *ArtistRepository {
	return &ArtistRepository{db: db, resolver: collection.NewResolver(db)}
}

// Add favourites an artist by canonical name, inserting at the top of the
// list. Re-adding only updates the badge when one is given; the returned
// bool reports whether a new entry was created.
func (r *ArtistRepository) Add(ctx context.Context, userID, name, badge string) (bool, error) {
	created := false
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		artistID, err := ensureArtist(ctx, tx, name)
		if err != nil {
			return err
		}

		var exists int
		err = sqlx.GetContext(ctx, tx, &exists,
			"SELECT 1 FROM user_fav_artists WHERE user_id = ? AND artist_id = ?", userID, artistID)
		if err == nil {
			if badge == "" {
				return nil
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE user_fav_artists SET badge = ? WHERE user_id = ? AND artist_id = ?",
				badge, userID, artistID); err != nil {
				return fmt.Errorf("tx.ExecContext(update badge) > %w", err)
			}
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sqlx.GetContext(favourite exists) > %w", err)
		}

		pos, err := collection.OpenTop(ctx, tx, collection.KindArtists, userID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_fav_artists(user_id, artist_id, badge, position) VALUES(?,?,?,?)",
			userID, artistID, nullable(badge), pos); err != nil {
			return fmt.Errorf("tx.ExecContext(insert favourite) > %w", err)
		}
		created = true
		return nil
	})
	return created, err
}

// SetBadge updates the badge of an already favourited artist.
func (r *ArtistRepository) SetBadge(ctx context.Context, userID string, artistID int64, badge string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE user_fav_artists SET badge = ? WHERE user_id = ? AND artist_id = ?",
		badge, userID, artistID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(set badge) > %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("res.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: favourite artist %d", collection.ErrNotFound, artistID)
	}
	return nil
}

// FindIDByName resolves a canonical artist name to its local id. Returns
// ErrNotFound when the artist was never stored.
func (r *ArtistRepository) FindIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, "SELECT artist_id FROM artists WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: artist %q", collection.ErrNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("db.GetContext(artist id) > %w", err)
	}
	return id, nil
}

// Remove unfavourites an artist and compacts the remaining positions.
func (r *ArtistRepository) Remove(ctx context.Context, userID string, artistID int64) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return collection.Remove(ctx, tx, collection.KindArtists, userID, collection.Key{artistID})
	})
}

// Move repositions a favourite artist in the manual order.
func (r *ArtistRepository) Move(ctx context.Context, userID string, artistID int64, target int) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return collection.Move(ctx, tx, collection.KindArtists, userID, collection.Key{artistID}, target)
	})
}

// List returns the favourite artists in the currently effective display order.
func (r *ArtistRepository) List(ctx context.Context, userID string) ([]FavArtist, error) {
	var favs []FavArtist
	if err := r.db.SelectContext(ctx, &favs, `
		SELECT ufa.artist_id, a.name, ufa.badge, ufa.position
		FROM user_fav_artists ufa
		JOIN artists a ON a.artist_id = ufa.artist_id
		WHERE ufa.user_id = ?
		ORDER BY ufa.position`, userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(favourites) > %w", err)
	}

	keys, err := r.resolver.EffectiveOrder(ctx, userID, collection.KindArtists)
	if err != nil {
		return nil, err
	}
	return orderBy(favs, keys, func(f FavArtist) string { return fmt.Sprint(f.ArtistID) }), nil
}

func ensureUser(ctx context.Context, q sqlx.ExtContext, userID string) error {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO users(user_id) VALUES(?) ON CONFLICT DO NOTHING", userID); err != nil {
		return fmt.Errorf("q.ExecContext(ensure user) > %w", err)
	}
	return nil
}

func upsertTrack(ctx context.Context, q sqlx.ExtContext, t catalog.Track) error {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO tracks(track_id, title, artist_name, url)
		VALUES(?,?,?,?)
		ON CONFLICT(track_id) DO UPDATE
		  SET title = excluded.title,
		      artist_name = excluded.artist_name,
		      url = excluded.url`,
		t.TrackID, t.Title, t.ArtistName, t.URL); err != nil {
		return fmt.Errorf("q.ExecContext(upsert track) > %w", err)
	}
	return nil
}

func ensureArtist(ctx context.Context, q sqlx.ExtContext, name string) (int64, error) {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO artists(name) VALUES(?) ON CONFLICT(name) DO NOTHING", name); err != nil {
		return 0, fmt.Errorf("q.ExecContext(insert artist) > %w", err)
	}
	var id int64
	if err := sqlx.GetContext(ctx, q, &id,
		"SELECT artist_id FROM artists WHERE name = ?", name); err != nil {
		return 0, fmt.Errorf("sqlx.GetContext(artist id) > %w", err)
	}
	return id, nil
}

func epicExists(ctx context.Context, q sqlx.ExtContext, userID, trackID string) (bool, error) {
	var exists int
	err := sqlx.GetContext(ctx, q, &exists,
		"SELECT 1 FROM user_epics WHERE user_id = ? AND track_id = ?", userID, trackID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlx.GetContext(epic exists) > %w", err)
	}
	return true, nil
}

func insertEpic(ctx context.Context, q sqlx.ExtContext, userID, trackID string, epicNumber, position int) error {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO user_epics(user_id, track_id, epic_number, position) VALUES(?,?,?,?)",
		userID, trackID, epicNumber, position); err != nil {
		return fmt.Errorf("q.ExecContext(insert epic) > %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// orderBy arranges rows to match the key order produced by the resolver.
// Rows are keyed by their stringified entry key.
func orderBy[T any](rows []T, keys []collection.Key, keyOf func(T) string) []T {
	byKey := make(map[string]T, len(rows))
	for _, row := range rows {
		byKey[keyOf(row)] = row
	}
	ordered := make([]T, 0, len(rows))
	for _, key := range keys {
		if row, ok := byKey[fmt.Sprint(key[0])]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered
}
