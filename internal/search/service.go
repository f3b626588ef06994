// Package search implements trading discovery: who owns an Epic, who is
// looking for one, and which users make good trade partners. These are
// plain projections over the collection tables.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/TonnenFred/soundmap-bot/internal/profile"
)

// Owner is a user owning an Epic of a track.
type Owner struct {
	UserID     string `db:"user_id"`
	EpicNumber int    `db:"epic_number"`
}

// Seeker is a user wishing for a track.
type Seeker struct {
	UserID string         `db:"user_id"`
	Note   sql.NullString `db:"note"`
}

// Collector is a user favouriting an artist.
type Collector struct {
	UserID string         `db:"user_id"`
	Badge  sql.NullString `db:"badge"`
}

// TradeMatch pairs another user with a track relevant to a trade.
type TradeMatch struct {
	UserID     string        `db:"user_id"`
	TrackID    string        `db:"track_id"`
	Title      string        `db:"title"`
	ArtistName string        `db:"artist_name"`
	EpicNumber sql.NullInt64 `db:"epic_number"`
}

// TradeReport lists both directions of potential trades for one user.
type TradeReport struct {
	TheyHaveWhatIWant []TradeMatch
	TheyWantWhatIHave []TradeMatch
}

// Service runs discovery queries over the collection tables.
type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// FindOwners returns the owners of an Epic track (by serial number) and
// the users wishing for it.
func (s *Service) FindOwners(ctx context.Context, trackID string) ([]Owner, []Seeker, error) {
	var owners []Owner
	if err := s.db.SelectContext(ctx, &owners, `
		SELECT user_id, epic_number FROM user_epics
		WHERE track_id = ?
		ORDER BY epic_number`, trackID); err != nil {
		return nil, nil, fmt.Errorf("db.SelectContext(owners) > %w", err)
	}

	var seekers []Seeker
	if err := s.db.SelectContext(ctx, &seekers, `
		SELECT user_id, note FROM user_wishlist_epics
		WHERE track_id = ?`, trackID); err != nil {
		return nil, nil, fmt.Errorf("db.SelectContext(seekers) > %w", err)
	}
	return owners, seekers, nil
}

// TradeHelp matches a user's wishlist against other users' Epics and the
// user's Epics against other users' wishlists.
func (s *Service) TradeHelp(ctx context.Context, userID string) (*TradeReport, error) {
	var wishIDs []string
	if err := s.db.SelectContext(ctx, &wishIDs,
		"SELECT track_id FROM user_wishlist_epics WHERE user_id = ?", userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(wish ids) > %w", err)
	}
	var epicIDs []string
	if err := s.db.SelectContext(ctx, &epicIDs,
		"SELECT track_id FROM user_epics WHERE user_id = ?", userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(epic ids) > %w", err)
	}

	report := &TradeReport{}

	if len(wishIDs) > 0 {
		query, args, err := sqlx.In(`
			SELECT ue.user_id, ue.track_id, ue.epic_number, t.title, t.artist_name
			FROM user_epics ue
			JOIN tracks t ON t.track_id = ue.track_id
			WHERE ue.track_id IN (?) AND ue.user_id <> ?`, wishIDs, userID)
		if err != nil {
			return nil, fmt.Errorf("sqlx.In(they have) > %w", err)
		}
		if err := s.db.SelectContext(ctx, &report.TheyHaveWhatIWant, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("db.SelectContext(they have) > %w", err)
		}
	}

	if len(epicIDs) > 0 {
		query, args, err := sqlx.In(`
			SELECT uw.user_id, uw.track_id, t.title, t.artist_name
			FROM user_wishlist_epics uw
			JOIN tracks t ON t.track_id = uw.track_id
			WHERE uw.track_id IN (?) AND uw.user_id <> ?`, epicIDs, userID)
		if err != nil {
			return nil, fmt.Errorf("sqlx.In(they want) > %w", err)
		}
		if err := s.db.SelectContext(ctx, &report.TheyWantWhatIHave, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("db.SelectContext(they want) > %w", err)
		}
	}
	return report, nil
}

// FindCollectors returns the users favouriting an artist, best badge first.
func (s *Service) FindCollectors(ctx context.Context, artistID int64) ([]Collector, error) {
	var collectors []Collector
	if err := s.db.SelectContext(ctx, &collectors, `
		SELECT user_id, badge FROM user_fav_artists
		WHERE artist_id = ?`, artistID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(collectors) > %w", err)
	}

	sort.SliceStable(collectors, func(i, j int) bool {
		ri, rj := badgeRank(collectors[i]), badgeRank(collectors[j])
		if ri != rj {
			return ri > rj
		}
		return collectors[i].UserID > collectors[j].UserID
	})
	return collectors, nil
}

func badgeRank(c Collector) int {
	if !c.Badge.Valid {
		return -1
	}
	return profile.BadgeRank(c.Badge.String)
}
