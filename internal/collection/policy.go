package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TonnenFred/soundmap-bot/internal/database"
)

// SortPolicy selects which column drives a list's displayed order. The
// position column is maintained under every policy, so switching to manual
// is instantaneous and picks up the last known manual arrangement.
type SortPolicy string

const (
	SortByName  SortPolicy = "name"
	SortByAdded SortPolicy = "added"
	SortManual  SortPolicy = "manual"
)

// DefaultPolicy applies to users who never set a sort mode.
const DefaultPolicy = SortByAdded

func (p SortPolicy) Valid() bool {
	switch p {
	case SortByName, SortByAdded, SortManual:
		return true
	}
	return false
}

// orderQueries maps each kind and policy to the query returning entry keys
// in display order. Name ordering is case-insensitive with a stable id
// tie-break; added ordering follows insertion sequence.
var orderQueries = map[Kind]map[SortPolicy]string{
	KindEpics: {
		SortByName: `SELECT ue.track_id FROM user_epics ue
			JOIN tracks t ON t.track_id = ue.track_id
			WHERE ue.user_id = ?
			ORDER BY t.artist_name COLLATE NOCASE, t.title COLLATE NOCASE, ue.track_id`,
		SortByAdded: `SELECT track_id FROM user_epics WHERE user_id = ? ORDER BY added_at, rowid`,
		SortManual:  `SELECT track_id FROM user_epics WHERE user_id = ? ORDER BY position`,
	},
	KindWishes: {
		SortByName: `SELECT uw.track_id FROM user_wishlist_epics uw
			JOIN tracks t ON t.track_id = uw.track_id
			WHERE uw.user_id = ?
			ORDER BY t.artist_name COLLATE NOCASE, t.title COLLATE NOCASE, uw.track_id`,
		SortByAdded: `SELECT track_id FROM user_wishlist_epics WHERE user_id = ? ORDER BY added_at, rowid`,
		SortManual:  `SELECT track_id FROM user_wishlist_epics WHERE user_id = ? ORDER BY position`,
	},
	KindArtists: {
		SortByName: `SELECT ufa.artist_id FROM user_fav_artists ufa
			JOIN artists a ON a.artist_id = ufa.artist_id
			WHERE ufa.user_id = ?
			ORDER BY a.name COLLATE NOCASE, a.artist_id`,
		SortByAdded: `SELECT artist_id FROM user_fav_artists WHERE user_id = ? ORDER BY added_at, rowid`,
		SortManual:  `SELECT artist_id FROM user_fav_artists WHERE user_id = ? ORDER BY position`,
	},
}

// Resolver reads and switches per-user sort policies and materializes the
// effective display order of a list.
type Resolver struct {
	db *sqlx.DB
}

func NewResolver(db *sqlx.DB) *Resolver {
	return &Resolver{db: db}
}

// Policy returns the user's stored policy for the kind, or the default for
// users who never set one.
func (r *Resolver) Policy(ctx context.Context, userID string, kind Kind) (SortPolicy, error) {
	return policyOf(ctx, r.db, userID, kind)
}

// EffectiveOrder returns the entry keys of the user's list in display
// order under the currently stored policy.
func (r *Resolver) EffectiveOrder(ctx context.Context, userID string, kind Kind) ([]Key, error) {
	policy, err := policyOf(ctx, r.db, userID, kind)
	if err != nil {
		return nil, err
	}
	return orderedKeys(ctx, r.db, userID, kind, policy)
}

// SetPolicy stores a new sort policy for the user's list. Switching to any
// policy other than manual immediately rewrites the position column to
// match that policy, so a later switch back to manual starts from the last
// displayed order. Switching into manual has no side effect.
func (r *Resolver) SetPolicy(ctx context.Context, userID string, kind Kind, policy SortPolicy) error {
	if !policy.Valid() {
		return fmt.Errorf("unknown sort policy %q", policy)
	}
	d := descriptors[kind]

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO users(user_id) VALUES(?) ON CONFLICT DO NOTHING", userID); err != nil {
			return fmt.Errorf("tx.ExecContext(ensure user) > %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE users SET %s = ? WHERE user_id = ?", d.sortColumn),
			policy, userID); err != nil {
			return fmt.Errorf("tx.ExecContext(set %s) > %w", d.sortColumn, err)
		}
		if policy == SortManual {
			return nil
		}
		keys, err := orderedKeys(ctx, tx, userID, kind, policy)
		if err != nil {
			return err
		}
		return ReorderAll(ctx, tx, kind, userID, keys)
	})
}

func policyOf(ctx context.Context, q sqlx.ExtContext, userID string, kind Kind) (SortPolicy, error) {
	d := descriptors[kind]

	var policy SortPolicy
	err := sqlx.GetContext(ctx, q, &policy,
		fmt.Sprintf("SELECT %s FROM users WHERE user_id = ?", d.sortColumn), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPolicy, nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlx.GetContext(%s) > %w", d.sortColumn, err)
	}
	if !policy.Valid() {
		return DefaultPolicy, nil
	}
	return policy, nil
}

func orderedKeys(ctx context.Context, q sqlx.ExtContext, userID string, kind Kind, policy SortPolicy) ([]Key, error) {
	query := orderQueries[kind][policy]

	rows, err := q.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("q.QueryxContext(order %s/%s) > %w", kind, policy, err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows.Scan(order %s) > %w", kind, err)
		}
		keys = append(keys, Key{id})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err(order %s) > %w", kind, err)
	}
	return keys, nil
}
