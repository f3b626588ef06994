// Package collection maintains the per-user ordered lists of owned Epics,
// wishlist entries and favourite artists.
//
// Every list keeps a dense, 1-based position column: for a user with N
// entries the set of positions is exactly {1..N}. The engine in this
// package is the only writer of that column.
package collection

import (
	"fmt"
	"strings"
)

// Kind identifies one of the tracked per-user ordered lists.
type Kind int

const (
	KindEpics Kind = iota
	KindWishes
	KindArtists
)

func (k Kind) String() string {
	switch k {
	case KindEpics:
		return "epics"
	case KindWishes:
		return "wishes"
	case KindArtists:
		return "artists"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Key identifies one entry within a user's list. The value arity matches
// the kind's key columns.
type Key []any

// descriptor binds a kind to its table layout. Table and column names are
// fixed here and never taken from callers, so the statement templates
// below are the only SQL ever issued against these tables.
type descriptor struct {
	table      string
	userColumn string
	keyColumns []string
	sortColumn string // users column holding the kind's sort policy
}

var descriptors = map[Kind]descriptor{
	KindEpics: {
		table:      "user_epics",
		userColumn: "user_id",
		keyColumns: []string{"track_id"},
		sortColumn: "epics_sort",
	},
	KindWishes: {
		table:      "user_wishlist_epics",
		userColumn: "user_id",
		keyColumns: []string{"track_id"},
		sortColumn: "wishlist_sort",
	},
	KindArtists: {
		table:      "user_fav_artists",
		userColumn: "user_id",
		keyColumns: []string{"artist_id"},
		sortColumn: "artists_sort",
	},
}

// statements holds the parameterized SQL for one kind, rendered once at
// package initialisation.
type statements struct {
	selectPosition string
	maxPosition    string
	shiftAllDown   string
	openGap        string
	closeGap       string
	setPosition    string
	deleteEntry    string
	compact        string
}

var kindStatements = map[Kind]statements{}

func init() {
	for kind, d := range descriptors {
		kindStatements[kind] = render(d)
	}
}

func render(d descriptor) statements {
	key := keyPredicate(d)
	return statements{
		selectPosition: fmt.Sprintf(
			"SELECT position FROM %s WHERE %s = ? AND %s", d.table, d.userColumn, key),
		maxPosition: fmt.Sprintf(
			"SELECT COALESCE(MAX(position), 0) FROM %s WHERE %s = ?", d.table, d.userColumn),
		shiftAllDown: fmt.Sprintf(
			"UPDATE %s SET position = position + 1 WHERE %s = ?", d.table, d.userColumn),
		openGap: fmt.Sprintf(
			"UPDATE %s SET position = position + 1 WHERE %s = ? AND position >= ? AND position < ?",
			d.table, d.userColumn),
		closeGap: fmt.Sprintf(
			"UPDATE %s SET position = position - 1 WHERE %s = ? AND position <= ? AND position > ?",
			d.table, d.userColumn),
		setPosition: fmt.Sprintf(
			"UPDATE %s SET position = ? WHERE %s = ? AND %s", d.table, d.userColumn, key),
		deleteEntry: fmt.Sprintf(
			"DELETE FROM %s WHERE %s = ? AND %s", d.table, d.userColumn, key),
		compact: fmt.Sprintf(
			"UPDATE %s SET position = position - 1 WHERE %s = ? AND position > ?",
			d.table, d.userColumn),
	}
}

func keyPredicate(d descriptor) string {
	parts := make([]string, len(d.keyColumns))
	for i, col := range d.keyColumns {
		parts[i] = col + " = ?"
	}
	return strings.Join(parts, " AND ")
}
