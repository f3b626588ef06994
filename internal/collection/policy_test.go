package collection_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/testutil"
)

func TestSortPolicy_Valid(t *testing.T) {
	assert.True(t, collection.SortByName.Valid())
	assert.True(t, collection.SortByAdded.Valid())
	assert.True(t, collection.SortManual.Valid())
	assert.False(t, collection.SortPolicy("random").Valid())
	assert.False(t, collection.SortPolicy("").Valid())
}

func TestResolver_Policy_Default(t *testing.T) {
	db := testutil.OpenTestDB(t)
	resolver := collection.NewResolver(db)

	policy, err := resolver.Policy(context.Background(), "never-seen", collection.KindEpics)
	require.NoError(t, err)
	assert.Equal(t, collection.SortByAdded, policy)
}

func TestResolver_SetPolicy_Invalid(t *testing.T) {
	db := testutil.OpenTestDB(t)
	resolver := collection.NewResolver(db)

	err := resolver.SetPolicy(context.Background(), testUser, collection.KindEpics, "random")
	assert.ErrorContains(t, err, "unknown sort policy")
}

// seedFavourites inserts artists favourited in the given order, prepending
// like the repository does, so the first name ends up at the bottom.
func seedFavourites(t *testing.T, db *sqlx.DB, userID string, names ...string) map[string]int64 {
	t.Helper()
	testutil.SeedUser(t, db, userID)

	ids := make(map[string]int64, len(names))
	for _, name := range names {
		ids[name] = testutil.SeedArtist(t, db, name)
	}
	for i, name := range names {
		_, err := db.Exec(
			"INSERT INTO user_fav_artists(user_id, artist_id, position) VALUES(?,?,?)",
			userID, ids[name], len(names)-i)
		require.NoError(t, err)
	}
	return ids
}

func favouriteNames(t *testing.T, db *sqlx.DB, userID string) []string {
	t.Helper()
	var names []string
	require.NoError(t, db.Select(&names, `
		SELECT a.name FROM user_fav_artists ufa
		JOIN artists a ON a.artist_id = ufa.artist_id
		WHERE ufa.user_id = ?
		ORDER BY ufa.position`, userID))
	return names
}

func TestResolver_SetPolicy_NameRewritesPositions(t *testing.T) {
	db := testutil.OpenTestDB(t)
	seedFavourites(t, db, testUser, "Banana", "apple", "Cherry")
	resolver := collection.NewResolver(db)

	require.NoError(t, resolver.SetPolicy(context.Background(), testUser,
		collection.KindArtists, collection.SortByName))

	// Case-insensitive: apple sorts before Banana.
	assert.Equal(t, []string{"apple", "Banana", "Cherry"}, favouriteNames(t, db, testUser))

	policy, err := resolver.Policy(context.Background(), testUser, collection.KindArtists)
	require.NoError(t, err)
	assert.Equal(t, collection.SortByName, policy)
}

func TestResolver_SetPolicy_ManualKeepsPositions(t *testing.T) {
	db := testutil.OpenTestDB(t)
	seedFavourites(t, db, testUser, "Banana", "apple", "Cherry")
	resolver := collection.NewResolver(db)

	before := favouriteNames(t, db, testUser)
	require.NoError(t, resolver.SetPolicy(context.Background(), testUser,
		collection.KindArtists, collection.SortManual))
	assert.Equal(t, before, favouriteNames(t, db, testUser))
}

func TestResolver_SetPolicy_RoundTrip(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ids := seedFavourites(t, db, testUser, "Banana", "apple", "Cherry")
	resolver := collection.NewResolver(db)
	ctx := context.Background()

	// Sorting by name materializes the alphabetical order, so a later
	// switch back to manual starts from it.
	require.NoError(t, resolver.SetPolicy(ctx, testUser, collection.KindArtists, collection.SortByName))
	require.NoError(t, resolver.SetPolicy(ctx, testUser, collection.KindArtists, collection.SortManual))
	assert.Equal(t, []string{"apple", "Banana", "Cherry"}, favouriteNames(t, db, testUser))

	// Manual moves then apply on top of that baseline.
	require.NoError(t, collection.Move(ctx, db, collection.KindArtists, testUser,
		collection.Key{ids["Cherry"]}, 1))
	assert.Equal(t, []string{"Cherry", "apple", "Banana"}, favouriteNames(t, db, testUser))
}

func TestResolver_EffectiveOrder(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ids := seedFavourites(t, db, testUser, "Banana", "apple", "Cherry")
	resolver := collection.NewResolver(db)
	ctx := context.Background()

	keys, err := resolver.EffectiveOrder(ctx, testUser, collection.KindArtists)
	require.NoError(t, err)
	// Default policy is added: insertion order.
	require.Len(t, keys, 3)
	assert.EqualValues(t, ids["Banana"], keys[0][0])
	assert.EqualValues(t, ids["apple"], keys[1][0])
	assert.EqualValues(t, ids["Cherry"], keys[2][0])

	require.NoError(t, resolver.SetPolicy(ctx, testUser, collection.KindArtists, collection.SortByName))
	keys, err = resolver.EffectiveOrder(ctx, testUser, collection.KindArtists)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.EqualValues(t, ids["apple"], keys[0][0])
	assert.EqualValues(t, ids["Banana"], keys[1][0])
	assert.EqualValues(t, ids["Cherry"], keys[2][0])
}
