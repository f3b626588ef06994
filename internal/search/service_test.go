package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	"github.com/TonnenFred/soundmap-bot/internal/profile"
	"github.com/TonnenFred/soundmap-bot/internal/search"
	"github.com/TonnenFred/soundmap-bot/internal/testutil"
)

func track(id string) catalog.Track {
	return catalog.Track{
		TrackID:    id,
		Title:      "Title " + id,
		ArtistName: "Artist " + id,
	}
}

func TestFindOwners(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	epics := profile.NewEpicRepository(db)
	wishes := profile.NewWishRepository(db)

	require.NoError(t, epics.Add(ctx, "alice", track("a"), 120))
	require.NoError(t, epics.Add(ctx, "bob", track("a"), 7))
	require.NoError(t, epics.Add(ctx, "bob", track("b"), 9))
	_, err := wishes.Add(ctx, "carol", track("a"), "below #50")
	require.NoError(t, err)

	owners, seekers, err := search.NewService(db).FindOwners(ctx, "a")
	require.NoError(t, err)

	require.Len(t, owners, 2)
	assert.Equal(t, "bob", owners[0].UserID, "owners come lowest serial first")
	assert.Equal(t, 7, owners[0].EpicNumber)
	assert.Equal(t, "alice", owners[1].UserID)

	require.Len(t, seekers, 1)
	assert.Equal(t, "carol", seekers[0].UserID)
	assert.Equal(t, "below #50", seekers[0].Note.String)
}

func TestFindOwners_NoMatches(t *testing.T) {
	db := testutil.OpenTestDB(t)

	owners, seekers, err := search.NewService(db).FindOwners(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, owners)
	assert.Empty(t, seekers)
}

func TestTradeHelp(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	epics := profile.NewEpicRepository(db)
	wishes := profile.NewWishRepository(db)

	// alice owns a and wants b. bob owns b and wants a: a perfect match.
	// carol owns c, wanted by nobody.
	require.NoError(t, epics.Add(ctx, "alice", track("a"), 1))
	_, err := wishes.Add(ctx, "alice", track("b"), "")
	require.NoError(t, err)
	require.NoError(t, epics.Add(ctx, "bob", track("b"), 2))
	_, err = wishes.Add(ctx, "bob", track("a"), "")
	require.NoError(t, err)
	require.NoError(t, epics.Add(ctx, "carol", track("c"), 3))

	report, err := search.NewService(db).TradeHelp(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, report.TheyHaveWhatIWant, 1)
	assert.Equal(t, "bob", report.TheyHaveWhatIWant[0].UserID)
	assert.Equal(t, "b", report.TheyHaveWhatIWant[0].TrackID)
	assert.EqualValues(t, 2, report.TheyHaveWhatIWant[0].EpicNumber.Int64)

	require.Len(t, report.TheyWantWhatIHave, 1)
	assert.Equal(t, "bob", report.TheyWantWhatIHave[0].UserID)
	assert.Equal(t, "a", report.TheyWantWhatIHave[0].TrackID)
}

func TestTradeHelp_EmptyCollections(t *testing.T) {
	db := testutil.OpenTestDB(t)

	report, err := search.NewService(db).TradeHelp(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, report.TheyHaveWhatIWant)
	assert.Empty(t, report.TheyWantWhatIHave)
}

func TestTradeHelp_ExcludesSelf(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()

	// alice both owns and wishes for the same track; she must not match
	// against herself.
	require.NoError(t, profile.NewEpicRepository(db).Add(ctx, "alice", track("a"), 1))
	_, err := profile.NewWishRepository(db).Add(ctx, "alice", track("a"), "")
	require.NoError(t, err)

	report, err := search.NewService(db).TradeHelp(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, report.TheyHaveWhatIWant)
	assert.Empty(t, report.TheyWantWhatIHave)
}

func TestFindCollectors(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	artists := profile.NewArtistRepository(db)

	for _, fav := range []struct{ user, badge string }{
		{"alice", "Gold"},
		{"bob", "Shiny"},
		{"carol", ""},
		{"dave", "Shiny"},
	} {
		_, err := artists.Add(ctx, fav.user, "Daft Punk", fav.badge)
		require.NoError(t, err)
	}
	artistID, err := artists.FindIDByName(ctx, "Daft Punk")
	require.NoError(t, err)

	collectors, err := search.NewService(db).FindCollectors(ctx, artistID)
	require.NoError(t, err)
	require.Len(t, collectors, 4)

	// Best badge first; equal badges fall back to descending user id.
	assert.Equal(t, "dave", collectors[0].UserID)
	assert.Equal(t, "bob", collectors[1].UserID)
	assert.Equal(t, "alice", collectors[2].UserID)
	assert.Equal(t, "carol", collectors[3].UserID)
	assert.False(t, collectors[3].Badge.Valid)
}
