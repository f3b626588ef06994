package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	mock_catalog "github.com/TonnenFred/soundmap-bot/internal/mocks/catalog"
)

func TestResolveTrack(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_catalog.NewMockClient(ctrl)
	ctx := context.Background()

	client.EXPECT().
		SearchTracks(ctx, "one more time", 1).
		Return([]catalog.Track{
			{TrackID: "t1", Title: "One More Time", ArtistName: "Daft Punk"},
		}, nil)

	track, err := catalog.ResolveTrack(ctx, client, "one more time")
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, "t1", track.TrackID)
}

func TestResolveTrack_NoMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_catalog.NewMockClient(ctrl)
	ctx := context.Background()

	client.EXPECT().SearchTracks(ctx, "nothing", 1).Return(nil, nil)

	track, err := catalog.ResolveTrack(ctx, client, "nothing")
	require.NoError(t, err)
	assert.Nil(t, track)
}

func TestResolveTrack_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_catalog.NewMockClient(ctrl)
	ctx := context.Background()

	wantErr := errors.New("api unavailable")
	client.EXPECT().SearchTracks(ctx, "query", 1).Return(nil, wantErr)

	_, err := catalog.ResolveTrack(ctx, client, "query")
	assert.ErrorIs(t, err, wantErr)
}
