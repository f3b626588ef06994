package bootstrap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TonnenFred/soundmap-bot/internal/bootstrap"
)

func TestRun_ReturnsRunError(t *testing.T) {
	app := bootstrap.New()
	wantErr := errors.New("boom")

	err := app.Run(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestRun_Completes(t *testing.T) {
	app := bootstrap.New()
	ran := false

	err := app.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRun_ShutdownHooksLIFO(t *testing.T) {
	app := bootstrap.New()
	var order []string
	app.AddShutdownHook(func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	app.AddShutdownHook(func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	err := app.Run(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		select {} // block until Run shuts down
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestRun_ShutdownHookErrorsJoined(t *testing.T) {
	app := bootstrap.New()
	errFirst := errors.New("first hook failed")
	errSecond := errors.New("second hook failed")
	app.AddShutdownHook(func(ctx context.Context) error { return errFirst })
	app.AddShutdownHook(func(ctx context.Context) error { return errSecond })

	ctx, cancel := context.WithCancel(context.Background())
	err := app.Run(ctx, func(ctx context.Context) error {
		cancel()
		select {}
	})
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
}
