package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/config"
	"github.com/TonnenFred/soundmap-bot/internal/database"
	"github.com/TonnenFred/soundmap-bot/internal/profile"
	"github.com/TonnenFred/soundmap-bot/schemas"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openDatabase opens the configured database with migrations applied.
func openDatabase(ctx context.Context) (*sqlx.DB, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loadConfig > %w", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open > %w", err)
	}
	if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database.Migrate > %w", err)
	}
	return db, cfg, nil
}

func newCatalogClient(cfg *config.Config) catalog.Client {
	return catalog.NewSpotifyClient(catalog.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
	})
}

func requireUser() (string, error) {
	if actingUser == "" {
		return "", errors.New("--user is required")
	}
	return actingUser, nil
}

// badgeValue is a pflag.Value restricted to the known badge tiers.
type badgeValue string

var _ pflag.Value = (*badgeValue)(nil)

func (b *badgeValue) Set(val string) error {
	if !profile.ValidBadge(val) {
		return fmt.Errorf("invalid badge %q: use one of %s", val, strings.Join(profile.Badges, ", "))
	}
	*b = badgeValue(val)
	return nil
}

func (b *badgeValue) String() string {
	return string(*b)
}

func (b *badgeValue) Type() string {
	return "badge"
}

func parseSortMode(raw string) (collection.SortPolicy, error) {
	policy := collection.SortPolicy(raw)
	if !policy.Valid() {
		return "", fmt.Errorf("invalid sort mode %q: use name, added or manual", raw)
	}
	return policy, nil
}
