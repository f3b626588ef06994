package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/profile"
)

func newArtistCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "artist",
		Short: "Manage your favourite artists",
	}

	var badge badgeValue
	addCommand := &cobra.Command{
		Use:   "add <artist query>",
		Short: "Favourite an artist found on Spotify",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, cfg, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			artist, err := newCatalogClient(cfg).CanonicalArtist(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("catalog.CanonicalArtist > %w", err)
			}
			if artist == nil {
				return errors.New("artist not found")
			}

			created, err := profile.NewArtistRepository(db).Add(ctx, userID, artist.Name, string(badge))
			if err != nil {
				return err
			}
			if created {
				color.Green("✅ Favourited %s", artist.Name)
			} else {
				color.Yellow("%s is already a favourite", artist.Name)
			}
			return nil
		},
	}
	addCommand.Flags().Var(&badge, "badge", "collection badge, e.g. Gold or Shiny")

	var newBadge badgeValue
	badgeCommand := &cobra.Command{
		Use:   "badge <artist name>",
		Short: "Set the badge of a favourite artist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, _, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := profile.NewArtistRepository(db)
			artistID, err := repo.FindIDByName(ctx, strings.Join(args, " "))
			if err != nil {
				if errors.Is(err, collection.ErrNotFound) {
					return errors.New("this artist is not among your favourites")
				}
				return err
			}
			if err := repo.SetBadge(ctx, userID, artistID, string(newBadge)); err != nil {
				if errors.Is(err, collection.ErrNotFound) {
					return errors.New("this artist is not among your favourites")
				}
				return err
			}
			color.Green("✅ Badge set to %s %s", profile.BadgeEmojis[string(newBadge)], newBadge)
			return nil
		},
	}
	badgeCommand.Flags().Var(&newBadge, "set", "badge to set")
	_ = badgeCommand.MarkFlagRequired("set")

	rootCommand.AddCommand(
		addCommand,
		badgeCommand,
		&cobra.Command{
			Use:   "remove <artist name>",
			Short: "Remove an artist from your favourites",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := requireUser()
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				repo := profile.NewArtistRepository(db)
				artistID, err := repo.FindIDByName(ctx, strings.Join(args, " "))
				if err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("this artist is not among your favourites")
					}
					return err
				}
				if err := repo.Remove(ctx, userID, artistID); err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("this artist is not among your favourites")
					}
					return err
				}
				color.Green("✅ Favourite removed.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "move <artist name> <position>",
			Short: "Move a favourite artist to a manual position",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := requireUser()
				if err != nil {
					return err
				}
				target, err := collection.ParseTarget(args[len(args)-1])
				if err != nil {
					return err
				}
				name := strings.Join(args[:len(args)-1], " ")
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				repo := profile.NewArtistRepository(db)
				artistID, err := repo.FindIDByName(ctx, name)
				if err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("this artist is not among your favourites")
					}
					return err
				}
				if err := repo.Move(ctx, userID, artistID, target); err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("this artist is not among your favourites")
					}
					return err
				}
				color.Green("✅ Favourite moved.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "sort <name|added|manual>",
			Short: "Set the sort mode for your favourite artists",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := requireUser()
				if err != nil {
					return err
				}
				policy, err := parseSortMode(args[0])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := collection.NewResolver(db).SetPolicy(ctx, userID, collection.KindArtists, policy); err != nil {
					return err
				}
				color.Green("✅ Favourite artists sorted by %s.", policy)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List your favourite artists in display order",
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := requireUser()
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				favs, err := profile.NewArtistRepository(db).List(ctx, userID)
				if err != nil {
					return err
				}
				for i, f := range favs {
					line := fmt.Sprintf("%2d. %s", i+1, f.Name)
					if f.Badge.Valid {
						line += fmt.Sprintf(" %s %s", profile.BadgeEmojis[f.Badge.String], f.Badge.String)
					}
					cmd.Println(line)
				}
				if len(favs) == 0 {
					cmd.Println("No favorite artists")
				}
				return nil
			},
		},
	)
	return &rootCommand
}
