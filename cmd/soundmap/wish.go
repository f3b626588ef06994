package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/profile"
)

func newWishCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "wish",
		Short: "Manage your wishlist",
	}

	var note string
	addCommand := &cobra.Command{
		Use:   "add <song query>",
		Short: "Wish for an Epic found on Spotify",
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

			track, err := catalog.ResolveTrack(ctx, newCatalogClient(cfg), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("catalog.ResolveTrack > %w", err)
			}
			if track == nil {
				return errors.New("song not found")
			}

			created, err := profile.NewWishRepository(db).Add(ctx, userID, *track, note)
			if err != nil {
				return err
			}
			if created {
				color.Green("✅ Added to wishlist: %s – %s", track.ArtistName, track.Title)
			} else {
				color.Yellow("Updated the note of %s – %s", track.ArtistName, track.Title)
			}
			return nil
		},
	}
	addCommand.Flags().StringVar(&note, "note", "", "optional note, e.g. acceptable serial numbers")

	rootCommand.AddCommand(
		addCommand,
		&cobra.Command{
			Use:   "remove <track id>",
			Short: "Remove a song from your wishlist",
			Args:  cobra.ExactArgs(1),
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

				if err := profile.NewWishRepository(db).Remove(ctx, userID, args[0]); err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("this song is not on your wishlist")
					}
					return err
				}
				color.Green("✅ Wish removed.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "move <track id> <position>",
			Short: "Move a wish to a manual position",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := requireUser()
				if err != nil {
					return err
				}
				target, err := collection.ParseTarget(args[1])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := profile.NewWishRepository(db).Move(ctx, userID, args[0], target); err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("this song is not on your wishlist")
					}
					return err
				}
				color.Green("✅ Wish moved.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "sort <name|added|manual>",
			Short: "Set the sort mode for your wishlist",
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

				if err := collection.NewResolver(db).SetPolicy(ctx, userID, collection.KindWishes, policy); err != nil {
					return err
				}
				color.Green("✅ Wishlist sorted by %s.", policy)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List your wishlist in display order",
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

				wishes, err := profile.NewWishRepository(db).List(ctx, userID)
				if err != nil {
					return err
				}
				for i, w := range wishes {
					line := fmt.Sprintf("%2d. %s – %s (%s)", i+1, w.ArtistName, w.Title, w.TrackID)
					if w.Note.Valid {
						line += " | " + w.Note.String
					}
					cmd.Println(line)
				}
				if len(wishes) == 0 {
					cmd.Println("No wishes")
				}
				return nil
			},
		},
	)
	return &rootCommand
}
