package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/profile"
	"github.com/TonnenFred/soundmap-bot/internal/search"
)

func newSearchCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "search",
		Short: "Find trade partners and collectors",
	}

	rootCommand.AddCommand(
		&cobra.Command{
			Use:   "owners <song query>",
			Short: "List who owns an Epic of a song and who wishes for it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
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

				owners, seekers, err := search.NewService(db).FindOwners(ctx, track.TrackID)
				if err != nil {
					return err
				}

				cmd.Printf("💎 %s – %s\n", track.ArtistName, track.Title)
				cmd.Printf("\nOwners (%d)\n", len(owners))
				for _, o := range owners {
					cmd.Printf("  %s #%d\n", o.UserID, o.EpicNumber)
				}
				cmd.Printf("\nWished by (%d)\n", len(seekers))
				for _, s := range seekers {
					line := "  " + s.UserID
					if s.Note.Valid {
						line += " | " + s.Note.String
					}
					cmd.Println(line)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "trade",
			Short: "Match your wishlist and Epics against other users",
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

				report, err := search.NewService(db).TradeHelp(ctx, userID)
				if err != nil {
					return err
				}

				cmd.Printf("They have what I want (%d)\n", len(report.TheyHaveWhatIWant))
				for _, m := range report.TheyHaveWhatIWant {
					cmd.Printf("  %s owns %s – %s #%d\n", m.UserID, m.ArtistName, m.Title, m.EpicNumber.Int64)
				}
				cmd.Printf("\nThey want what I have (%d)\n", len(report.TheyWantWhatIHave))
				for _, m := range report.TheyWantWhatIHave {
					cmd.Printf("  %s wants %s – %s\n", m.UserID, m.ArtistName, m.Title)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "collectors <artist name>",
			Short: "List who favourites an artist, best badge first",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				name := strings.Join(args, " ")
				artistID, err := profile.NewArtistRepository(db).FindIDByName(ctx, name)
				if err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("nobody collects this artist yet")
					}
					return err
				}
				collectors, err := search.NewService(db).FindCollectors(ctx, artistID)
				if err != nil {
					return err
				}

				cmd.Printf("🌟 Collectors of %s (%d)\n", name, len(collectors))
				for _, c := range collectors {
					line := "  " + c.UserID
					if c.Badge.Valid {
						line += fmt.Sprintf(" %s %s", profile.BadgeEmojis[c.Badge.String], c.Badge.String)
					}
					cmd.Println(line)
				}
				return nil
			},
		},
	)
	return &rootCommand
}
