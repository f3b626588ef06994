package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TonnenFred/soundmap-bot/internal/catalog"
	"github.com/TonnenFred/soundmap-bot/internal/collection"
	"github.com/TonnenFred/soundmap-bot/internal/profile"
)

func newEpicCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "epic",
		Short: "Manage your owned Epics",
	}

	var epicNumber int
	addCommand := &cobra.Command{
		Use:   "add <song query>",
		Short: "Add an Epic found on Spotify",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			if epicNumber <= 0 {
				return errors.New("epic number must be > 0")
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

			if err := profile.NewEpicRepository(db).Add(ctx, userID, *track, epicNumber); err != nil {
				if errors.Is(err, profile.ErrAlreadyExists) {
					return errors.New("you already own an Epic for this song")
				}
				return err
			}
			color.Green("✅ Epic added: %s – %s (#%d)", track.ArtistName, track.Title, epicNumber)
			return nil
		},
	}
	addCommand.Flags().IntVar(&epicNumber, "number", 0, "serial number of the Epic")

	rootCommand.AddCommand(
		addCommand,
		&cobra.Command{
			Use:   "remove <track id>",
			Short: "Remove an Epic from your collection",
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

				if err := profile.NewEpicRepository(db).Remove(ctx, userID, args[0]); err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("you don't own this Epic")
					}
					return err
				}
				color.Green("✅ Epic removed.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "move <track id> <position>",
			Short: "Move an Epic to a manual position",
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

				if err := profile.NewEpicRepository(db).Move(ctx, userID, args[0], target); err != nil {
					if errors.Is(err, collection.ErrNotFound) {
						return errors.New("you don't own this Epic")
					}
					return err
				}
				color.Green("✅ Epic moved.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "sort <name|added|manual>",
			Short: "Set the sort mode for your Epics",
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

				if err := collection.NewResolver(db).SetPolicy(ctx, userID, collection.KindEpics, policy); err != nil {
					return err
				}
				color.Green("✅ Epics sorted by %s.", policy)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List your Epics in display order",
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

				epics, err := profile.NewEpicRepository(db).List(ctx, userID)
				if err != nil {
					return err
				}
				for i, e := range epics {
					cmd.Printf("%2d. %s – %s #%d (%s)\n", i+1, e.ArtistName, e.Title, e.EpicNumber, e.TrackID)
				}
				if len(epics) == 0 {
					cmd.Println("No epics")
				}
				return nil
			},
		},
		newEpicImportCommand(),
	)
	return &rootCommand
}

// newEpicImportCommand bulk-loads Epics from a file of
// "track_id,epic_number" lines, appending in file order.
func newEpicImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import Epics from a file, keeping the file order",
		Args:  cobra.ExactArgs(1),
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

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("os.Open > %w", err)
			}
			defer file.Close()

			client := newCatalogClient(cfg)
			repo := profile.NewEpicRepository(db)
			imported := 0

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				trackID, rawNumber, found := strings.Cut(line, ",")
				if !found {
					return fmt.Errorf("invalid line %q: want track_id,epic_number", line)
				}
				number, err := strconv.Atoi(strings.TrimSpace(rawNumber))
				if err != nil || number <= 0 {
					return fmt.Errorf("invalid epic number in line %q", line)
				}

				track, err := client.GetTrack(ctx, strings.TrimSpace(trackID))
				if err != nil {
					return fmt.Errorf("catalog.GetTrack(%s) > %w", trackID, err)
				}
				if err := repo.AddLast(ctx, userID, *track, number); err != nil {
					if errors.Is(err, profile.ErrAlreadyExists) {
						cmd.Printf("skipping %s: already owned\n", trackID)
						continue
					}
					return err
				}
				imported++
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("scanner.Err > %w", err)
			}
			color.Green("✅ Imported %d Epics.", imported)
			return nil
		},
	}
}
