package main

import (
	"errors"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TonnenFred/soundmap-bot/internal/profile"
)

func newProfileCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "profile",
		Short: "Show and edit your collection profile",
	}

	rootCommand.AddCommand(
		&cobra.Command{
			Use:   "show [user id]",
			Short: "Show a collection profile",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID := actingUser
				if len(args) == 1 {
					userID = args[0]
				}
				if userID == "" {
					return errors.New("--user or an explicit user id is required")
				}
				ctx := cmd.Context()
				db, _, err := openDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				summary, err := profile.NewService(db).Summary(ctx, userID)
				if err != nil {
					return err
				}
				cmd.Print(profile.Render(summary))
				return nil
			},
		},
		&cobra.Command{
			Use:   "username <name>",
			Short: "Set your in-game username",
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

				name := strings.Join(args, " ")
				if err := profile.NewUserRepository(db).SetUsername(ctx, userID, name); err != nil {
					return err
				}
				color.Green("✅ Username set to %s", name)
				return nil
			},
		},
	)
	return &rootCommand
}
