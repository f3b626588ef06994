package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TonnenFred/soundmap-bot/internal/bootstrap"
)

var (
	configFile string
	actingUser string
)

func main() {
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "soundmap",
		Short:         "Soundmap collection bot: Epics, wishlist and favourite artists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().StringVar(&actingUser, "user", "", "acting user id")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newProfileCommand(),
		newEpicCommand(),
		newWishCommand(),
		newArtistCommand(),
		newSearchCommand(),
	)
	app := bootstrap.New()
	err := app.Run(context.Background(), func(ctx context.Context) error {
		return rootCommand.ExecuteContext(ctx)
	})
	if err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})),
	)
}
