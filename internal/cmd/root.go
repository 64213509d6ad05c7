package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"

	. "github.com/KatelynHaworth/mse-swapper/internal/cmd/globals"
	"github.com/KatelynHaworth/mse-swapper/internal/cmd/inspect"
	"github.com/KatelynHaworth/mse-swapper/internal/cmd/patch"
	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	rootCmd = cobra.Command{
		Use:               "mse-swapper",
		Version:           "devel",
		Short:             "iPod nano 7 Firmware.MSE execution method swapper",
		Long:              "Converts a Firmware.MSE image to the new execution method used for themes and running unsigned code.",
		PersistentPreRunE: preRun,
		RunE:              run,
		SilenceUsage:      true,
	}

	opts options
)

func init() {
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		rootCmd.Version = buildInfo.Main.Version
	}

	opts.bind(rootCmd.PersistentFlags())
	rootCmd.AddCommand(patch.PatchCmd, inspect.InspectCmd)
}

func preRun(cmd *cobra.Command, _ []string) error {
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if len(opts.configFile) != 0 {
		Logger.Info().Str("file", opts.configFile).Msg("Loading utility configuration")
	}

	cfg, err := opts.resolve(cmd.Flags())
	if err != nil {
		return err
	}

	Config = cfg
	if e := Logger.Debug(); e.Enabled() {
		e.Msgf("Effective configuration: %s", pretty.Sprint(Config))
	}

	return nil
}

func run(cmd *cobra.Command, args []string) error {
	Logger.Debug().Msg("No sub-command supplied, defaulting to the `patch` sub-command")

	return patch.PatchCmd.RunE(cmd, args)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		Logger.Fatal().Err(err).Msg("Utility encountered a fatal error")
	}
}
