package patch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/KatelynHaworth/mse-swapper/config"
	"github.com/KatelynHaworth/mse-swapper/firmware"
	. "github.com/KatelynHaworth/mse-swapper/internal/cmd/globals"
	"github.com/KatelynHaworth/mse-swapper/internal/prompt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	warningMessage = "This utility modifies the file to provide a new execution method, but it can also make your device not boot at all (a softbrick). Are you sure you want to continue?"
	partialMessage = "The file is not fully patched, there may have been an earlier attempt to modify it. An additional patch can be applied, but there is no guarantee the device will boot afterwards."
)

var (
	PatchCmd = &cobra.Command{
		Use:   "patch",
		Short: "Patch a Firmware.MSE image to the new execution method",
		RunE:  run,
	}
)

func run(cmd *cobra.Command, _ []string) error {
	_, err := Run(cmd.Context(), Config, os.Stdin, cmd.OutOrStdout(), Logger)
	return err
}

// Run executes the patch pipeline described by cfg,
// reading confirmations from in and writing prompts
// to out.
//
// The outcome of every patch step is returned, an
// error is only returned for I/O failures or when
// the run is interrupted.
func Run(ctx context.Context, cfg *config.Configuration, in io.Reader, out io.Writer, logger zerolog.Logger) ([]*firmware.Outcome, error) {
	pacer := prompt.Pacer{Fast: cfg.Fast}
	if cfg.Fast {
		logger.Info().Msg("Fast mode enabled")
	}

	if err := printBanner(ctx, out, pacer); err != nil {
		return nil, err
	}

	confirmer := prompt.NewConfirmer(in, out, pacer, cfg.AssumeYes, logger)
	if ok, err := confirmer.Confirm(ctx, warningMessage, "Press enter to confirm your choice, otherwise press Ctrl+C"); err != nil {
		return nil, fmt.Errorf("confirm patching: %w", err)
	} else if !ok {
		logger.Warn().Msg("Patching cancelled, no changes made")
		return nil, nil
	}

	fLogger := logger.With().Str("file", cfg.Input).Logger()
	fLogger.Info().Msg("Loading firmware image")

	img, err := firmware.ReadImageFile(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("load firmware image: %w", err)
	}

	outcomes, err := firmware.Converge(img, func(c firmware.Classification) (bool, error) {
		fLogger.Warn().
			Int("patched", c.PatchedMarkers).
			Int("unpatched", c.UnpatchedMarkers).
			Msg("Image is partially patched")

		return confirmer.Confirm(ctx, partialMessage, "Press enter to continue, otherwise press Ctrl+C to cancel the operation")
	}, cfg.MaxRuns)

	changed := false
	for i, outcome := range outcomes {
		logOutcome(fLogger.With().Int("run", i+1).Logger(), outcome)
		changed = changed || outcome.Changed()
	}

	if err != nil {
		return outcomes, fmt.Errorf("patch firmware image: %w", err)
	}

	if !changed {
		fLogger.Debug().Msg("No changes made, output not written")
		return outcomes, nil
	}

	if err = firmware.WriteImageFile(cfg.Output, cfg.Input, img); err != nil {
		return outcomes, fmt.Errorf("write patched image: %w", err)
	}

	fLogger.Info().Str("output", cfg.Output).Msg("Done")
	return outcomes, nil
}

func logOutcome(logger zerolog.Logger, outcome *firmware.Outcome) {
	if outcome.Patch != nil && outcome.Patch.SignaturesFixed {
		logger.Info().Msg("Signatures fixed")
	}

	var event *zerolog.Event
	switch {
	case outcome.Patch != nil && outcome.Patch.MarkerPatched():
		event = logger.Info().Str("offset", fmt.Sprintf("0x%X", outcome.Patch.MarkerOffset))

	case outcome.Patch != nil:
		event = logger.Warn()

	case outcome.Err() == nil:
		event = logger.Info()

	case outcome.Declined:
		event = logger.Warn()

	default:
		event = logger.Error().Err(outcome.Err())
	}

	event.Str("state", outcome.Classification.State.String()).Msg(outcome.Message())
}
