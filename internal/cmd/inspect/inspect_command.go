package inspect

import (
	"fmt"
	"io"

	"github.com/KatelynHaworth/mse-swapper/firmware"
	. "github.com/KatelynHaworth/mse-swapper/internal/cmd/globals"
	"github.com/KatelynHaworth/mse-swapper/report"
	"github.com/spf13/cobra"
)

var (
	InspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Report the patch state of a Firmware.MSE image without modifying it",
		RunE:  run,
	}

	reportFormat *string
)

func init() {
	reportFormat = InspectCmd.Flags().StringP("format", "f", report.FormatText.String(), "Report output format (text, json, yaml, or plist)")
}

func run(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(*reportFormat)
	if err != nil {
		return err
	}

	return Inspect(Config.Input, format, cmd.OutOrStdout())
}

// Inspect classifies the image at path and writes
// a report of its state to w in the chosen format.
func Inspect(path string, format report.Format, w io.Writer) error {
	fLogger := Logger.With().Str("file", path).Logger()
	fLogger.Debug().Msg("Loading firmware image")

	img, err := firmware.ReadImageFile(path)
	if err != nil {
		return fmt.Errorf("load firmware image: %w", err)
	}

	c := firmware.Classify(img)
	fLogger.Debug().Str("state", c.State.String()).Msg("Classified firmware image")

	if err = report.Encode(w, format, report.New(path, img, c)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}
