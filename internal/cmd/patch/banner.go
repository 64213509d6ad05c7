package patch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/KatelynHaworth/mse-swapper/internal/prompt"
)

const banner = `██████ ██████ ██████ ██  ██  █████
  ██   ██  ██ ██     ██████ ██
  ██   ██████ ██████ ██████  █████
  ██   ██     ██     ██  ██     ██
██████ ██     ██████ ██  ██  █████`

var bannerLines = []struct {
	text  string
	pause time.Duration
}{
	{text: banner, pause: 300 * time.Millisecond},
	{text: "iPod Execution Method Swapper", pause: time.Second},
	{text: "This tool converts a Firmware.MSE file to a new way of modifying the firmware (themes, execution of unsigned code, etc.)", pause: 500 * time.Millisecond},
}

func printBanner(ctx context.Context, out io.Writer, pacer prompt.Pacer) error {
	for _, line := range bannerLines {
		fmt.Fprintln(out, line.text)

		if err := pacer.Pause(ctx, line.pause); err != nil {
			return err
		}
	}

	return nil
}
