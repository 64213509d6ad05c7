package globals

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	Logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.RFC3339
	})).With().Timestamp().Logger()
)
