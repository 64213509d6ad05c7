package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Confirmer asks the user to press enter before a
// destructive step is taken. Closing the input or
// interrupting the process declines.
type Confirmer struct {
	in          *bufio.Reader
	out         io.Writer
	pacer       Pacer
	assumeYes   bool
	interactive bool
	logger      zerolog.Logger
}

// NewConfirmer creates a Confirmer reading answers from
// in and writing prompts to out.
//
// When assumeYes is set every confirmation is granted
// without reading from in.
func NewConfirmer(in io.Reader, out io.Writer, pacer Pacer, assumeYes bool, logger zerolog.Logger) *Confirmer {
	confirmer := &Confirmer{
		in:          bufio.NewReader(in),
		out:         out,
		pacer:       pacer,
		assumeYes:   assumeYes,
		interactive: IsTerminal(in),
		logger:      logger,
	}

	if !confirmer.interactive && !confirmer.assumeYes {
		logger.Warn().Msg("Standard input is not a terminal, reading confirmation from piped input")
	}

	return confirmer
}

// IsTerminal reports whether r is a file
// attached to a terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Confirm prints message, pauses, then waits for the
// user to press enter.
//
// It returns true once any input (even an empty line)
// has been read, false if the input reached EOF, and the
// context error if ctx is cancelled during the wait.
func (confirmer *Confirmer) Confirm(ctx context.Context, message, instruction string) (bool, error) {
	fmt.Fprintln(confirmer.out, message)
	if err := confirmer.pacer.Pause(ctx, 2*time.Second); err != nil {
		return false, err
	}

	if confirmer.assumeYes {
		confirmer.logger.Debug().Msg("Confirmation assumed by --yes")
		return true, nil
	}

	fmt.Fprintln(confirmer.out, instruction)

	type reply struct {
		line string
		err  error
	}

	// The read cannot be interrupted, if ctx is cancelled first
	// this goroutine stays blocked until the input yields a line
	// or the process exits, which callers do on cancellation.
	answer := make(chan reply, 1)
	go func() {
		line, err := confirmer.in.ReadString('\n')
		answer <- reply{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()

	case r := <-answer:
		switch err := r.err; {
		case err == nil || len(r.line) > 0:
			return true, confirmer.pacer.Pause(ctx, time.Second)

		case errors.Is(err, io.EOF):
			return false, nil

		default:
			return false, fmt.Errorf("read confirmation: %w", err)
		}
	}
}
