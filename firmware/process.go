package firmware

import (
	"errors"
	"fmt"
)

var ErrConfirmationDeclined = errors.New("patching of a partially patched image was declined")

// ConfirmFunc is consulted before a partially patched
// image is mutated, returning false declines the patch.
type ConfirmFunc func(c Classification) (bool, error)

// Outcome describes a single run of Process.
type Outcome struct {
	Classification Classification

	// Patch holds the mutations applied to the image, it
	// is nil if the run ended before the patch step.
	Patch *PatchResult

	// Declined is set when the ConfirmFunc refused to
	// patch a partially patched image.
	Declined bool
}

// Changed reports whether the image was mutated and
// so needs to be written out.
func (out *Outcome) Changed() bool {
	return out.Patch != nil && out.Patch.Changed()
}

// Err returns the sentinel error describing why the
// run did not reach a successful end, or nil if the
// image was patched or is already fully patched.
//
// A run which fixed the signatures but found no marker
// to patch reports ErrMarkerNotFound even though the
// image was changed.
func (out *Outcome) Err() error {
	switch {
	case out.Declined:
		return ErrConfirmationDeclined

	case out.Classification.Reason != nil:
		return out.Classification.Reason

	case out.Patch != nil && !out.Patch.MarkerPatched():
		return ErrMarkerNotFound

	default:
		return nil
	}
}

// Message returns a human-readable description of the
// outcome, each exit condition has its own message.
func (out *Outcome) Message() string {
	reason := out.Classification.Reason
	switch {
	case out.Declined:
		return "Patching cancelled, no changes made"

	case errors.Is(reason, ErrIncompatibleModel):
		return "This file is for the nano 6, ONLY THE NANO 7 IS SUPPORTED"

	case errors.Is(reason, ErrImageTruncated):
		return "File is too small to be a Firmware.MSE image"

	case errors.Is(reason, ErrSignatureCorruption):
		return "Signature mismatch, file looks corrupted"

	case errors.Is(reason, ErrMarkerCountCorruption):
		return "File is corrupted (unclear patch state)"

	case out.Classification.State == StateFullyPatched:
		return "The file is fully patched, no changes required"

	case out.Patch != nil && out.Patch.MarkerPatched():
		return fmt.Sprintf("Patched firmware at offset 0x%X", out.Patch.MarkerOffset)

	case out.Patch != nil:
		return "Pattern not found in firmware"

	default:
		return "Unknown outcome"
	}
}

// Process runs the classifier and, when permitted, the
// patch applier over the image. This is one invocation
// of the pipeline, applying at most one atomic marker
// fix, see Converge for driving an image all the way
// to StateFullyPatched.
//
// The supplied ConfirmFunc is invoked only for partially
// patched images, a nil ConfirmFunc declines them.
//
// Refusals (incompatible model, corruption, declined
// confirmation) are reported through the Outcome, the
// returned error is only set when confirm or Apply fails.
func Process(img *Image, confirm ConfirmFunc) (*Outcome, error) {
	out := &Outcome{Classification: Classify(img)}
	if out.Classification.State.Terminal() {
		return out, nil
	}

	if out.Classification.NeedsConfirmation {
		if confirm == nil {
			out.Declined = true
			return out, nil
		}

		ok, err := confirm(out.Classification)
		if err != nil {
			return out, fmt.Errorf("confirm patch: %w", err)
		} else if !ok {
			out.Declined = true
			return out, nil
		}
	}

	res, err := Apply(img, out.Classification)
	if err != nil {
		return out, fmt.Errorf("apply patch: %w", err)
	}

	out.Patch = res
	return out, nil
}

// Converge repeatedly runs Process over the image, feeding
// each run the output of the previous one, until a run makes
// no change or maxRuns runs have completed.
//
// The outcome of every run is returned in order, the last
// entry describes the final state of the image.
func Converge(img *Image, confirm ConfirmFunc, maxRuns int) ([]*Outcome, error) {
	if maxRuns < 1 {
		maxRuns = 1
	}

	outcomes := make([]*Outcome, 0, maxRuns)
	for run := 0; run < maxRuns; run++ {
		out, err := Process(img, confirm)
		if out != nil {
			outcomes = append(outcomes, out)
		}

		switch {
		case err != nil:
			return outcomes, fmt.Errorf("run %d: %w", run+1, err)

		case !out.Changed():
			return outcomes, nil
		}
	}

	return outcomes, nil
}
