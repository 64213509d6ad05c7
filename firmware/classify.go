package firmware

import (
	"errors"
)

// State represents the patch state an image
// was classified into.
type State uint8

const (
	StateUnknown State = iota
	StateIncompatibleModel
	StateCorrupted
	StateFullyPatched
	StateNeedsPatch
)

var (
	ErrIncompatibleModel     = errors.New("firmware is for the nano 6, only the nano 7 is supported")
	ErrSignatureCorruption   = errors.New("signature fields hold neither accepted ordering")
	ErrMarkerCountCorruption = errors.New("patch markers are in an unknown state")
)

// String returns the name of the state.
func (state State) String() string {
	switch state {
	case StateIncompatibleModel:
		return "incompatible-model"

	case StateCorrupted:
		return "corrupted"

	case StateFullyPatched:
		return "fully-patched"

	case StateNeedsPatch:
		return "needs-patch"

	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends processing
// without any mutation of the image.
func (state State) Terminal() bool {
	return state != StateNeedsPatch
}

// Classification describes the result of inspecting
// an image with Classify.
type Classification struct {
	State State

	// Reason holds the sentinel error explaining
	// why an image was classified as
	// StateIncompatibleModel or StateCorrupted.
	Reason error

	// Signatures holds the signature pair read from
	// the image, it is only populated once the model
	// check has passed and the image is large enough.
	Signatures SignaturePair

	// ReversedSignatures is set when the signature
	// pair was found in the (soso, ksid) ordering.
	ReversedSignatures bool

	// NeedsConfirmation is set when an image has a
	// mix of patched and unpatched markers, which
	// suggests an earlier modification attempt.
	NeedsConfirmation bool

	// MarkersScanned reports if the patch-state check
	// ran, the marker counts are meaningless otherwise.
	MarkersScanned   bool
	UnpatchedMarkers int
	PatchedMarkers   int
}

// PartiallyPatched reports whether the image needs
// patching but already carries unpatched markers
// alongside patched ones.
func (c Classification) PartiallyPatched() bool {
	return c.State == StateNeedsPatch && c.NeedsConfirmation
}

// Classify inspects an image and determines how, if
// at all, it should be patched.
//
// The checks run in a fixed order with the first
// disqualifying result taking precedence:
//
//  1. the presence of ModelMarker anywhere marks the
//     image as StateIncompatibleModel
//  2. signature fields in neither accepted ordering
//     mark the image as StateCorrupted
//  3. for normally oriented images, the patch markers
//     decide between StateNeedsPatch, StateFullyPatched
//     and StateCorrupted
//
// Images with reversed signatures skip the third check
// as they always need the final patch step. The image
// is never modified.
func Classify(img *Image) Classification {
	var c Classification
	data := img.Bytes()

	if ModelMarker.Contains(data) {
		c.State = StateIncompatibleModel
		c.Reason = ErrIncompatibleModel
		return c
	}

	pair, err := img.Signatures()
	switch {
	case err != nil:
		c.State = StateCorrupted
		c.Reason = err
		return c

	case pair.Reversed():
		c.Signatures = pair
		c.State = StateNeedsPatch
		c.ReversedSignatures = true
		return c

	case !pair.Normal():
		c.Signatures = pair
		c.State = StateCorrupted
		c.Reason = ErrSignatureCorruption
		return c
	}

	c.Signatures = pair
	c.MarkersScanned = true
	c.UnpatchedMarkers = UnpatchedMarker.Count(data)
	c.PatchedMarkers = PatchedMarker.Count(data)

	switch {
	case c.UnpatchedMarkers > 0:
		c.State = StateNeedsPatch
		c.NeedsConfirmation = true

	case c.PatchedMarkers == ExpectedPatchedMarkers:
		c.State = StateFullyPatched

	default:
		c.State = StateCorrupted
		c.Reason = ErrMarkerCountCorruption
	}

	return c
}
