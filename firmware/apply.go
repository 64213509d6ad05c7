package firmware

import (
	"errors"
	"fmt"
)

var (
	ErrNotPatchable   = errors.New("classification does not permit patching")
	ErrMarkerNotFound = errors.New("unpatched marker not found")
)

// PatchResult describes the mutations made
// to an image by Apply.
type PatchResult struct {
	// SignaturesFixed is set when the signature
	// fields were rewritten to (ksid, soso).
	SignaturesFixed bool

	// MarkerOffset holds the absolute offset of the
	// marker byte that was changed, or -1 if no
	// unpatched marker was found.
	MarkerOffset int
}

// MarkerPatched reports whether a marker byte
// was changed.
func (res *PatchResult) MarkerPatched() bool {
	return res.MarkerOffset > -1
}

// Changed reports whether the image was mutated
// at all.
func (res *PatchResult) Changed() bool {
	return res.SignaturesFixed || res.MarkerPatched()
}

// Apply performs the minimal in-place mutation
// of the image towards the fully patched state.
//
// Only a StateNeedsPatch classification is accepted,
// any other state returns ErrNotPatchable and leaves
// the image untouched.
//
// When the classification reports reversed signatures
// both fields are overwritten with (ksid, soso) without
// re-reading them. Then the first UnpatchedMarker has
// its last byte switched to PatchedMarkerByte. No more
// than one marker is changed per call, images with
// several unpatched markers converge over repeated
// calls on the output of the previous one.
//
// Not finding an unpatched marker is not an error, it
// is reported through PatchResult.MarkerOffset.
func Apply(img *Image, c Classification) (*PatchResult, error) {
	if c.State != StateNeedsPatch {
		return nil, fmt.Errorf("%s: %w", c.State, ErrNotPatchable)
	}

	res := &PatchResult{MarkerOffset: -1}
	if c.ReversedSignatures {
		if err := img.SetSignatures(SignaturePair{Primary: SignatureKsid, Secondary: SignatureSoso}); err != nil {
			return nil, fmt.Errorf("fix signatures: %w", err)
		}

		res.SignaturesFixed = true
	}

	if offset, found := UnpatchedMarker.ReplaceLastByte(img.Bytes(), PatchedMarkerByte); found {
		res.MarkerOffset = offset
	}

	return res, nil
}
