package firmware

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_IncompatibleModel(t *testing.T) {
	tests := []struct {
		name      string
		primary   Signature
		secondary Signature
		patched   int
		unpatched int
	}{
		{name: "normal signatures fully patched", primary: SignatureKsid, secondary: SignatureSoso, patched: ExpectedPatchedMarkers},
		{name: "reversed signatures", primary: SignatureSoso, secondary: SignatureKsid},
		{name: "corrupt signatures", primary: Signature{'a', 'b', 'c', 'd'}, secondary: SignatureSoso},
		{name: "unpatched markers", primary: SignatureKsid, secondary: SignatureSoso, unpatched: 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img := newTestImage(t, test.primary, test.secondary)
			offsets := markerOffsets(test.patched + test.unpatched)
			putMarkers(t, img, PatchedMarker, offsets[:test.patched]...)
			putMarkers(t, img, UnpatchedMarker, offsets[test.patched:]...)
			putMarkers(t, img, ModelMarker, 0x4000)

			c := Classify(img)
			assert.Equal(t, StateIncompatibleModel, c.State)
			assert.ErrorIs(t, c.Reason, ErrIncompatibleModel)
			assert.False(t, c.MarkersScanned)
		})
	}
}

func TestClassify_CorruptSignatures(t *testing.T) {
	tests := []struct {
		name      string
		primary   Signature
		secondary Signature
	}{
		{name: "zeroed", primary: Signature{}, secondary: Signature{}},
		{name: "both ksid", primary: SignatureKsid, secondary: SignatureKsid},
		{name: "both soso", primary: SignatureSoso, secondary: SignatureSoso},
		{name: "primary wrong", primary: Signature{'k', 's', 'i', 'e'}, secondary: SignatureSoso},
		{name: "secondary wrong", primary: SignatureKsid, secondary: Signature{'s', 'o', 's', 'a'}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img := newTestImage(t, test.primary, test.secondary)
			putMarkers(t, img, UnpatchedMarker, 0x1000)
			before := bytes.Clone(img.Bytes())

			c := Classify(img)
			assert.Equal(t, StateCorrupted, c.State)
			assert.ErrorIs(t, c.Reason, ErrSignatureCorruption)
			assert.Equal(t, test.primary, c.Signatures.Primary)

			_, err := Apply(img, c)
			assert.ErrorIs(t, err, ErrNotPatchable)
			assert.Equal(t, before, img.Bytes(), "corrupt image must never be mutated")
		})
	}
}

func TestClassify_Truncated(t *testing.T) {
	img := NewImage(make([]byte, MinImageSize-1))

	c := Classify(img)
	assert.Equal(t, StateCorrupted, c.State)
	assert.ErrorIs(t, c.Reason, ErrImageTruncated)
}

func TestClassify_MinimumSize(t *testing.T) {
	img := NewImage(make([]byte, MinImageSize))
	require.NoError(t, img.SetSignatures(SignaturePair{Primary: SignatureSoso, Secondary: SignatureKsid}))

	c := Classify(img)
	assert.Equal(t, StateNeedsPatch, c.State)
	assert.True(t, c.ReversedSignatures)
}

func TestClassify_PatchState(t *testing.T) {
	tests := []struct {
		name         string
		patched      int
		unpatched    int
		wantState    State
		wantReason   error
		wantConfirm  bool
		wantPatched  int
		wantUnpatchd int
	}{
		{name: "fully patched", patched: 11, wantState: StateFullyPatched, wantPatched: 11},
		{name: "one unpatched", patched: 10, unpatched: 1, wantState: StateNeedsPatch, wantConfirm: true, wantPatched: 10, wantUnpatchd: 1},
		{name: "all unpatched", unpatched: 11, wantState: StateNeedsPatch, wantConfirm: true, wantUnpatchd: 11},
		{name: "unpatched with surplus patched", patched: 12, unpatched: 1, wantState: StateNeedsPatch, wantConfirm: true, wantPatched: 12, wantUnpatchd: 1},
		{name: "no markers", wantState: StateCorrupted, wantReason: ErrMarkerCountCorruption},
		{name: "too few patched", patched: 10, wantState: StateCorrupted, wantReason: ErrMarkerCountCorruption, wantPatched: 10},
		{name: "too many patched", patched: 12, wantState: StateCorrupted, wantReason: ErrMarkerCountCorruption, wantPatched: 12},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img := newTestImage(t, SignatureKsid, SignatureSoso)
			offsets := markerOffsets(test.patched + test.unpatched)
			putMarkers(t, img, PatchedMarker, offsets[:test.patched]...)
			putMarkers(t, img, UnpatchedMarker, offsets[test.patched:]...)

			c := Classify(img)
			assert.Equal(t, test.wantState, c.State)
			assert.False(t, c.ReversedSignatures)
			assert.True(t, c.MarkersScanned)
			assert.Equal(t, test.wantConfirm, c.NeedsConfirmation)
			assert.Equal(t, test.wantConfirm, c.PartiallyPatched())
			assert.Equal(t, test.wantPatched, c.PatchedMarkers)
			assert.Equal(t, test.wantUnpatchd, c.UnpatchedMarkers)

			if test.wantReason != nil {
				assert.ErrorIs(t, c.Reason, test.wantReason)
			} else {
				assert.NoError(t, c.Reason)
			}
		})
	}
}

func TestClassify_ReversedSkipsMarkerCheck(t *testing.T) {
	// A marker count that would otherwise be corrupt
	img := newTestImage(t, SignatureSoso, SignatureKsid)
	putMarkers(t, img, PatchedMarker, markerOffsets(3)...)

	c := Classify(img)
	assert.Equal(t, StateNeedsPatch, c.State)
	assert.True(t, c.ReversedSignatures)
	assert.False(t, c.NeedsConfirmation)
	assert.False(t, c.MarkersScanned)
	assert.NoError(t, c.Reason)
}

func TestClassify_DoesNotMutate(t *testing.T) {
	img := newTestImage(t, SignatureSoso, SignatureKsid)
	putMarkers(t, img, UnpatchedMarker, 0x1000)
	before := bytes.Clone(img.Bytes())

	Classify(img)
	assert.Equal(t, before, img.Bytes())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "incompatible-model", StateIncompatibleModel.String())
	assert.Equal(t, "corrupted", StateCorrupted.String())
	assert.Equal(t, "fully-patched", StateFullyPatched.String())
	assert.Equal(t, "needs-patch", StateNeedsPatch.String())
	assert.Equal(t, "unknown", State(42).String())
}
