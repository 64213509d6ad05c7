package firmware

import (
	"testing"
)

const testImageSize = 0x5200

// newTestImage returns a zero filled image of testImageSize
// bytes with the signature fields set to the supplied pair.
func newTestImage(t *testing.T, primary, secondary Signature) *Image {
	t.Helper()

	img := NewImage(make([]byte, testImageSize))
	if err := img.SetSignatures(SignaturePair{Primary: primary, Secondary: secondary}); err != nil {
		t.Fatalf("set signatures: %s", err)
	}

	return img
}

// putMarkers copies marker to each of the offsets in img.
func putMarkers(t *testing.T, img *Image, marker Marker, offsets ...int) {
	t.Helper()

	for _, offset := range offsets {
		if offset+len(marker) > img.Len() {
			t.Fatalf("marker at 0x%x overruns image", offset)
		}

		copy(img.Bytes()[offset:], marker)
	}
}

// markerOffsets returns count offsets spaced 0x100 bytes
// apart starting at 0x100, clear of both signature fields.
func markerOffsets(count int) []int {
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = 0x100 * (i + 1)
	}

	return offsets
}
