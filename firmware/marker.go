package firmware

import (
	"bytes"
)

// Marker is a literal byte sequence searched
// for anywhere within an image.
type Marker []byte

var (
	// ModelMarker identifies a firmware built for
	// the nano 6, which this method does not support.
	ModelMarker = Marker("87232.0")

	// UnpatchedMarker is a validation marker still
	// set to the original execution method.
	UnpatchedMarker = Marker("87402.0\x04")

	// PatchedMarker is a validation marker that has
	// been switched to the new execution method.
	PatchedMarker = Marker("87402.0\x03")
)

const (
	// PatchedMarkerByte is the value written over the
	// last byte of an UnpatchedMarker.
	PatchedMarkerByte = 0x03

	// ExpectedPatchedMarkers is the number of patched
	// markers present in a fully patched image.
	ExpectedPatchedMarkers = 11
)

// Index returns the position of the first occurrence
// of the marker within data, or -1 if the marker is
// not present. An empty marker never matches.
func (marker Marker) Index(data []byte) int {
	if len(marker) == 0 || len(data) < len(marker) {
		return -1
	}

	return bytes.Index(data, marker)
}

// Contains reports whether the marker occurs
// anywhere within data.
func (marker Marker) Contains(data []byte) bool {
	return marker.Index(data) > -1
}

// Count returns the number of occurrences of the
// marker within data.
//
// Unlike bytes.Count the search resumes one byte
// after the start of each match, so overlapping
// occurrences are all counted.
func (marker Marker) Count(data []byte) int {
	if len(marker) == 0 {
		return 0
	}

	count := 0
	for pos := 0; pos+len(marker) <= len(data); {
		i := bytes.Index(data[pos:], marker)
		if i < 0 {
			break
		}

		count++
		pos += i + 1
	}

	return count
}

// ReplaceLastByte locates the first occurrence of the
// marker within data and overwrites its final byte
// with value.
//
// The absolute offset of the mutated byte is returned
// along with true, or -1 and false when the marker
// could not be found, in which case data is untouched.
func (marker Marker) ReplaceLastByte(data []byte, value byte) (int, bool) {
	pos := marker.Index(data)
	if pos < 0 {
		return -1, false
	}

	target := pos + len(marker) - 1
	data[target] = value
	return target, true
}
