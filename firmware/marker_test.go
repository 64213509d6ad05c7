package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarker_Index(t *testing.T) {
	data := make([]byte, 64)

	t.Run("last possible offset", func(t *testing.T) {
		buf := append([]byte(nil), data...)
		last := len(buf) - len(UnpatchedMarker)
		copy(buf[last:], UnpatchedMarker)

		assert.Equal(t, last, UnpatchedMarker.Index(buf))
	})

	t.Run("diverging final byte", func(t *testing.T) {
		buf := append([]byte(nil), data...)
		copy(buf[10:], PatchedMarker)

		assert.Equal(t, -1, UnpatchedMarker.Index(buf))
		assert.Equal(t, 10, PatchedMarker.Index(buf))
	})

	t.Run("truncated at end of buffer", func(t *testing.T) {
		buf := append([]byte(nil), data...)
		copy(buf[len(buf)-7:], UnpatchedMarker[:7])

		assert.Equal(t, -1, UnpatchedMarker.Index(buf))
	})

	t.Run("shorter than marker", func(t *testing.T) {
		assert.Equal(t, -1, UnpatchedMarker.Index([]byte("87402")))
	})

	t.Run("empty marker", func(t *testing.T) {
		assert.Equal(t, -1, Marker(nil).Index(data))
	})
}

func TestMarker_Count(t *testing.T) {
	tests := []struct {
		name   string
		marker Marker
		data   []byte
		want   int
	}{
		{name: "none", marker: PatchedMarker, data: make([]byte, 32), want: 0},
		{name: "one", marker: ModelMarker, data: []byte("xx87232.0yy"), want: 1},
		{name: "adjacent", marker: PatchedMarker, data: []byte("87402.0\x0387402.0\x03"), want: 2},
		{name: "overlapping", marker: Marker("aa"), data: []byte("aaaa"), want: 3},
		{name: "empty marker", marker: Marker{}, data: []byte("aaaa"), want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.marker.Count(test.data))
		})
	}
}

func TestMarker_ReplaceLastByte(t *testing.T) {
	buf := make([]byte, 0x2000)
	copy(buf[0x1000:], UnpatchedMarker)
	copy(buf[0x1800:], UnpatchedMarker)
	before := append([]byte(nil), buf...)

	offset, found := UnpatchedMarker.ReplaceLastByte(buf, PatchedMarkerByte)
	require.True(t, found)
	assert.Equal(t, 0x1007, offset)
	assert.Equal(t, byte(PatchedMarkerByte), buf[0x1007])

	before[0x1007] = PatchedMarkerByte
	assert.Equal(t, before, buf, "only the first marker should change")

	offset, found = Marker("missing").ReplaceLastByte(buf, 0xff)
	assert.False(t, found)
	assert.Equal(t, -1, offset)
	assert.Equal(t, before, buf)
}
