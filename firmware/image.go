package firmware

import (
	"errors"
	"fmt"
)

const (
	// PrimarySignatureOffset defines the position,
	// within a Firmware.MSE image, of the first
	// 4 byte signature field.
	PrimarySignatureOffset = 0x5004

	// SecondarySignatureOffset defines the position,
	// within a Firmware.MSE image, of the second
	// 4 byte signature field.
	SecondarySignatureOffset = 0x5194

	// SignatureSize defines the size, in bytes,
	// of each signature field.
	SignatureSize = 4

	// MinImageSize defines the smallest image, in
	// bytes, that can hold both signature fields.
	MinImageSize = SecondarySignatureOffset + SignatureSize
)

var (
	// SignatureKsid is the value expected at the
	// PrimarySignatureOffset of a correctly
	// oriented image.
	SignatureKsid = Signature{'k', 's', 'i', 'd'}

	// SignatureSoso is the value expected at the
	// SecondarySignatureOffset of a correctly
	// oriented image.
	SignatureSoso = Signature{'s', 'o', 's', 'o'}

	ErrImageTruncated = errors.New("image is too small to contain the signature fields")
)

// Signature represents the raw value of one
// of the two fixed-offset signature fields.
type Signature [SignatureSize]byte

// String returns the signature as text when it
// is printable ASCII, otherwise as hex.
func (sig Signature) String() string {
	for _, b := range sig {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("0x%x", sig[:])
		}
	}

	return string(sig[:])
}

// SignaturePair holds the values read from
// both signature fields of an image.
type SignaturePair struct {
	Primary   Signature
	Secondary Signature
}

// Normal reports if the pair is in the
// (ksid, soso) orientation.
func (pair SignaturePair) Normal() bool {
	return pair.Primary == SignatureKsid && pair.Secondary == SignatureSoso
}

// Reversed reports if the pair is in the
// (soso, ksid) orientation left behind by
// the previous execution method.
func (pair SignaturePair) Reversed() bool {
	return pair.Primary == SignatureSoso && pair.Secondary == SignatureKsid
}

// Image is an in-memory Firmware.MSE container.
//
// No structural parsing is performed on the
// contents, the image is an opaque byte buffer
// with two fixed-offset signature fields and
// some number of variable-offset markers.
type Image struct {
	data []byte
}

// NewImage wraps the supplied buffer as an Image,
// the buffer is not copied and will be mutated
// in place by the patch applier.
func NewImage(data []byte) *Image {
	return &Image{data: data}
}

// Bytes returns the underlying buffer of the image.
func (img *Image) Bytes() []byte {
	return img.data
}

// Len returns the size of the image in bytes.
func (img *Image) Len() int {
	return len(img.data)
}

// Signatures reads both signature fields from
// the image.
func (img *Image) Signatures() (SignaturePair, error) {
	var pair SignaturePair
	if len(img.data) < MinImageSize {
		return pair, fmt.Errorf("%d < %d bytes: %w", len(img.data), MinImageSize, ErrImageTruncated)
	}

	copy(pair.Primary[:], img.data[PrimarySignatureOffset:])
	copy(pair.Secondary[:], img.data[SecondarySignatureOffset:])
	return pair, nil
}

// SetSignatures overwrites both signature fields
// with the values from the supplied pair without
// inspecting their previous contents.
func (img *Image) SetSignatures(pair SignaturePair) error {
	if len(img.data) < MinImageSize {
		return fmt.Errorf("%d < %d bytes: %w", len(img.data), MinImageSize, ErrImageTruncated)
	}

	copy(img.data[PrimarySignatureOffset:], pair.Primary[:])
	copy(img.data[SecondarySignatureOffset:], pair.Secondary[:])
	return nil
}
