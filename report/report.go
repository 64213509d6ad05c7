package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/KatelynHaworth/mse-swapper/firmware"
	"gopkg.in/yaml.v2"
	"howett.net/plist"
)

type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
	FormatPlist
)

var (
	ErrUnknownFormat = errors.New("unknown report format")

	formatNames = map[Format]string{
		FormatText:  "text",
		FormatJSON:  "json",
		FormatYAML:  "yaml",
		FormatPlist: "plist",
	}
)

// ParseFormat returns the Format matching name.
func ParseFormat(name string) (Format, error) {
	for format, formatName := range formatNames {
		if strings.EqualFold(name, formatName) {
			return format, nil
		}
	}

	return FormatText, fmt.Errorf("%q: %w", name, ErrUnknownFormat)
}

func (format Format) String() string {
	if name, ok := formatNames[format]; ok {
		return name
	}

	return fmt.Sprintf("Format(%d)", format)
}

// Report describes the inspection of a single
// firmware image.
//
// Marker counts and offsets are always surveyed
// across the whole image, independently of which
// checks the classifier needed to run.
type Report struct {
	File string `json:"file" yaml:"file" plist:"file"`
	Size int    `json:"size" yaml:"size" plist:"size"`

	State             string `json:"state" yaml:"state" plist:"state"`
	Reason            string `json:"reason,omitempty" yaml:"reason,omitempty" plist:"reason,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation" yaml:"needs_confirmation" plist:"needs-confirmation"`

	Signatures Signatures `json:"signatures" yaml:"signatures" plist:"signatures"`
	Markers    Markers    `json:"markers" yaml:"markers" plist:"markers"`
}

type Signatures struct {
	Primary     string `json:"primary" yaml:"primary" plist:"primary"`
	Secondary   string `json:"secondary" yaml:"secondary" plist:"secondary"`
	Orientation string `json:"orientation" yaml:"orientation" plist:"orientation"`
}

type Markers struct {
	ModelMarkerOffset    int `json:"model_marker_offset" yaml:"model_marker_offset" plist:"model-marker-offset"`
	Patched              int `json:"patched" yaml:"patched" plist:"patched"`
	Unpatched            int `json:"unpatched" yaml:"unpatched" plist:"unpatched"`
	FirstUnpatchedOffset int `json:"first_unpatched_offset" yaml:"first_unpatched_offset" plist:"first-unpatched-offset"`
}

// New builds a Report for the image loaded from file
// using the result of firmware.Classify.
func New(file string, img *firmware.Image, c firmware.Classification) *Report {
	data := img.Bytes()
	report := &Report{
		File:              file,
		Size:              img.Len(),
		State:             c.State.String(),
		NeedsConfirmation: c.NeedsConfirmation,
		Markers: Markers{
			ModelMarkerOffset:    firmware.ModelMarker.Index(data),
			Patched:              firmware.PatchedMarker.Count(data),
			Unpatched:            firmware.UnpatchedMarker.Count(data),
			FirstUnpatchedOffset: firmware.UnpatchedMarker.Index(data),
		},
	}

	if c.Reason != nil {
		report.Reason = c.Reason.Error()
	}

	if pair, err := img.Signatures(); err == nil {
		report.Signatures.Primary = pair.Primary.String()
		report.Signatures.Secondary = pair.Secondary.String()

		switch {
		case pair.Normal():
			report.Signatures.Orientation = "normal"

		case pair.Reversed():
			report.Signatures.Orientation = "reversed"

		default:
			report.Signatures.Orientation = "invalid"
		}
	} else {
		report.Signatures.Orientation = "missing"
	}

	return report
}

// Encode writes the report to w in the supplied format.
func Encode(w io.Writer, format Format, report *Report) error {
	switch format {
	case FormatText:
		return encodeText(w, report)

	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)

	case FormatYAML:
		return yaml.NewEncoder(w).Encode(report)

	case FormatPlist:
		encoder := plist.NewEncoder(w)
		encoder.Indent("\t")
		return encoder.Encode(report)

	default:
		return fmt.Errorf("%s: %w", format, ErrUnknownFormat)
	}
}

func encodeText(w io.Writer, report *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "File:\t%s\n", report.File)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", report.Size)
	fmt.Fprintf(tw, "State:\t%s\n", report.State)
	if len(report.Reason) > 0 {
		fmt.Fprintf(tw, "Reason:\t%s\n", report.Reason)
	}
	fmt.Fprintf(tw, "Needs confirmation:\t%t\n", report.NeedsConfirmation)
	fmt.Fprintf(tw, "Signatures:\t%s / %s (%s)\n", report.Signatures.Primary, report.Signatures.Secondary, report.Signatures.Orientation)
	fmt.Fprintf(tw, "Model marker:\t%s\n", formatOffset(report.Markers.ModelMarkerOffset))
	fmt.Fprintf(tw, "Patched markers:\t%d\n", report.Markers.Patched)
	fmt.Fprintf(tw, "Unpatched markers:\t%d\n", report.Markers.Unpatched)
	fmt.Fprintf(tw, "First unpatched marker:\t%s\n", formatOffset(report.Markers.FirstUnpatchedOffset))

	return tw.Flush()
}

func formatOffset(offset int) string {
	if offset < 0 {
		return "not found"
	}

	return fmt.Sprintf("0x%X", offset)
}
