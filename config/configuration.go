package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KatelynHaworth/mse-swapper/firmware"
	"gopkg.in/yaml.v2"
)

type ConfigFormat uint8

const (
	ConfigFormatJSON ConfigFormat = iota
	ConfigFormatYAML
)

// currentVersion is the newest configuration
// version understood by this utility.
const currentVersion = 1

func (format ConfigFormat) decode(src io.Reader, dst any) error {
	switch format {
	case ConfigFormatJSON:
		return json.NewDecoder(src).Decode(dst)

	case ConfigFormatYAML:
		return yaml.NewDecoder(src).Decode(dst)

	default:
		return errors.New("unsupported config format")
	}
}

// FormatForFile picks the ConfigFormat for a file
// based on its extension, defaulting to JSON.
func FormatForFile(path string) ConfigFormat {
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		return ConfigFormatYAML
	}

	return ConfigFormatJSON
}

var (
	ErrUnsupportedVersion = errors.New("unsupported configuration version")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Configuration holds the settings for a run of
// the utility, either loaded from a file or built
// from command line flags.
type Configuration struct {
	ConfigVersion int `json:"config_version" yaml:"config_version"`

	// Input is the firmware image to be read, it
	// is never written to.
	Input string `json:"input" yaml:"input"`

	// Output is where the patched image is written,
	// when empty it is derived from Input.
	Output string `json:"output" yaml:"output"`

	// Fast disables the pauses between messages.
	Fast bool `json:"fast" yaml:"fast"`

	// AssumeYes grants every confirmation without
	// waiting for the user.
	AssumeYes bool `json:"assume_yes" yaml:"assume_yes"`

	// MaxRuns is the number of patch steps applied
	// in memory before the output is written.
	MaxRuns int `json:"max_runs" yaml:"max_runs"`
}

// Default returns the configuration used when no
// configuration file is supplied.
func Default() *Configuration {
	config := &Configuration{ConfigVersion: currentVersion}
	config.ApplyDefaults()

	return config
}

// ApplyDefaults fills in any unset fields.
func (config *Configuration) ApplyDefaults() {
	if config.ConfigVersion == 0 {
		config.ConfigVersion = currentVersion
	}

	if len(config.Input) == 0 {
		config.Input = firmware.DefaultInputFile
	}

	if len(config.Output) == 0 {
		config.Output = firmware.DeriveOutputPath(config.Input)
	}

	if config.MaxRuns < 1 {
		config.MaxRuns = 1
	}
}

// Validate checks the configuration can be used
// for a run of the utility.
func (config *Configuration) Validate() error {
	switch {
	case config.ConfigVersion < 0 || config.ConfigVersion > currentVersion:
		return fmt.Errorf("version %d: %w", config.ConfigVersion, ErrUnsupportedVersion)

	case len(config.Input) == 0:
		return fmt.Errorf("no input file specified: %w", ErrInvalidConfig)

	case len(config.Output) == 0:
		return fmt.Errorf("no output file specified: %w", ErrInvalidConfig)

	case filepath.Clean(config.Input) == filepath.Clean(config.Output):
		return fmt.Errorf("output file must differ from the input file: %w", ErrInvalidConfig)

	case config.MaxRuns < 1:
		return fmt.Errorf("max runs must be at least 1: %w", ErrInvalidConfig)

	default:
		return nil
	}
}

// LoadConfigurationFromFile decodes the configuration
// stored in srcFile. Omitted fields are left unset so
// command line flags can still be layered on top, call
// ApplyDefaults once they have been.
//
// Relative input and output paths are resolved against
// the directory containing srcFile.
func LoadConfigurationFromFile(srcFile string, format ConfigFormat) (*Configuration, error) {
	src, err := os.OpenFile(srcFile, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open configuration file: %w", err)
	}
	defer src.Close()

	config := new(Configuration)
	if err = format.decode(src, config); err != nil {
		return nil, fmt.Errorf("decode configuration file: %w", err)
	}

	if config.ConfigVersion < 0 || config.ConfigVersion > currentVersion {
		return nil, fmt.Errorf("version %d: %w", config.ConfigVersion, ErrUnsupportedVersion)
	}

	baseDir := filepath.Dir(srcFile)
	config.Input = resolvePath(baseDir, config.Input)
	config.Output = resolvePath(baseDir, config.Output)

	return config, nil
}

func resolvePath(baseDir, path string) string {
	if len(path) == 0 || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(baseDir, path)
}
