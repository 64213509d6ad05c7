package cmd

import (
	"fmt"

	"github.com/KatelynHaworth/mse-swapper/config"
	"github.com/KatelynHaworth/mse-swapper/firmware"
	"github.com/spf13/pflag"
)

// options holds the values of the persistent
// flags shared by every sub-command.
type options struct {
	verbose    bool
	configFile string
	inputFile  string
	outputFile string
	fastMode   bool
	assumeYes  bool
	maxRuns    int
}

func (opts *options) bind(flags *pflag.FlagSet) {
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enables logging of debug level logs by the utility")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Specifies a utility configuration file (.json, .yaml, or .yml)")
	flags.StringVarP(&opts.inputFile, "input", "i", firmware.DefaultInputFile, "Specifies the firmware image to read, it is never modified")
	flags.StringVarP(&opts.outputFile, "output", "o", "", "Specifies where the patched image is written (defaults to the input name with a _modified suffix)")
	flags.BoolVar(&opts.fastMode, "fast", false, "Skips the pauses between messages")
	flags.BoolVarP(&opts.assumeYes, "yes", "y", false, "Answers yes to every confirmation prompt")
	flags.IntVar(&opts.maxRuns, "max-runs", 1, "Number of patch steps to apply in memory before writing the output")
}

// resolve builds the effective configuration from the
// configuration file, if any, with explicitly set flags
// taking precedence over its values.
//
// Defaults are applied last, so the output path is only
// derived from the input when neither the file nor the
// --output flag names one.
func (opts *options) resolve(flags *pflag.FlagSet) (*config.Configuration, error) {
	cfg := new(config.Configuration)
	if len(opts.configFile) != 0 {
		var err error
		if cfg, err = config.LoadConfigurationFromFile(opts.configFile, config.FormatForFile(opts.configFile)); err != nil {
			return nil, fmt.Errorf("load config from file: %w", err)
		}
	}

	if flags.Changed("input") {
		cfg.Input = opts.inputFile
	}

	if flags.Changed("output") {
		cfg.Output = opts.outputFile
	}

	if flags.Changed("fast") {
		cfg.Fast = opts.fastMode
	}

	if flags.Changed("yes") {
		cfg.AssumeYes = opts.assumeYes
	}

	if flags.Changed("max-runs") {
		cfg.MaxRuns = opts.maxRuns
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}
