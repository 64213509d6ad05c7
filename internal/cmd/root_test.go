package cmd

import (
	"bytes"
	"testing"

	. "github.com/KatelynHaworth/mse-swapper/internal/cmd/globals"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreRun_ConfigurationDump(t *testing.T) {
	savedLogger, savedLevel, savedOpts := Logger, zerolog.GlobalLevel(), opts
	t.Cleanup(func() {
		Logger, opts = savedLogger, savedOpts
		zerolog.SetGlobalLevel(savedLevel)
	})

	tests := []struct {
		name     string
		args     []string
		wantDump bool
	}{
		{name: "info level", args: nil, wantDump: false},
		{name: "verbose", args: []string{"-v"}, wantDump: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var logs bytes.Buffer
			Logger = zerolog.New(&logs)
			opts = options{}

			cmd := &cobra.Command{Use: "test"}
			opts.bind(cmd.Flags())
			require.NoError(t, cmd.Flags().Parse(test.args))

			require.NoError(t, preRun(cmd, nil))
			assert.Equal(t, test.wantDump, bytes.Contains(logs.Bytes(), []byte("Effective configuration")))
			assert.Equal(t, "Firmware_modified.MSE", Config.Output)
		})
	}
}
