package globals

import (
	"github.com/KatelynHaworth/mse-swapper/config"
)

// Config holds the effective configuration once
// the root command's pre-run has completed.
var Config = config.Default()
