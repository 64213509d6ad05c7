package prompt

import (
	"context"
	"time"
)

// Pacer spaces out console output so that warnings
// are read before the user is asked to confirm.
//
// In fast mode all pauses return immediately.
type Pacer struct {
	Fast bool
}

// Pause blocks for d unless fast mode is enabled,
// returning early with the context error if ctx
// is cancelled first.
func (pacer Pacer) Pause(ctx context.Context, d time.Duration) error {
	if pacer.Fast || d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return nil
	}
}
