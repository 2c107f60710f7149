package telemetry_test

import (
	"context"
	"testing"

	"tweetwatch/lib/telemetry"
)

func TestInstrumentPerfStatsHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// returns immediately; the sampling goroutine exits on the dead context
	telemetry.InstrumentPerfStats(ctx)
}
