package main

import (
	"context"

	"tweetwatch/cmd/tweetwatch/commands"
	"tweetwatch/lib/telemetry"
)

func main() {
	ctx := context.Background()

	telemetry.SetupFromEnv(ctx, "tweetwatch")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
