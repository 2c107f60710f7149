package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"tweetwatch/lib/capture"
	"tweetwatch/lib/jsonparse"
)

var parseJsonDb *string

func init() {
	parseJsonDb = parseJsonCmd.Flags().String("db", "", "If set, persist the batch output to this database.")
	rootCmd.AddCommand(parseJsonCmd)
}

var parseJsonCmd = &cobra.Command{
	Use:   "parse-json <payload-dir> [--db <path/to/output.db>]",
	Short: "Parses a directory of captured JSON payloads and prints the extracted records.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		payloads, err := capture.LoadDir(args[0])
		if err != nil {
			fatal("failed to load payloads", err)
		}
		slog.Info("parsing captured payloads", "count", len(payloads))

		result := jsonparse.ParseBatch(cmd.Context(), payloads)
		for _, batchErr := range result.Errors {
			slog.Warn("payload skipped", "reason", batchErr)
		}

		records := result.Export()
		printRecords(records)

		if *parseJsonDb != "" {
			persistRecords(cmd, *parseJsonDb, records)
		}
	},
}
