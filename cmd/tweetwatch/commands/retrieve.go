package commands

import (
	"errors"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"tweetwatch/lib/configutil"
	"tweetwatch/lib/page"
	"tweetwatch/lib/retriever"
	"tweetwatch/lib/runstore"
	"tweetwatch/lib/tweet"
)

var (
	retrieveUrl      *string
	retrievePageType *string
	retrieveDb       *string
)

func init() {
	retrieveUrl = retrieveCmd.Flags().String("url", "", "The page to retrieve.")
	retrievePageType = retrieveCmd.Flags().String("page-type", "timeline", "Either 'timeline' or 'reply'.")
	retrieveDb = retrieveCmd.Flags().String("db", "", "If set, persist the run output to this database.")
	rootCmd.AddCommand(retrieveCmd)
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve --url <url> [--page-type timeline|reply] [--db <path/to/output.db>]",
	Short: "Runs a retrieval pass against a page and prints the extracted records.",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := configutil.ReadConfig[retriever.Params]("tweetwatch.json5")
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			fatal("failed to read config", err)
		}
		if *retrieveUrl != "" {
			params.Url = *retrieveUrl
		}
		if *retrievePageType != "" {
			params.PageType = retriever.PageType(*retrievePageType)
		}
		if params.Url == "" {
			fatal("no url given", errors.New("provide --url or set url in tweetwatch.json5"))
		}

		view, err := page.NewStaticView(cmd.Context(), page.StaticViewOptions{Url: params.Url})
		if err != nil {
			fatal("failed to load page", err)
		}

		t1 := time.Now()
		records := retriever.NewRunner(view, params).Run(cmd.Context())
		t2 := time.Now()

		printRecords(records)
		cmd.Printf("retrieval time: %.2fs\n", t2.Sub(t1).Seconds())

		if *retrieveDb != "" {
			persistRecords(cmd, *retrieveDb, records)
		}
	},
}

func persistRecords(cmd *cobra.Command, dbpath string, records []map[string]string) {
	db, err := runstore.Config{Path: dbpath}.OpenDB()
	if err != nil {
		fatal("failed to open db", err)
	}
	defer db.Close()

	store, err := runstore.NewStore(db)
	if err != nil {
		fatal("failed to initialize store", err)
	}
	runID, err := store.SaveRun(cmd.Context(), records)
	if err != nil {
		fatal("failed to persist run", err)
	}
	cmd.Printf("saved run %d to %s\n", runID, dbpath)
}

func printRecords(records []map[string]string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Type", "ID", "Handle", "Text", "Quality", "Errors"})

	for _, record := range records {
		switch record["map_type"] {
		case tweet.MapTypeTweet:
			t.AppendRow(table.Row{
				"tweet",
				record["tweetid"],
				record["screenname"],
				truncate(record["tweettext"], 48),
				record["quality"],
				truncate(record["errors"], 32),
			})
		case tweet.MapTypeUser:
			t.AppendRow(table.Row{
				"user",
				record["id"],
				record["handle"],
				record["displayName"],
				"",
				truncate(record["errors"], 32),
			})
		case tweet.MapTypeMetadata:
			t.AppendRow(table.Row{
				"metadata",
				"",
				"",
				record["last_compound"],
				"completed=" + record["completed"],
				record["error_code"],
			})
		}
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
