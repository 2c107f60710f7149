package runstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"tweetwatch/lib/runstore"
	"tweetwatch/lib/testutil"
)

func TestSaveAndLoadRun(t *testing.T) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "runstore",
		DbSchema: runstore.Schema,
	})
	defer cleanup()

	store, err := runstore.NewStore(result.DB)
	require.NoError(t, err)

	records := []map[string]string{
		{"map_type": "tweetid_to_supposed_qualities", "1": "LowQuality"},
		{"map_type": "tweet", "tweetid": "1", "tweettext": "hello"},
		{"map_type": "user", "id": "7", "handle": "jdoe"},
		{
			"map_type":      "metadata",
			"url":           "https://example.com/jdoe/status/1",
			"request_date":  "1697803200",
			"completed":     "true",
			"error_code":    "",
			"error_message": "",
		},
	}

	runID, err := store.SaveRun(context.Background(), records)
	require.NoError(t, err)

	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, runID, runs[0].ID)
	require.Equal(t, "https://example.com/jdoe/status/1", runs[0].Url)
	require.True(t, runs[0].Completed)
	require.Equal(t, int64(1697803200), runs[0].RequestDate)

	loaded, err := store.GetRecords(context.Background(), runID)
	require.NoError(t, err)
	require.Equal(t, records, loaded)
}

func TestSaveRunWithoutMetadata(t *testing.T) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "runstore",
		DbSchema: runstore.Schema,
	})
	defer cleanup()

	store, err := runstore.NewStore(result.DB)
	require.NoError(t, err)

	runID, err := store.SaveRun(context.Background(), []map[string]string{
		{"map_type": "tweet", "tweetid": "2"},
	})
	require.NoError(t, err)

	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.False(t, runs[0].Completed)
	require.Equal(t, runID, runs[0].ID)
}
