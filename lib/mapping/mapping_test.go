package mapping_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"tweetwatch/lib/mapping"
)

var fields = []mapping.Field{
	{TargetKey: "tweetid", SourceKey: "id_str", Default: "0"},
	{TargetKey: "tweettext", SourceKey: "full_text", Default: ""},
	{TargetKey: "favoritecount", SourceKey: "favorite_count", Default: "0"},
}

func TestImportRoundTrip(t *testing.T) {
	source := map[string]any{
		"id_str":         "1715239385234613204",
		"full_text":      "hello world",
		"favorite_count": json.Number("41"),
	}

	attrs := mapping.Import(fields, source)
	exported := mapping.Export(fields, attrs)

	want := map[string]string{
		"tweetid":       "1715239385234613204",
		"tweettext":     "hello world",
		"favoritecount": "41",
	}
	if diff := cmp.Diff(want, exported); diff != "" {
		t.Fatal(diff)
	}
}

func TestImportDefaults(t *testing.T) {
	attrs := mapping.Import(fields, map[string]any{})
	require.Equal(t, "0", attrs["tweetid"])
	require.Equal(t, "", attrs["tweettext"])
	require.Equal(t, "0", attrs["favoritecount"])
}

func TestImporterOverride(t *testing.T) {
	custom := []mapping.Field{
		{
			TargetKey: "time",
			Default:   "0",
			Importer: func(target map[string]string, source map[string]any) {
				target["time"] = mapping.AsString(source["epoch_ms"])
			},
		},
	}
	attrs := mapping.Import(custom, map[string]any{"epoch_ms": json.Number("1697000000")})
	require.Equal(t, "1697000000", attrs["time"])
}

func TestFillGaps(t *testing.T) {
	primary := map[string]string{"tweetid": "42", "tweettext": "", "favoritecount": "0"}
	secondary := map[string]string{"tweettext": "filled", "favoritecount": "7", "tweetid": "99"}

	mapping.FillGaps(primary, secondary)

	require.Equal(t, "42", primary["tweetid"])
	require.Equal(t, "filled", primary["tweettext"])
	require.Equal(t, "7", primary["favoritecount"])
}

func TestAsString(t *testing.T) {
	require.Equal(t, "true", mapping.AsString(true))
	require.Equal(t, "false", mapping.AsString(false))
	require.Equal(t, "", mapping.AsString(nil))
	require.Equal(t, "1.5", mapping.AsString(1.5))
	require.Equal(t, "1715239385234613204", mapping.AsString(json.Number("1715239385234613204")))
}
