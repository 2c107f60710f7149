package capture_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"tweetwatch/lib/capture"
)

func TestRecorderDumpAndLoad(t *testing.T) {
	recorder := capture.NewRecorder()
	recorder.Record(`{"globalObjects": {"tweets": {}, "users": {}}}`)
	recorder.Record(`[{"token": "x", "user": {"id_str": "1"}}]`)

	dir := filepath.Join(t.TempDir(), "payloads")
	require.NoError(t, recorder.Dump(dir))

	loaded, err := capture.LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, recorder.Payloads(), loaded)
}
