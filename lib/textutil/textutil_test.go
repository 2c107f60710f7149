package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"tweetwatch/lib/textutil"
)

func TestSimplifyText(t *testing.T) {
	require.Equal(t, "show more replies", textutil.SimplifyText("  Show  more\n\treplies "))
	require.Equal(t, "", textutil.SimplifyText("   \n"))
}

func TestNumericPhrase(t *testing.T) {
	phrase := textutil.ParseNumericPhrase("4,081 Views")
	require.Equal(t, []string{"4081"}, phrase.Numbers)
	require.Equal(t, []string{"views"}, phrase.Words)
	require.Equal(t, "4081", phrase.FirstNumber())

	empty := textutil.ParseNumericPhrase("no numbers here")
	require.Empty(t, empty.Numbers)
	require.Equal(t, "", empty.FirstNumber())
}
