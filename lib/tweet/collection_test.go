package tweet_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"tweetwatch/lib/tweet"
)

func makeTweet(values map[string]string) *tweet.Tweet {
	t := tweet.NewTweet()
	t.SetAll(values)
	return t
}

func TestAddTweetContract(t *testing.T) {
	c := tweet.NewCollection()

	require.Equal(t, tweet.NotAdded, c.AddTweet(tweet.NewTweet()))
	require.Equal(t, tweet.Appended, c.AddTweet(makeTweet(map[string]string{"tweetid": "42"})))
	require.Equal(t, tweet.Merged, c.AddTweet(makeTweet(map[string]string{"tweetid": "42"})))
	require.Equal(t, 1, c.Len())
}

func TestAddTweetIdempotent(t *testing.T) {
	c := tweet.NewCollection()
	record := map[string]string{"tweetid": "1", "tweettext": "hi", "favoritecount": "3"}

	c.AddTweet(makeTweet(record))
	before, _ := c.Get("1")
	snapshot := before.Attrs()

	require.Equal(t, tweet.Merged, c.AddTweet(makeTweet(record)))
	after, _ := c.Get("1")
	if diff := cmp.Diff(snapshot, after.Attrs()); diff != "" {
		t.Fatal(diff)
	}
}

func TestMergeFillsGapsEitherOrder(t *testing.T) {
	sparse := map[string]string{"tweetid": "1", "tweettext": "", "favoritecount": "0"}
	full := map[string]string{"tweetid": "1", "tweettext": "hello", "favoritecount": "5"}

	forward := tweet.NewCollection()
	forward.AddTweet(makeTweet(sparse))
	forward.AddTweet(makeTweet(full))

	reverse := tweet.NewCollection()
	reverse.AddTweet(makeTweet(full))
	reverse.AddTweet(makeTweet(sparse))

	for _, c := range []*tweet.Collection{forward, reverse} {
		got, ok := c.Get("1")
		require.True(t, ok)
		require.Equal(t, "hello", got.Get("tweettext"))
		require.Equal(t, "5", got.Get("favoritecount"))
	}
}

func TestMergeNeverOverwrites(t *testing.T) {
	c := tweet.NewCollection()
	c.AddTweet(makeTweet(map[string]string{"tweetid": "1", "tweettext": "first"}))
	c.AddTweet(makeTweet(map[string]string{"tweetid": "1", "tweettext": "second"}))

	got, _ := c.Get("1")
	require.Equal(t, "first", got.Get("tweettext"))
}

func TestErrorsRoundTrip(t *testing.T) {
	record := tweet.NewTweet()
	require.Nil(t, record.Errors())

	record.AddError("no id recovered")
	record.AddError("no date recovered")
	require.Equal(t, []string{"no id recovered", "no date recovered"}, record.Errors())
}

func TestUnknownKeysIgnored(t *testing.T) {
	record := tweet.NewTweet()
	record.Set("__proto__", "evil")
	_, ok := record.Attrs()["__proto__"]
	require.False(t, ok)
}
