package tweet_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"tweetwatch/lib/tweet"
)

func TestParseLink(t *testing.T) {
	photo := tweet.ParseLink("/jdoe/status/12345/photo/1")
	require.Equal(t, tweet.LinkStatusPhoto, photo.Kind)
	require.Equal(t, "jdoe", photo.Handle)
	require.Equal(t, "12345", photo.StatusID)
	require.Equal(t, "1", photo.PhotoIndex)
	require.True(t, photo.Valid())
	require.True(t, photo.IsStatus())
	require.False(t, photo.IsInteraction())

	hashtag := tweet.ParseLink("/hashtag/cats?src=x")
	require.Equal(t, tweet.LinkHashtag, hashtag.Kind)
	require.Equal(t, "cats", hashtag.Hashtag)

	short := tweet.ParseLink("https://t.co/AbC123")
	require.Equal(t, tweet.LinkShortened, short.Kind)
	require.Equal(t, "AbC123", short.ShortCode)

	bare := tweet.ParseLink("/jdoe")
	require.Equal(t, tweet.LinkBare, bare.Kind)
	require.Equal(t, "jdoe", bare.Handle)

	help := tweet.ParseLink("https://help.twitter.com/using-twitter/how-to-tweet")
	require.Equal(t, tweet.LinkHelp, help.Kind)

	invalid := tweet.ParseLink("/a/b/c")
	require.Equal(t, tweet.LinkInvalid, invalid.Kind)
	require.NotEmpty(t, invalid.Err)
	require.False(t, invalid.Valid())

	blank := tweet.ParseLink("   ")
	require.Equal(t, tweet.LinkUnevaluated, blank.Kind)
	require.Empty(t, blank.Err)
}

func TestParseLinkInteractions(t *testing.T) {
	retweet := tweet.ParseLink("/jdoe/status/12345/retweet")
	require.Equal(t, tweet.LinkStatusRetweet, retweet.Kind)
	require.True(t, retweet.IsInteraction())

	like := tweet.ParseLink("/jdoe/status/12345/like")
	require.Equal(t, tweet.LinkStatusLike, like.Kind)

	reply := tweet.ParseLink("/jdoe/status/12345/reply")
	require.Equal(t, tweet.LinkStatusReply, reply.Kind)

	status := tweet.ParseLink("/jdoe/status/12345")
	require.Equal(t, tweet.LinkStatus, status.Kind)
	require.False(t, status.IsInteraction())
	require.Equal(t, "/jdoe/status/12345", status.StatusPath())
}
