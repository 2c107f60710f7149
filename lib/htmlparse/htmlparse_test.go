package htmlparse_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"tweetwatch/lib/htmlparse"
)

const fullArticle = `
<article>
	<div>
		<div>
			<div>
				<div>
					<img src="https://pbs.twimg.com/profile_images/123/jdoe.jpg"/>
				</div>
			</div>
		</div>
	</div>
	<div>
		<a role="link" href="/jdoe"><span>John Doe</span></a>
		<svg aria-label="Verified account" data-testid="icon-verified"></svg>
	</div>
	<a href="/jdoe/status/12345"><time datetime="2023-10-20T12:00:00.000Z">Oct 20</time></a>
	<div>
		<div lang="en"><span>hello world</span></div>
	</div>
	<div>
		<div>
			<a href="/jdoe/status/12345/photo/1"><img src="https://pbs.twimg.com/media/abc.jpg"/></a>
		</div>
	</div>
	<div aria-label="3 replies, 5 reposts, 9 likes"></div>
	<a aria-label="4,081 views" href="/jdoe/status/12345/analytics"></a>
</article>`

func selection(t *testing.T, html string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("article")
}

func TestExtractFullArticle(t *testing.T) {
	record := htmlparse.Extract(selection(t, fullArticle))

	require.Equal(t, "12345", record.Get("tweetid"))
	require.Equal(t, "jdoe", record.Get("screenname"))
	require.Equal(t, "John Doe", record.Get("fullname"))
	require.Equal(t, "/jdoe/status/12345", record.Get("permalinkpath"))
	require.Equal(t, "2023-10-20T12:00:00.000Z", record.Get("datestring"))
	require.Equal(t, "hello world", record.Get("tweettext"))
	require.Equal(t, "en", record.Get("tweetlanguage"))
	require.Equal(t, "3", record.Get("replycount"))
	require.Equal(t, "5", record.Get("retweetcount"))
	require.Equal(t, "9", record.Get("favoritecount"))
	require.Equal(t, "4081", record.Get("viewscount"))
	require.Equal(t, "/jdoe/status/12345/photo/1", record.Get("tweetphoto_link"))
	require.Equal(t, "https://pbs.twimg.com/media/abc.jpg", record.Get("tweetphoto_image"))
	require.Equal(t, "https://pbs.twimg.com/profile_images/123/jdoe.jpg", record.Get("avatarURL"))

	require.NotNil(t, record.User)
	require.Equal(t, "jdoe", record.User.Get("handle"))
	require.Equal(t, "John Doe", record.User.Get("displayName"))
	require.Equal(t, "VERIFIED", record.User.Get("verifiedStatus"))
	require.Nil(t, record.Errors())
}

func TestExtractSingleCountFallback(t *testing.T) {
	html := `
<article>
	<a href="/jdoe/status/99"><time datetime="2023-01-01T00:00:00.000Z">x</time></a>
	<div aria-label="2 replies"></div>
	<div aria-label="7 reposts"></div>
	<div aria-label="11 likes"></div>
</article>`
	record := htmlparse.Extract(selection(t, html))

	require.Equal(t, "99", record.Get("tweetid"))
	require.Equal(t, "2", record.Get("replycount"))
	require.Equal(t, "7", record.Get("retweetcount"))
	require.Equal(t, "11", record.Get("favoritecount"))
}

func TestExtractFailuresAreSoft(t *testing.T) {
	record := htmlparse.Extract(selection(t, `<article><p>nothing here</p></article>`))

	// every chain misses, the record keeps its defaults and carries one
	// soft error per field group
	require.Equal(t, "0", record.Get("tweetid"))
	require.Equal(t, "0", record.Get("replycount"))
	require.Equal(t, "", record.Get("tweettext"))
	require.NotEmpty(t, record.Errors())
	require.Contains(t, record.Errors(), "could not find tweet id")
	require.Contains(t, record.Errors(), "could not find tweet text")
}

func TestExtractInteractionAnchorCounts(t *testing.T) {
	html := `
<article>
	<a role="link" href="/jdoe/status/55/retweet"><div><span><span><span>12</span></span></span></div></a>
	<a role="link" href="/jdoe/status/55/like"><div><span><span><span>30</span></span></span></div></a>
	<a role="link" href="/jdoe/status/55/reply"><div><span><span><span>4</span></span></span></div></a>
</article>`
	record := htmlparse.Extract(selection(t, html))

	require.Equal(t, "12", record.Get("retweetcount"))
	require.Equal(t, "30", record.Get("favoritecount"))
	require.Equal(t, "4", record.Get("replycount"))
	// the interaction anchors double as an id fallback
	require.Equal(t, "55", record.Get("tweetid"))
}
