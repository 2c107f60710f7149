package retriever_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"tweetwatch/lib/retriever"
	"tweetwatch/lib/tweet"
)

// fakeView serves a fixed document with a simulated scroll position.
// Clicking can grow the content height, standing in for a button that
// reveals more replies.
type fakeView struct {
	doc           *goquery.Document
	scrollTop     float64
	contentHeight float64
	clickable     bool
	clickGrows    float64
	clicks        int
}

func newFakeView(t *testing.T, html string, contentHeight float64) *fakeView {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &fakeView{doc: doc, contentHeight: contentHeight}
}

func (v *fakeView) Find(selector string) *goquery.Selection { return v.doc.Find(selector) }
func (v *fakeView) ViewportHeight() float64                 { return 100 }
func (v *fakeView) ScrollTop() float64                      { return v.scrollTop }

func (v *fakeView) ScrollBy(px float64) {
	v.scrollTop += px
	max := v.contentHeight - v.ViewportHeight()
	if max < 0 {
		max = 0
	}
	if v.scrollTop > max {
		v.scrollTop = max
	}
}

func (v *fakeView) Click(sel *goquery.Selection) bool {
	if v.clickable {
		v.clicks++
		v.contentHeight += v.clickGrows
	}
	return v.clickable
}

func drive(r *retriever.Runner, maxTicks int) {
	for i := 0; i < maxTicks && !r.Done(); i++ {
		r.Tick()
	}
}

const timelineHTML = `
<html><body>
	<article><a href="/jdoe/status/1"><time datetime="2023-10-20T12:00:00.000Z">a</time></a></article>
	<article><a href="/jdoe/status/2"><time datetime="2023-10-20T13:00:00.000Z">b</time></a></article>
</body></html>`

func TestTimelineRun(t *testing.T) {
	view := newFakeView(t, timelineHTML, 100)
	r := retriever.NewRunner(view, retriever.Params{
		PageType:            retriever.PageTimeline,
		Url:                 "https://example.com/jdoe",
		CheckLoggedInBudget: 1,
	})

	drive(r, 100)
	require.True(t, r.Done())

	metadata := r.Metadata()
	require.Equal(t, "true", metadata["completed"], metadata)
	require.Empty(t, metadata["error_code"])
	require.Equal(t, "found", metadata["tweet_selector"])

	require.Equal(t, 2, r.Collection().Len())
	first, ok := r.Collection().Get("1")
	require.True(t, ok)
	require.Equal(t, string(tweet.QualityHigh), first.Get("quality"))
	require.Equal(t, "0", first.Get("previoustweetid"))
	require.Equal(t, "2", first.Get("nexttweetid"))
	require.Equal(t, "0", first.Get("iterationindex"))

	second, _ := r.Collection().Get("2")
	require.Equal(t, "1", second.Get("previoustweetid"))
	require.Equal(t, "0", second.Get("nexttweetid"))
	require.Equal(t, "1", second.Get("iterationindex"))

	records := r.Output()
	require.Equal(t, tweet.MapTypeMetadata, records[len(records)-1]["map_type"])
}

func TestReplyRunClicksThrough(t *testing.T) {
	html := `
<html><body>
	<article><a href="/jdoe/status/1"><time datetime="2023-10-20T12:00:00.000Z">a</time></a></article>
	<section><div role="button">Show more replies</div></section>
</body></html>`
	view := newFakeView(t, html, 100)
	view.clickable = true

	r := retriever.NewRunner(view, retriever.Params{
		PageType:            retriever.PageReply,
		CheckLoggedInBudget: 1,
		ClickAttemptBudget:  1,
		ClickSettleBudget:   2,
	})

	drive(r, 200)
	require.True(t, r.Done())

	metadata := r.Metadata()
	require.Equal(t, "clicked", metadata["show_hidden_replies"])
	// no alternate button exists, so the second expand pass ends the run
	require.Equal(t, "not found", metadata["show_hidden_replies2"])
	require.Empty(t, metadata["error_code"])
	require.Equal(t, 1, view.clicks)
}

func TestReplyCompletionFollowsFinalPass(t *testing.T) {
	html := `
<html><body>
	<article><a href="/jdoe/status/1"><time datetime="2023-10-20T12:00:00.000Z">a</time></a></article>
	<section><div role="button">Show more replies</div></section>
</body></html>`
	// the first pass exhausts the short page, but the click reveals far
	// more content than the step cap can cover
	view := newFakeView(t, html, 150)
	view.clickable = true
	view.clickGrows = 2000

	r := retriever.NewRunner(view, retriever.Params{
		PageType:            retriever.PageReply,
		CheckLoggedInBudget: 1,
		ClickAttemptBudget:  1,
		ClickSettleBudget:   2,
		ScrollStepCap:       8,
	})

	drive(r, 200)
	require.True(t, r.Done())

	metadata := r.Metadata()
	require.Equal(t, "clicked", metadata["show_hidden_replies"])
	require.Empty(t, metadata["error_code"])
	// the last extraction pass hit the step cap, so the run as a whole is
	// not complete even though the first pass finished cleanly
	require.Equal(t, "false", metadata["completed"], metadata)
}

func TestCheckLoggedInFailureAbortsRun(t *testing.T) {
	view := newFakeView(t, `<html><body><a id="signin-link"></a></body></html>`, 100)
	r := retriever.NewRunner(view, retriever.Params{CheckLoggedInBudget: 1})

	drive(r, 100)
	require.True(t, r.Done())

	metadata := r.Metadata()
	require.Equal(t, "CheckLoggedIn_not_logged_in", metadata["error_code"])
	require.NotEmpty(t, metadata["error_message"])
	require.Equal(t, "false", metadata["completed"])
}

func TestWaitForTweetsNotFound(t *testing.T) {
	view := newFakeView(t, `<html><body><p>empty</p></body></html>`, 100)
	r := retriever.NewRunner(view, retriever.Params{
		CheckLoggedInBudget: 1,
		WaitForTweetsBudget: 2,
	})

	drive(r, 100)
	require.True(t, r.Done())

	metadata := r.Metadata()
	require.Equal(t, "not found", metadata["tweet_selector"])
	require.Equal(t, "false", metadata["completed"])
	require.Empty(t, metadata["error_code"])
}

func TestRunnerSafetyValve(t *testing.T) {
	// the selector never appears and the wait budget exceeds the global
	// tick cap, so only the safety valve can end the run
	view := newFakeView(t, `<html><body><p>empty</p></body></html>`, 100)
	r := retriever.NewRunner(view, retriever.Params{
		CheckLoggedInBudget: 1,
		WaitForTweetsBudget: 5000,
	})

	drive(r, 1100)
	require.True(t, r.Done())

	metadata := r.Metadata()
	require.Equal(t, "Retriever_too_many_iterations", metadata["error_code"])
	require.Equal(t, "false", metadata["completed"])
}

func TestTickAfterDoneReportsReentry(t *testing.T) {
	view := newFakeView(t, timelineHTML, 100)
	r := retriever.NewRunner(view, retriever.Params{CheckLoggedInBudget: 1})

	drive(r, 100)
	require.True(t, r.Done())
	require.Empty(t, r.Metadata()["error_code"])
	tweets := r.Collection().Len()

	r.Tick()
	metadata := r.Metadata()
	require.Equal(t, "Retriever_called_after_being_finished", metadata["error_code"])
	require.NotEmpty(t, metadata["error_message"])

	// no state runs after the end, so the records are untouched
	require.True(t, r.Done())
	require.Equal(t, tweets, r.Collection().Len())
}
