// Package retriever drives the multi-stage retrieval of a rendered page:
// wait for content, extract it pass by pass, click open the hidden
// sections and extract again, all under a tick-driven orchestrator.
package retriever

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/mazen160/go-random"

	"tweetwatch/lib/htmlparse"
	"tweetwatch/lib/page"
	"tweetwatch/lib/scroller"
	"tweetwatch/lib/textutil"
	"tweetwatch/lib/tweet"
)

type Status string

const (
	StatusReady         Status = "ready"
	StatusRunning       Status = "running"
	StatusStopped       Status = "stopped"
	StatusFailure       Status = "failure"
	StatusFinished      Status = "finished"
	StatusClickedButton Status = "clickedbutton"
	StatusNotFound      Status = "notfound"
)

// State is one stage of a retrieval run. Run is invoked once per tick with
// the state's own 0-based iteration counter; the orchestrator reads Status
// after every invocation.
type State interface {
	Name() string
	Status() Status
	// Failure returns the error code and message once Status is
	// StatusFailure.
	Failure() (code string, message string)
	Run(iteration int)
}

// CheckLoggedIn verifies the session is usable: if the sign-in prompt is
// still present once the retry budget runs out, the whole run fails.
type CheckLoggedIn struct {
	view     page.View
	budget   int
	status   Status
	code     string
	message  string
	attempts int
}

func NewCheckLoggedIn(view page.View, budget int) *CheckLoggedIn {
	return &CheckLoggedIn{view: view, budget: budget, status: StatusReady}
}

func (s *CheckLoggedIn) Name() string   { return "CheckLoggedIn" }
func (s *CheckLoggedIn) Status() Status { return s.status }

func (s *CheckLoggedIn) Failure() (string, string) { return s.code, s.message }

func (s *CheckLoggedIn) Run(iteration int) {
	s.attempts++
	if s.attempts <= s.budget {
		s.status = StatusRunning
		return
	}
	if s.view.Find("#signin-link").Length() > 0 {
		s.status = StatusFailure
		s.code = "CheckLoggedIn_not_logged_in"
		s.message = "the sign-in prompt is still present, the session is not logged in"
		return
	}
	s.status = StatusFinished
}

// WaitForTweets polls for the content selector until it matches or the
// retry budget runs out.
type WaitForTweets struct {
	view     page.View
	selector string
	budget   int
	status   Status
	attempts int
}

func NewWaitForTweets(view page.View, selector string, budget int) *WaitForTweets {
	return &WaitForTweets{
		view:     view,
		selector: selector,
		budget:   budget,
		status:   StatusReady,
	}
}

func (s *WaitForTweets) Name() string              { return "WaitForTweets" }
func (s *WaitForTweets) Status() Status            { return s.status }
func (s *WaitForTweets) Failure() (string, string) { return "", "" }

func (s *WaitForTweets) Run(iteration int) {
	if s.view.Find(s.selector).Length() > 0 {
		s.status = StatusFinished
		return
	}
	s.attempts++
	if s.attempts > s.budget {
		s.status = StatusNotFound
		return
	}
	s.status = StatusRunning
}

// FindTweets extracts every element the content selector matches, stamps
// each record with the pass's provenance quality and position, links
// consecutive records together and feeds them into the collection. The
// pass ends when its scroller stops producing new scroll movement.
type FindTweets struct {
	view       page.View
	selector   string
	quality    tweet.Quality
	collection *tweet.Collection
	scroll     *scroller.StepScroller
	status     Status
}

func NewFindTweets(view page.View, selector string, quality tweet.Quality, collection *tweet.Collection, scroll *scroller.StepScroller) *FindTweets {
	return &FindTweets{
		view:       view,
		selector:   selector,
		quality:    quality,
		collection: collection,
		scroll:     scroll,
		status:     StatusReady,
	}
}

func (s *FindTweets) Name() string {
	return fmt.Sprintf("FindTweets_%s", s.quality)
}

func (s *FindTweets) Status() Status            { return s.status }
func (s *FindTweets) Failure() (string, string) { return "", "" }

// ScrollerStatus exposes how the pass ended: finished means the page
// genuinely ran out of content, exceededlimit means the step cap cut the
// pass short.
func (s *FindTweets) ScrollerStatus() scroller.Status { return s.scroll.Status() }

func (s *FindTweets) Run(iteration int) {
	// one nonce per sweep, marking which records arrived together
	nonce, _ := random.String(16)

	var records []*tweet.Tweet
	s.view.Find(s.selector).Each(func(index int, sel *goquery.Selection) {
		record := htmlparse.Extract(sel)
		record.Set("quality", string(s.quality))
		record.Set("iterationnumber", fmt.Sprint(iteration))
		record.Set("iterationindex", fmt.Sprint(index))
		record.Set("tweetnonce", nonce)
		records = append(records, record)
	})

	assignPreviousNext(records)
	for _, record := range records {
		result := s.collection.AddTweet(record)
		slog.Debug("extracted", "record", record, "result", result)
		if record.User != nil {
			s.collection.AddUser(record.User)
		}
	}

	s.scroll.Step()
	switch s.scroll.Status() {
	case scroller.StatusFinished, scroller.StatusExceededLimit:
		s.status = StatusFinished
	default:
		s.status = StatusRunning
	}
}

// assignPreviousNext links each record of one pass to its neighbors in
// extraction order, "0" at the boundaries.
func assignPreviousNext(records []*tweet.Tweet) {
	for i, record := range records {
		previous := "0"
		if i > 0 {
			previous = records[i-1].ID()
		}
		next := "0"
		if i < len(records)-1 {
			next = records[i+1].ID()
		}
		record.Set("previoustweetid", previous)
		record.Set("nexttweetid", next)
	}
}

// hidden-reply button labels, matched fuzzily since the wording shifts
var expandLabels = []string{
	"show more replies",
	"show additional replies, including those that may contain offensive content",
	"show probable spam",
}

const expandLabelSimilarity = 0.85

// ExpandReplies hunts for the click target revealing a hidden reply
// section. The primary strategy looks inside section containers; the
// alternate strategy sweeps the article-adjacent button containers newer
// markup uses. After a successful click the state idles for a settle
// budget of ticks so the revealed content can render.
type ExpandReplies struct {
	name          string
	view          page.View
	attemptBudget int
	settleBudget  int
	alternate     bool
	status        Status
	attempts      int
	settles       int
	clicked       bool
}

func NewExpandReplies(view page.View, attemptBudget, settleBudget int) *ExpandReplies {
	return &ExpandReplies{
		name:          "ExpandReplies",
		view:          view,
		attemptBudget: attemptBudget,
		settleBudget:  settleBudget,
		status:        StatusReady,
	}
}

// NewExpandRepliesAlternate is the second, differently-targeted attempt
// used after the primary pass, reaching the offensive-content section.
func NewExpandRepliesAlternate(view page.View, attemptBudget, settleBudget int) *ExpandReplies {
	s := NewExpandReplies(view, attemptBudget, settleBudget)
	s.name = "ExpandReplies2"
	s.alternate = true
	return s
}

func (s *ExpandReplies) Name() string              { return s.name }
func (s *ExpandReplies) Status() Status            { return s.status }
func (s *ExpandReplies) Failure() (string, string) { return "", "" }

func (s *ExpandReplies) Run(iteration int) {
	if s.clicked {
		s.settles++
		if s.settles >= s.settleBudget {
			s.status = StatusFinished
			return
		}
		s.status = StatusClickedButton
		return
	}

	button := s.findButton()
	if button != nil && s.view.Click(button) {
		s.clicked = true
		s.status = StatusClickedButton
		return
	}

	s.attempts++
	if s.attempts > s.attemptBudget {
		s.status = StatusNotFound
		return
	}
	s.status = StatusRunning
}

func (s *ExpandReplies) findButton() *goquery.Selection {
	selectors := []string{`section div[role="button"]`, "section button"}
	if s.alternate {
		selectors = []string{
			`article div[role="button"]`,
			`div[data-testid="cellInnerDiv"] div[role="button"]`,
			`article ~ div div[role="button"]`,
		}
	}

	for _, selector := range selectors {
		var match *goquery.Selection
		s.view.Find(selector).EachWithBreak(func(_ int, candidate *goquery.Selection) bool {
			label := textutil.SimplifyText(candidate.Text())
			if label == "" {
				return true
			}
			for _, target := range expandLabels {
				if matchr.JaroWinkler(label, target, false) >= expandLabelSimilarity {
					match = candidate
					return false
				}
			}
			return true
		})
		if match != nil {
			return match
		}
	}
	return nil
}
