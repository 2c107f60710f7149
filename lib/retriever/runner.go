package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"tweetwatch/lib/page"
	"tweetwatch/lib/scroller"
	"tweetwatch/lib/tweet"
)

var tracer = otel.Tracer("retriever")

type PageType string

const (
	PageTimeline PageType = "timeline"
	PageReply    PageType = "reply"
)

type Params struct {
	PageType PageType `json:"page_type"`
	Url      string   `json:"url"`
	// if unspecified, defaults to "article"
	TweetSelector string `json:"tweet_selector"`
	// iteration counts, not wall-clock delays
	CheckLoggedInBudget int `json:"check_logged_in_budget"`
	WaitForTweetsBudget int `json:"wait_for_tweets_budget"`
	ClickAttemptBudget  int `json:"click_attempt_budget"`
	ClickSettleBudget   int `json:"click_settle_budget"`
	// viewport-height multiple scrolled per extraction pass
	ScrollMultiplier float64 `json:"scroll_multiplier"`
	ScrollStepCap    int     `json:"scroll_step_cap"`
	TickPeriodMs     int     `json:"tick_period_ms"`
}

func (p *Params) setDefaults() {
	if p.TweetSelector == "" {
		p.TweetSelector = "article"
	}
	if p.CheckLoggedInBudget == 0 {
		p.CheckLoggedInBudget = 3
	}
	if p.WaitForTweetsBudget == 0 {
		p.WaitForTweetsBudget = 10
	}
	if p.ClickAttemptBudget == 0 {
		p.ClickAttemptBudget = 5
	}
	if p.ClickSettleBudget == 0 {
		p.ClickSettleBudget = 3
	}
	if p.ScrollMultiplier == 0 {
		p.ScrollMultiplier = 0.75
	}
	if p.ScrollStepCap == 0 {
		p.ScrollStepCap = 50
	}
	if p.TickPeriodMs == 0 {
		p.TickPeriodMs = 250
	}
}

// maxTicks caps the whole run independently of any per-state budget.
const maxTicks = 1000

type stage struct {
	name      string
	construct func() State
}

// Runner is the tick-driven orchestrator: exactly one active state at any
// time, one state step per tick, run to completion before yielding.
type Runner struct {
	params     Params
	view       page.View
	collection *tweet.Collection

	stages         []stage
	current        State
	stateIteration int

	transitions map[string]func()
	metadata    map[string]string
	started     time.Time
	ticks       int
	done        bool
}

func NewRunner(view page.View, params Params) *Runner {
	params.setDefaults()

	r := &Runner{
		params:     params,
		view:       view,
		collection: tweet.NewCollection(),
		started:    time.Now(),
		metadata: map[string]string{
			"map_type":             tweet.MapTypeMetadata,
			"url":                  params.Url,
			"request_date":         strconv.FormatInt(time.Now().Unix(), 10),
			"last_compound":        "",
			"tweet_selector":       "",
			"show_hidden_replies":  "",
			"show_hidden_replies2": "",
			"completed":            "false",
			"elapsed_ms":           "0",
			"error_code":           "",
			"error_message":        "",
		},
	}
	r.stages = r.buildStages()
	r.transitions = r.buildTransitions()
	r.current = r.stages[0].construct()
	return r
}

func (r *Runner) newFindTweets(quality tweet.Quality) *FindTweets {
	scroll := scroller.NewStepScroller(r.view, scroller.StepScrollerOptions{
		DistanceMultiplier: r.params.ScrollMultiplier,
		MaxSteps:           r.params.ScrollStepCap,
	})
	return NewFindTweets(r.view, r.params.TweetSelector, quality, r.collection, scroll)
}

func (r *Runner) buildStages() []stage {
	stages := []stage{
		{"CheckLoggedIn", func() State {
			return NewCheckLoggedIn(r.view, r.params.CheckLoggedInBudget)
		}},
		{"WaitForTweets", func() State {
			return NewWaitForTweets(r.view, r.params.TweetSelector, r.params.WaitForTweetsBudget)
		}},
		{"FindTweets_" + string(tweet.QualityHigh), func() State {
			return r.newFindTweets(tweet.QualityHigh)
		}},
	}

	if r.params.PageType == PageReply {
		stages = append(stages,
			stage{"ExpandReplies", func() State {
				return NewExpandReplies(r.view, r.params.ClickAttemptBudget, r.params.ClickSettleBudget)
			}},
			stage{"FindTweets_" + string(tweet.QualityLow), func() State {
				return r.newFindTweets(tweet.QualityLow)
			}},
			stage{"ExpandReplies2", func() State {
				return NewExpandRepliesAlternate(r.view, r.params.ClickAttemptBudget, r.params.ClickSettleBudget)
			}},
			stage{"FindTweets_" + string(tweet.QualityAbusive), func() State {
				return r.newFindTweets(tweet.QualityAbusive)
			}},
		)
	}

	return stages
}

// buildTransitions maps every reachable compound to its action. An
// unmapped compound aborts the run.
func (r *Runner) buildTransitions() map[string]func() {
	transitions := make(map[string]func())

	for i, s := range r.stages {
		name := s.name
		transitions[name+".ready"] = r.runCurrent
		transitions[name+".running"] = r.runCurrent
		transitions[name+".clickedbutton"] = r.runCurrent
		transitions[name+".finished"] = func() {
			switch name {
			case "ExpandReplies":
				r.metadata["show_hidden_replies"] = "clicked"
			case "ExpandReplies2":
				r.metadata["show_hidden_replies2"] = "clicked"
			case "WaitForTweets":
				r.metadata["tweet_selector"] = "found"
			}
			// every extraction pass rewrites the completion flag, so the
			// last pass on the page decides it
			if pass, ok := r.current.(*FindTweets); ok {
				r.metadata["completed"] = strconv.FormatBool(pass.ScrollerStatus() == scroller.StatusFinished)
			}
			r.advance(i + 1)
		}
		transitions[name+".failure"] = func() {
			code, message := r.current.Failure()
			r.abort(code, message)
		}
	}

	transitions["WaitForTweets.notfound"] = func() {
		r.metadata["tweet_selector"] = "not found"
		r.finish()
	}
	// the primary expand pass failing to find a button skips straight to
	// the alternate strategy
	for i, s := range r.stages {
		if s.name == "ExpandReplies" {
			next := i + 2
			transitions["ExpandReplies.notfound"] = func() {
				r.metadata["show_hidden_replies"] = "not found"
				r.advance(next)
			}
		}
	}
	transitions["ExpandReplies2.notfound"] = func() {
		r.metadata["show_hidden_replies2"] = "not found"
		r.finish()
	}

	return transitions
}

// Tick executes exactly one orchestrator step. Ticking a runner whose run
// already ended is a caller bug and is surfaced in the metadata.
func (r *Runner) Tick() {
	if r.done {
		r.metadata["error_code"] = "Retriever_called_after_being_finished"
		r.metadata["error_message"] = "tick dispatched after the run ended"
		return
	}
	r.ticks++
	if r.ticks > maxTicks {
		r.abort("Retriever_too_many_iterations", fmt.Sprintf("exceeded %d ticks", maxTicks))
		return
	}

	compound := r.current.Name() + "." + string(r.current.Status())
	r.metadata["last_compound"] = compound

	action, ok := r.transitions[compound]
	if !ok {
		r.abort("Runner_bad_compound", fmt.Sprintf("no transition for %s", compound))
		return
	}
	action()
}

func (r *Runner) runCurrent() {
	r.current.Run(r.stateIteration)
	r.stateIteration++
}

func (r *Runner) advance(next int) {
	if next >= len(r.stages) {
		r.finish()
		return
	}
	r.current = r.stages[next].construct()
	r.stateIteration = 0
}

func (r *Runner) finish() {
	r.metadata["elapsed_ms"] = strconv.FormatInt(time.Since(r.started).Milliseconds(), 10)
	r.current = nil
	r.done = true
}

func (r *Runner) abort(code, message string) {
	r.metadata["error_code"] = code
	r.metadata["error_message"] = message
	r.metadata["completed"] = "false"
	r.metadata["elapsed_ms"] = strconv.FormatInt(time.Since(r.started).Milliseconds(), 10)
	r.current = nil
	r.done = true
}

func (r *Runner) Done() bool { return r.done }

func (r *Runner) Metadata() map[string]string {
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

func (r *Runner) Collection() *tweet.Collection { return r.collection }

// Output renders the run result: every extracted tweet and user followed
// by the single metadata record.
func (r *Runner) Output() []map[string]string {
	var out []map[string]string
	for _, t := range r.collection.Tweets() {
		out = append(out, tweet.ExportTweet(t))
	}
	for _, u := range r.collection.Users() {
		out = append(out, tweet.ExportUser(u))
	}
	out = append(out, r.Metadata())
	return out
}

// Run ticks the orchestrator on the configured period until the run
// terminates, then delivers the full output sequence at once.
func (r *Runner) Run(ctx context.Context) []map[string]string {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("page_type", string(r.params.PageType)),
		attribute.String("url", r.params.Url),
	)

	ticker := time.NewTicker(time.Duration(r.params.TickPeriodMs) * time.Millisecond)
	defer ticker.Stop()

	for !r.done {
		select {
		case <-ticker.C:
			r.Tick()
		case <-ctx.Done():
			r.abort("Retriever_cancelled", ctx.Err().Error())
		}
	}

	if code := r.metadata["error_code"]; code != "" {
		span.SetStatus(codes.Error, code)
	}
	slog.InfoContext(ctx, "retrieval run ended",
		"last_compound", r.metadata["last_compound"],
		"completed", r.metadata["completed"],
		"error_code", r.metadata["error_code"],
		"tweets", r.collection.Len(),
	)
	return r.Output()
}
