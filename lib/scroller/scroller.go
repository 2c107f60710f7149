// Package scroller drives the scroll position of a page view to force
// progressive rendering of content.
package scroller

import (
	"context"
	"sync"
	"time"

	"tweetwatch/lib/page"
)

type Status string

const (
	StatusReady         Status = "ready"
	StatusRunning       Status = "running"
	StatusStopped       Status = "stopped"
	StatusExceededLimit Status = "exceededlimit"
	StatusFinished      Status = "finished"
)

// Terminal reports whether the scroller will never move again.
func (s Status) Terminal() bool {
	return s == StatusStopped || s == StatusExceededLimit || s == StatusFinished
}

// stallThreshold is the post-scroll movement in pixels below which a step
// counts as stalled.
const stallThreshold = 10

type StepScrollerOptions struct {
	// viewport-height multiple scrolled per step; if unspecified,
	// defaults to 1
	DistanceMultiplier float64
	// steps allowed before giving up without a stall
	MaxSteps int
}

// StepScroller scrolls once per explicit Step call. It distinguishes
// reaching the end of the content (consecutive stalled steps, finished)
// from running out of step budget (exceededlimit).
type StepScroller struct {
	view   page.View
	opts   StepScrollerOptions
	status Status
	steps  int
	stalls int
}

func NewStepScroller(view page.View, opts StepScrollerOptions) *StepScroller {
	if opts.DistanceMultiplier == 0 {
		opts.DistanceMultiplier = 1
	}
	return &StepScroller{
		view:   view,
		opts:   opts,
		status: StatusReady,
	}
}

func (s *StepScroller) Status() Status { return s.status }

func (s *StepScroller) Stop() {
	if !s.status.Terminal() {
		s.status = StatusStopped
	}
}

func (s *StepScroller) Step() {
	if s.status.Terminal() {
		return
	}
	s.status = StatusRunning

	before := s.view.ScrollTop()
	s.view.ScrollBy(s.opts.DistanceMultiplier * s.view.ViewportHeight())
	moved := s.view.ScrollTop() - before

	if moved < stallThreshold {
		s.stalls++
	} else {
		s.stalls = 0
	}
	s.steps++

	if s.stalls > 3 {
		s.status = StatusFinished
		return
	}
	if s.opts.MaxSteps > 0 && s.steps >= s.opts.MaxSteps {
		s.status = StatusExceededLimit
	}
}

type IntervalScrollerOptions struct {
	// if unspecified, defaults to 1
	DistanceMultiplier float64
	// scrolls performed before finishing
	MaxScrolls int
	Delay      time.Duration
}

// IntervalScroller scrolls unconditionally on a fixed delay until its
// scroll budget runs out. Status is safe to read while the scroll
// goroutine runs.
type IntervalScroller struct {
	view   page.View
	opts   IntervalScrollerOptions
	cancel context.CancelFunc

	mu     sync.Mutex
	status Status
}

func NewIntervalScroller(view page.View, opts IntervalScrollerOptions) *IntervalScroller {
	if opts.DistanceMultiplier == 0 {
		opts.DistanceMultiplier = 1
	}
	if opts.Delay == 0 {
		opts.Delay = time.Second
	}
	return &IntervalScroller{
		view:   view,
		opts:   opts,
		status: StatusReady,
	}
}

func (s *IntervalScroller) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *IntervalScroller) setStatus(next Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		s.status = next
	}
}

func (s *IntervalScroller) Start(ctx context.Context) {
	s.mu.Lock()
	if s.status != StatusReady {
		s.mu.Unlock()
		return
	}
	s.status = StatusRunning
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.opts.Delay)
		defer ticker.Stop()

		count := 0
		for {
			select {
			case <-ticker.C:
				if s.opts.MaxScrolls > 0 && count >= s.opts.MaxScrolls {
					s.setStatus(StatusFinished)
					return
				}
				s.view.ScrollBy(s.opts.DistanceMultiplier * s.view.ViewportHeight())
				count++
			case <-ctx.Done():
				s.setStatus(StatusStopped)
				return
			}
		}
	}()
}

func (s *IntervalScroller) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
