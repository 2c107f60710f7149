package scroller_test

import (
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"tweetwatch/lib/scroller"
)

// fakeView simulates a page of fixed content height.
type fakeView struct {
	scrollTop     float64
	contentHeight float64
}

func (v *fakeView) Find(string) *goquery.Selection { return nil }
func (v *fakeView) ViewportHeight() float64        { return 100 }
func (v *fakeView) ScrollTop() float64             { return v.scrollTop }
func (v *fakeView) Click(*goquery.Selection) bool  { return false }

func (v *fakeView) ScrollBy(px float64) {
	v.scrollTop += px
	max := v.contentHeight - v.ViewportHeight()
	if v.scrollTop > max {
		v.scrollTop = max
	}
}

func TestStepScrollerStallFinishes(t *testing.T) {
	view := &fakeView{contentHeight: 100}
	s := scroller.NewStepScroller(view, scroller.StepScrollerOptions{MaxSteps: 100})

	require.Equal(t, scroller.StatusReady, s.Status())

	// the page never moves, so every step stalls
	for i := 0; i < 3; i++ {
		s.Step()
		require.Equal(t, scroller.StatusRunning, s.Status())
	}
	s.Step()
	require.Equal(t, scroller.StatusFinished, s.Status())

	// terminal statuses are sticky
	s.Step()
	require.Equal(t, scroller.StatusFinished, s.Status())
}

func TestStepScrollerExceedsLimit(t *testing.T) {
	view := &fakeView{contentHeight: 100_000}
	s := scroller.NewStepScroller(view, scroller.StepScrollerOptions{MaxSteps: 5})

	for i := 0; i < 5; i++ {
		s.Step()
	}
	require.Equal(t, scroller.StatusExceededLimit, s.Status())
}

func TestStepScrollerStallCounterResets(t *testing.T) {
	// enough room for 6 full steps, so a stall run is broken by movement
	view := &fakeView{contentHeight: 700}
	s := scroller.NewStepScroller(view, scroller.StepScrollerOptions{MaxSteps: 20})

	for i := 0; i < 6; i++ {
		s.Step()
		require.Equal(t, scroller.StatusRunning, s.Status())
	}
	// now pinned at the bottom: four stalled steps in a row finish it
	for i := 0; i < 4; i++ {
		s.Step()
	}
	require.Equal(t, scroller.StatusFinished, s.Status())
}

func TestStepScrollerStop(t *testing.T) {
	s := scroller.NewStepScroller(&fakeView{contentHeight: 1000}, scroller.StepScrollerOptions{})
	s.Step()
	s.Stop()
	require.Equal(t, scroller.StatusStopped, s.Status())
}

func TestIntervalScrollerFinishesAfterBudget(t *testing.T) {
	view := &fakeView{contentHeight: 100_000}
	s := scroller.NewIntervalScroller(view, scroller.IntervalScrollerOptions{
		MaxScrolls: 3,
		Delay:      time.Millisecond,
	})
	require.Equal(t, scroller.StatusReady, s.Status())

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return s.Status() == scroller.StatusFinished
	}, time.Second, time.Millisecond)

	// three scrolls of one viewport height each
	require.Equal(t, float64(300), view.scrollTop)

	// a finished scroller cannot be restarted
	s.Start(context.Background())
	require.Equal(t, scroller.StatusFinished, s.Status())
}

func TestIntervalScrollerStop(t *testing.T) {
	view := &fakeView{contentHeight: 100_000}
	s := scroller.NewIntervalScroller(view, scroller.IntervalScrollerOptions{
		MaxScrolls: 1000,
		Delay:      time.Millisecond,
	})

	s.Start(context.Background())
	s.Stop()
	require.Eventually(t, func() bool {
		return s.Status() == scroller.StatusStopped
	}, time.Second, time.Millisecond)
}
