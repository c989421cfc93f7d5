package poller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingFeed struct {
	mu    sync.Mutex
	pulls int
	err   error
	delay time.Duration
}

func (f *countingFeed) Pull(_ context.Context) error {
	f.mu.Lock()
	f.pulls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

func (f *countingFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulls
}

func TestPollsOnInterval(t *testing.T) {
	feed := &countingFeed{}
	p := New(feed, 10*time.Millisecond, zerolog.Nop())
	p.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	p.Stop()

	if feed.count() < 3 {
		t.Errorf("expected several pulls, got %d", feed.count())
	}
}

func TestFailedPullKeepsPolling(t *testing.T) {
	feed := &countingFeed{err: fmt.Errorf("server unreachable")}
	p := New(feed, 10*time.Millisecond, zerolog.Nop())
	p.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	p.Stop()

	if feed.count() < 2 {
		t.Errorf("polling stopped after failure: %d pulls", feed.count())
	}
}

func TestNudgeTriggersImmediatePull(t *testing.T) {
	feed := &countingFeed{}
	p := New(feed, time.Hour, zerolog.Nop())
	p.Start(context.Background())
	p.Nudge()
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	if feed.count() != 1 {
		t.Errorf("expected exactly one nudged pull, got %d", feed.count())
	}
}

func TestNudgesCoalesce(t *testing.T) {
	feed := &countingFeed{delay: 20 * time.Millisecond}
	p := New(feed, time.Hour, zerolog.Nop())
	p.Start(context.Background())
	for i := 0; i < 10; i++ {
		p.Nudge()
	}
	time.Sleep(100 * time.Millisecond)
	p.Stop()

	if feed.count() > 2 {
		t.Errorf("nudges did not coalesce: %d pulls", feed.count())
	}
}

func TestStopTerminatesLoop(t *testing.T) {
	feed := &countingFeed{}
	p := New(feed, 5*time.Millisecond, zerolog.Nop())
	p.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	p.Stop()
	after := feed.count()
	time.Sleep(30 * time.Millisecond)

	if feed.count() != after {
		t.Error("poller kept pulling after Stop")
	}
}

func TestDefaultInterval(t *testing.T) {
	p := New(&countingFeed{}, 0, zerolog.Nop())
	if p.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultInterval)
	}
}
