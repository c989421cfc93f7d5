// Package poller drives periodic reconciliation against the server of
// record. The polling loop is deliberately hidden behind the ChangeFeed
// abstraction so it can be swapped for a streaming subscription without
// touching consumers.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ChangeFeed is one reconciliation pass against the server of record.
type ChangeFeed interface {
	Pull(ctx context.Context) error
}

const DefaultInterval = 2 * time.Second

// Poller runs the feed on a fixed interval from a single goroutine, so
// ticks never overlap: a slow pull simply delays the next one. A failed
// pull is a silent no-op; polling continues.
type Poller struct {
	feed     ChangeFeed
	interval time.Duration
	log      zerolog.Logger
	nudge    chan struct{}
	stop     chan struct{}
	done     chan struct{}
}

func New(feed ChangeFeed, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		feed:     feed,
		interval: interval,
		log:      log,
		nudge:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. It returns immediately.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Stop terminates the loop and waits for the in-flight tick, if any.
func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
}

// Nudge requests an immediate reconciliation pass, used when a push event
// hints that server state changed. Coalesces: multiple nudges before the
// next pass collapse into one.
func (p *Poller) Nudge() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		case <-p.nudge:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.feed.Pull(ctx); err != nil {
		p.log.Debug().Err(err).Msg("reconciliation pass failed, retrying next tick")
	}
}
