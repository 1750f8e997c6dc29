package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/logging"
)

// DefaultPollInterval is used when a watcher is configured without one.
const DefaultPollInterval = 20 * time.Second

var ErrPollerRunning = errors.New("poller already running")

// FetchFunc does the network part of one poll. The returned apply, if not
// nil, publishes the result; it runs only while the poller is still the
// same run that started the fetch.
type FetchFunc func(ctx context.Context) (apply func(), err error)

// Poller runs fetch on a fixed interval. Polls never overlap: a tick that
// finds the previous poll still running is skipped. Stop is synchronous;
// once it returns no further apply runs.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	log      logging.Logger

	mu      sync.Mutex
	gen     uint64
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	inFlight atomic.Bool
	skipped  atomic.Int64
}

func NewPoller(name string, interval time.Duration, fetch FetchFunc, log logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		log:      log.With("poller", name),
	}
}

// Start launches the loop. The first poll runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPollerRunning
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	gen := p.gen

	p.wg.Add(1)
	go p.loop(p.ctx, gen)

	p.log.Debug(ctx, "poller started", "interval", p.interval)
	return nil
}

func (p *Poller) loop(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, gen)

	for {
		select {
		case <-ticker.C:
			p.poll(ctx, gen)
		case <-ctx.Done():
			return
		}
	}
}

// Trigger runs an out-of-band poll in the background. It returns false
// when the poller is stopped.
func (p *Poller) Trigger() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return false
	}

	ctx, gen := p.ctx, p.gen
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poll(ctx, gen)
	}()
	return true
}

func (p *Poller) poll(ctx context.Context, gen uint64) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.log.Debug(ctx, "previous poll still running, skipping")
		return
	}
	defer p.inFlight.Store(false)

	apply, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn(ctx, "poll failed", "error", err)
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || apply == nil {
		return
	}
	apply()
}

// Stop cancels the loop, discards in-flight results and waits for the
// loop to exit. It must not be called from inside an apply.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.gen++
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debug(context.Background(), "poller stopped")
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Skipped reports how many polls were dropped because one was in flight.
func (p *Poller) Skipped() int64 {
	return p.skipped.Load()
}
