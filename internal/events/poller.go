package events

import (
	"context"
	"time"

	"quantsim/internal/config"
	"quantsim/internal/logger"
	"quantsim/internal/types"
)

// Sink receives each batch of collected events.
type Sink func(ctx context.Context, events []types.MarketEvent)

// Poller periodically scrapes the universe for news and pushes scored
// events to a sink.
type Poller struct {
	scraper     *Scraper
	scorer      *Scorer
	universe    []string
	interval    time.Duration
	backoff     time.Duration
	maxArticles int
	sink        Sink

	// iterateOK records whether the last pass produced events, so the loop
	// can shorten the wait after a dry or failed one.
	iterateOK bool
}

// NewPoller wires a poller from collector configuration.
func NewPoller(cfg config.CollectorConfig, universe []string, sink Sink) *Poller {
	return &Poller{
		scraper:     NewScraper(30 * time.Second),
		scorer:      NewScorer(),
		universe:    universe,
		interval:    time.Duration(cfg.PollSeconds) * time.Second,
		backoff:     time.Duration(cfg.BackoffSeconds) * time.Second,
		maxArticles: cfg.MaxArticles,
		sink:        sink,
	}
}

// Run polls until the context is cancelled. One failing iteration backs off
// and retries; a panic inside an iteration is recovered and logged.
func (p *Poller) Run(ctx context.Context) {
	logger.Info(ctx, "event poller started",
		"symbols", len(p.universe), "interval", p.interval.String())
	p.iterate(ctx)
	for {
		wait := p.interval
		if !p.iterateOK {
			wait = p.backoff
		}
		select {
		case <-ctx.Done():
			logger.Info(ctx, "event poller stopped")
			return
		case <-time.After(wait):
			p.iterate(ctx)
		}
	}
}

func (p *Poller) iterate(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "event poller iteration panicked", "panic", r)
			p.iterateOK = false
		}
	}()

	var batch []types.MarketEvent
	for _, symbol := range p.universe {
		if ctx.Err() != nil {
			return
		}
		for _, article := range p.scraper.Fetch(ctx, symbol, p.maxArticles) {
			batch = append(batch, p.scorer.Event(article))
		}
	}
	p.iterateOK = len(batch) > 0
	if len(batch) == 0 {
		logger.Warn(ctx, "event poller found no articles, backing off", "backoff", p.backoff.String())
		return
	}
	logger.Info(ctx, "events collected", "count", len(batch))
	if p.sink != nil {
		p.sink(ctx, batch)
	}
}
