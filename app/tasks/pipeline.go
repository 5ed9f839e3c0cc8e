package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gesteves/kona/app/cache"
	"github.com/gesteves/kona/app/content"
	"github.com/gesteves/kona/app/metrics"
	"github.com/gesteves/kona/app/sink"
	"github.com/gesteves/kona/app/source"
)

type Fetcher interface {
	FetchAll(ctx context.Context) (*source.Page, error)
}

type Builder interface {
	Build(raw *source.Page) (*content.Content, error)
}

type Writer interface {
	Write(ctx context.Context, c *content.Content) error
}

type PipelineOptions struct {
	Key      string
	TTL      time.Duration
	Recorder metrics.Recorder
}

// Pipeline runs fetch and build inside the cache gateway, then hands the
// result to the sink. Nothing is written when fetch or build fail.
type Pipeline struct {
	fetcher  Fetcher
	builder  Builder
	gateway  *cache.Gateway
	writer   Writer
	key      string
	ttl      time.Duration
	recorder metrics.Recorder

	mu   sync.RWMutex
	last *content.Content
}

func NewPipeline(fetcher Fetcher, builder Builder, gateway *cache.Gateway, writer Writer, opts PipelineOptions) *Pipeline {
	if opts.Key == "" {
		opts.Key = cache.DefaultKey
	}
	if gateway == nil {
		gateway = cache.NewGateway(nil, opts.Recorder)
	}
	return &Pipeline{
		fetcher:  fetcher,
		builder:  builder,
		gateway:  gateway,
		writer:   writer,
		key:      opts.Key,
		ttl:      opts.TTL,
		recorder: metrics.OrNoop(opts.Recorder),
	}
}

// Run produces the site content and writes its artifacts. A partial write
// returns the content together with a *sink.WriteError.
func (p *Pipeline) Run(ctx context.Context) (*content.Content, error) {
	start := time.Now()
	defer func() {
		p.recorder.ObserveBuildDuration(time.Since(start))
	}()

	c, err := p.gateway.WithCache(ctx, p.key, p.ttl, p.compute)
	if err != nil {
		p.recorder.IncBuildOutcome("failed")
		return nil, err
	}

	if err := p.writer.Write(ctx, c); err != nil {
		var werr *sink.WriteError
		if errors.As(err, &werr) {
			p.recorder.IncBuildOutcome("partial")
			p.setLast(c)
			return c, err
		}
		p.recorder.IncBuildOutcome("failed")
		return nil, err
	}

	p.recorder.IncBuildOutcome("success")
	p.setLast(c)
	slog.Info("Pipeline run completed", "entries", len(c.Entries), "generated_at", c.GeneratedAt, "duration", time.Since(start))
	return c, nil
}

// Invalidate drops the cached snapshot so the next run fetches again.
func (p *Pipeline) Invalidate(ctx context.Context) error {
	return p.gateway.Invalidate(ctx, p.key)
}

// Last returns the content of the most recent run that reached the sink.
func (p *Pipeline) Last() *content.Content {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

func (p *Pipeline) setLast(c *content.Content) {
	p.mu.Lock()
	p.last = c
	p.mu.Unlock()
}

func (p *Pipeline) compute(ctx context.Context) (*content.Content, error) {
	raw, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	c, err := p.builder.Build(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build content: %w", err)
	}
	return c, nil
}
