package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/gesteves/kona/app/metrics"
	"github.com/gesteves/kona/app/source"
)

const (
	DefaultPageSize = 1000
	DefaultDelay    = 100 * time.Millisecond
)

// Error aborts a fetch run. Collection is empty when the failure happened
// between pages (e.g. cancellation while throttled).
type Error struct {
	Collection source.Collection
	Offset     int
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("fetch aborted at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s at offset %d: %v", e.Collection, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	PageSize int
	// Delay is the minimum spacing between page requests.
	Delay    time.Duration
	Recorder metrics.Recorder
}

type Fetcher struct {
	client      source.Client
	collections []source.Collection
	pageSize    int
	limiter     *rate.Limiter
	recorder    metrics.Recorder
}

func NewFetcher(client source.Client, collections []source.Collection, opts Options) *Fetcher {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Fetcher{
		client:      client,
		collections: collections,
		pageSize:    pageSize,
		limiter:     rate.NewLimiter(limit, 1),
		recorder:    metrics.OrNoop(opts.Recorder),
	}
}

// FetchAll polls every collection at an advancing offset until one round
// returns no records in any collection. Exhausted collections keep being
// polled while others still return data. Any failure aborts the whole run.
func (f *Fetcher) FetchAll(ctx context.Context) (*source.Page, error) {
	start := time.Now()
	all := &source.Page{}

	for offset := 0; ; offset += f.pageSize {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &Error{Offset: offset, Err: err}
		}

		round := &source.Page{}
		for _, collection := range f.collections {
			page, err := f.client.FetchPage(ctx, collection, offset, f.pageSize)
			if err != nil {
				return nil, &Error{Collection: collection, Offset: offset, Err: err}
			}
			if page == nil {
				page = &source.Page{}
			}
			f.recorder.IncFetchPage(string(collection), page.Len(collection))
			round.Append(page)
		}

		if round.Empty() {
			break
		}

		slog.Debug("Fetched content page", "offset", offset,
			"articles", len(round.Articles), "pages", len(round.Pages),
			"assets", len(round.Assets), "redirects", len(round.Redirects),
			"events", len(round.Events), "site", len(round.Sites))

		all.Append(round)
	}

	f.recorder.ObserveFetchDuration(time.Since(start))
	slog.Info("Content fetched",
		"articles", len(all.Articles),
		"pages", len(all.Pages),
		"assets", len(all.Assets),
		"redirects", len(all.Redirects),
		"events", len(all.Events),
		"duration", time.Since(start))

	return all, nil
}
