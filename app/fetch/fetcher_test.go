package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gesteves/kona/app/source"
)

type call struct {
	collection source.Collection
	offset     int
}

// fakeClient serves sizes[collection] records, failing when failAt matches.
type fakeClient struct {
	sizes  map[source.Collection]int
	failAt *call
	calls  []call
}

func (f *fakeClient) FetchPage(ctx context.Context, c source.Collection, offset, limit int) (*source.Page, error) {
	f.calls = append(f.calls, call{c, offset})
	if f.failAt != nil && *f.failAt == (call{c, offset}) {
		return nil, fmt.Errorf("connection reset")
	}

	n := max(0, min(limit, f.sizes[c]-offset))
	page := &source.Page{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", c, offset+i)
		switch c {
		case source.Articles:
			page.Articles = append(page.Articles, source.RawEntry{Sys: source.Sys{ID: id}})
		case source.Pages:
			page.Pages = append(page.Pages, source.RawEntry{Sys: source.Sys{ID: id}})
		case source.Redirects:
			page.Redirects = append(page.Redirects, source.RawRedirect{Sys: source.Sys{ID: id}})
		case source.Sites:
			page.Sites = append(page.Sites, source.RawSite{Sys: source.Sys{ID: id}})
		}
	}
	return page, nil
}

func TestFetchAllAccumulatesUntilEveryCollectionIsEmpty(t *testing.T) {
	client := &fakeClient{sizes: map[source.Collection]int{
		source.Articles:  5,
		source.Pages:     1,
		source.Redirects: 0,
		source.Sites:     1,
	}}
	collections := []source.Collection{source.Articles, source.Pages, source.Redirects, source.Sites}
	fetcher := NewFetcher(client, collections, Options{PageSize: 2})

	all, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(all.Articles) != 5 {
		t.Errorf("Expected 5 articles, got %d", len(all.Articles))
	}
	if len(all.Pages) != 1 || len(all.Sites) != 1 {
		t.Errorf("Expected 1 page and 1 site, got %d and %d", len(all.Pages), len(all.Sites))
	}
	for i, a := range all.Articles {
		if want := fmt.Sprintf("articles-%d", i); a.Sys.ID != want {
			t.Errorf("Expected article %s at %d, got %s", want, i, a.Sys.ID)
		}
	}

	// Offsets 0, 2, 4 return data; 6 is the first all-empty round.
	if len(client.calls) != 4*len(collections) {
		t.Fatalf("Expected %d calls, got %d", 4*len(collections), len(client.calls))
	}

	// Pages and site are exhausted after offset 0 but must still be polled.
	polled := map[int]bool{}
	for _, c := range client.calls {
		if c.collection == source.Pages {
			polled[c.offset] = true
		}
	}
	for _, offset := range []int{0, 2, 4, 6} {
		if !polled[offset] {
			t.Errorf("Expected pages to be polled at offset %d", offset)
		}
	}
}

func TestFetchAllEmptySource(t *testing.T) {
	client := &fakeClient{sizes: map[source.Collection]int{}}
	fetcher := NewFetcher(client, source.AllCollections, Options{PageSize: 10})

	all, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !all.Empty() {
		t.Errorf("Expected empty result, got %+v", all)
	}
	if len(client.calls) != len(source.AllCollections) {
		t.Errorf("Expected a single round of calls, got %d", len(client.calls))
	}
}

func TestFetchAllAbortsWithCollectionAndOffset(t *testing.T) {
	client := &fakeClient{
		sizes:  map[source.Collection]int{source.Articles: 10, source.Pages: 10},
		failAt: &call{source.Pages, 4},
	}
	fetcher := NewFetcher(client, []source.Collection{source.Articles, source.Pages}, Options{PageSize: 2})

	all, err := fetcher.FetchAll(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if all != nil {
		t.Error("Expected no partial result on failure")
	}

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("Expected fetch.Error, got %T", err)
	}
	if fe.Collection != source.Pages || fe.Offset != 4 {
		t.Errorf("Expected pages at offset 4, got %s at %d", fe.Collection, fe.Offset)
	}
	if last := client.calls[len(client.calls)-1]; last != (call{source.Pages, 4}) {
		t.Errorf("Expected fetching to stop at the failure, last call %+v", last)
	}
}

func TestFetchAllHonorsCancellation(t *testing.T) {
	client := &fakeClient{sizes: map[source.Collection]int{source.Articles: 100}}
	fetcher := NewFetcher(client, []source.Collection{source.Articles}, Options{PageSize: 1, Delay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.FetchAll(ctx)
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("Expected fetch.Error, got %T", err)
	}
	if fe.Offset != 1 {
		t.Errorf("Expected abort before offset 1, got %d", fe.Offset)
	}
}

func TestFetchAllThrottlesBetweenPages(t *testing.T) {
	client := &fakeClient{sizes: map[source.Collection]int{source.Articles: 2}}
	fetcher := NewFetcher(client, []source.Collection{source.Articles}, Options{PageSize: 1, Delay: 20 * time.Millisecond})

	start := time.Now()
	if _, err := fetcher.FetchAll(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	// Three rounds (two with data, one empty) need at least two delays.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Expected at least 40ms of throttling, got %v", elapsed)
	}
}
