package source

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

// FileClient serves pages out of a JSON dump shaped like Page, read once on
// first use. It lets the pipeline run offline against captured content.
type FileClient struct {
	path string
	once sync.Once
	data *Page
	err  error
}

func NewFileClient(path string) *FileClient {
	return &FileClient{path: path}
}

func (c *FileClient) FetchPage(ctx context.Context, collection Collection, offset, limit int) (*Page, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.once.Do(c.load)
	if c.err != nil {
		return nil, &QueryError{Collection: collection, Offset: offset, Err: c.err}
	}
	if !collection.Valid() {
		return nil, &QueryError{Collection: collection, Offset: offset, Err: fmt.Errorf("unknown collection %q", collection)}
	}
	return c.data.slice(collection, offset, limit), nil
}

func (c *FileClient) load() {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		c.err = fmt.Errorf("failed to read source file: %w", err)
		return
	}
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		c.err = fmt.Errorf("failed to parse source file: %w", err)
		return
	}
	c.data = &page
}
