package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// QueryError reports a failed request for one collection page.
type QueryError struct {
	Collection Collection
	Offset     int
	StatusCode int
	Err        error
}

func (e *QueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("query %s at offset %d: HTTP %d: %v", e.Collection, e.Offset, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("query %s at offset %d: %v", e.Collection, e.Offset, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// collectionFields names the GraphQL collection and the sys/metadata selection
// every query carries regardless of the configured fields.
var collectionFields = map[Collection]struct {
	name     string
	metadata bool
}{
	Articles:  {"articleCollection", true},
	Pages:     {"pageCollection", true},
	Assets:    {"assetCollection", false},
	Redirects: {"redirectCollection", false},
	Events:    {"eventCollection", false},
	Sites:     {"siteCollection", false},
}

type GraphQLClient struct {
	endpoint   string
	token      string
	userAgent  string
	preview    bool
	fields     map[Collection][]string
	httpClient *http.Client
}

type GraphQLOptions struct {
	Endpoint    string
	AccessToken string
	UserAgent   string
	// Preview requests unpublished entries too, which is how drafts reach the pipeline.
	Preview    bool
	Fields     map[Collection][]string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewGraphQLClient(opts GraphQLOptions) *GraphQLClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &GraphQLClient{
		endpoint:   opts.Endpoint,
		token:      opts.AccessToken,
		userAgent:  opts.UserAgent,
		preview:    opts.Preview,
		fields:     opts.Fields,
		httpClient: httpClient,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Items struct {
			Items json.RawMessage `json:"items"`
		} `json:"items"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *GraphQLClient) FetchPage(ctx context.Context, collection Collection, offset, limit int) (*Page, error) {
	query, err := c.buildQuery(collection)
	if err != nil {
		return nil, &QueryError{Collection: collection, Offset: offset, Err: err}
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     query,
		Variables: map[string]any{"skip": offset, "limit": limit, "preview": c.preview},
	})
	if err != nil {
		return nil, &QueryError{Collection: collection, Offset: offset, Err: fmt.Errorf("failed to encode query: %w", err)}
	}

	data, status, err := c.post(ctx, body)
	if err != nil {
		return nil, &QueryError{Collection: collection, Offset: offset, StatusCode: status, Err: err}
	}

	var resp graphQLResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &QueryError{Collection: collection, Offset: offset, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &QueryError{Collection: collection, Offset: offset, Err: fmt.Errorf("graphql: %s", strings.Join(messages, "; "))}
	}

	page, err := decodeItems(collection, resp.Data.Items.Items)
	if err != nil {
		return nil, &QueryError{Collection: collection, Offset: offset, Err: err}
	}
	return page, nil
}

func (c *GraphQLClient) post(ctx context.Context, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return data, resp.StatusCode, nil
}

func (c *GraphQLClient) buildQuery(collection Collection) (string, error) {
	def, ok := collectionFields[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}

	var b strings.Builder
	b.WriteString("query($skip: Int!, $limit: Int!, $preview: Boolean) { items: ")
	b.WriteString(def.name)
	b.WriteString("(skip: $skip, limit: $limit, preview: $preview, order: sys_firstPublishedAt_DESC) { items { ")
	b.WriteString("sys { id firstPublishedAt publishedAt publishedVersion } ")
	if def.metadata {
		b.WriteString("contentfulMetadata { tags { id name } } ")
	}
	for _, field := range c.fields[collection] {
		b.WriteString(field)
		b.WriteString(" ")
	}
	b.WriteString("} } }")
	return b.String(), nil
}

func decodeItems(collection Collection, raw json.RawMessage) (*Page, error) {
	page := &Page{}
	if len(raw) == 0 || string(raw) == "null" {
		return page, nil
	}

	var err error
	switch collection {
	case Articles:
		err = json.Unmarshal(raw, &page.Articles)
	case Pages:
		err = json.Unmarshal(raw, &page.Pages)
	case Assets:
		err = json.Unmarshal(raw, &page.Assets)
	case Redirects:
		err = json.Unmarshal(raw, &page.Redirects)
	case Events:
		err = json.Unmarshal(raw, &page.Events)
	case Sites:
		err = json.Unmarshal(raw, &page.Sites)
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return page, nil
}
