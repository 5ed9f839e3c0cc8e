package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type Collection string

const (
	Articles  Collection = "articles"
	Pages     Collection = "pages"
	Assets    Collection = "assets"
	Redirects Collection = "redirects"
	Events    Collection = "events"
	Sites     Collection = "site"
)

// AllCollections lists every collection in fetch order.
var AllCollections = []Collection{Articles, Pages, Assets, Redirects, Events, Sites}

func (c Collection) Valid() bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

// Client is the boundary to the remote content source. FetchPage returns at
// most limit records of one collection starting at offset; an empty page means
// the collection is exhausted at that offset.
type Client interface {
	FetchPage(ctx context.Context, collection Collection, offset, limit int) (*Page, error)
}

// Date accepts RFC 3339 timestamps as well as bare dates ("2006-01-02").
// A JSON null or empty string leaves it zero.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339Nano))
}

// Sys is the system metadata the content source attaches to every record.
// PublishedVersion is nil until the record has been publicly released.
type Sys struct {
	ID               string `json:"id"`
	FirstPublishedAt Date   `json:"firstPublishedAt"`
	PublishedAt      Date   `json:"publishedAt"`
	PublishedVersion *int   `json:"publishedVersion"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Metadata struct {
	Tags []Tag `json:"tags"`
}

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	URL   string `json:"url"`
}

type RawAsset struct {
	Sys         Sys    `json:"sys"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type RawEntry struct {
	Sys                  Sys      `json:"sys"`
	Metadata             Metadata `json:"contentfulMetadata"`
	Title                string   `json:"title"`
	Slug                 string   `json:"slug"`
	Intro                string   `json:"intro"`
	Body                 string   `json:"body"`
	Summary              string   `json:"summary"`
	Published            Date     `json:"published"`
	Author               *Author  `json:"author"`
	IndexInSearchEngines bool     `json:"indexInSearchEngines"`
	IsHomePage           bool     `json:"isHomePage"`
}

type RawRedirect struct {
	Sys    Sys    `json:"sys"`
	From   string `json:"from"`
	To     string `json:"to"`
	Status int    `json:"status"`
}

type RawEvent struct {
	Sys      Sys    `json:"sys"`
	Title    string `json:"title"`
	Date     Date   `json:"date"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

type LinkCollection struct {
	Items []Link `json:"items"`
}

type RawSite struct {
	Sys             Sys            `json:"sys"`
	Title           string         `json:"title"`
	MetaTitle       string         `json:"metaTitle"`
	MetaDescription string         `json:"metaDescription"`
	URL             string         `json:"url"`
	EntriesPerPage  int            `json:"entriesPerPage"`
	Author          *Author        `json:"author"`
	Logo            *RawAsset      `json:"logo"`
	OGImage         *RawAsset      `json:"openGraphImage"`
	Navigation      LinkCollection `json:"navigationCollection"`
	Footer          LinkCollection `json:"footerCollection"`
	Social          LinkCollection `json:"socialCollection"`
}

// Page holds raw records per collection, either for a single request or
// accumulated across a whole fetch.
type Page struct {
	Articles  []RawEntry    `json:"articles"`
	Pages     []RawEntry    `json:"pages"`
	Assets    []RawAsset    `json:"assets"`
	Redirects []RawRedirect `json:"redirects"`
	Events    []RawEvent    `json:"events"`
	Sites     []RawSite     `json:"site"`
}

func (p *Page) Len(c Collection) int {
	switch c {
	case Articles:
		return len(p.Articles)
	case Pages:
		return len(p.Pages)
	case Assets:
		return len(p.Assets)
	case Redirects:
		return len(p.Redirects)
	case Events:
		return len(p.Events)
	case Sites:
		return len(p.Sites)
	default:
		return 0
	}
}

// Empty reports whether the page carries no records in any collection.
func (p *Page) Empty() bool {
	for _, c := range AllCollections {
		if p.Len(c) > 0 {
			return false
		}
	}
	return true
}

func (p *Page) Append(other *Page) {
	if other == nil {
		return
	}
	p.Articles = append(p.Articles, other.Articles...)
	p.Pages = append(p.Pages, other.Pages...)
	p.Assets = append(p.Assets, other.Assets...)
	p.Redirects = append(p.Redirects, other.Redirects...)
	p.Events = append(p.Events, other.Events...)
	p.Sites = append(p.Sites, other.Sites...)
}

// slice returns the window [offset, offset+limit) of collection c.
func (p *Page) slice(c Collection, offset, limit int) *Page {
	out := &Page{}
	switch c {
	case Articles:
		out.Articles = window(p.Articles, offset, limit)
	case Pages:
		out.Pages = window(p.Pages, offset, limit)
	case Assets:
		out.Assets = window(p.Assets, offset, limit)
	case Redirects:
		out.Redirects = window(p.Redirects, offset, limit)
	case Events:
		out.Events = window(p.Events, offset, limit)
	case Sites:
		out.Sites = window(p.Sites, offset, limit)
	}
	return out
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
