package content

import (
	"time"
)

type Kind string

const (
	KindUnset   Kind = ""
	KindArticle Kind = "article"
	KindShort   Kind = "short"
	KindPage    Kind = "page"
)

const (
	TemplateArticle = "article"
	TemplateShort   = "short"
	TemplatePage    = "page"
	TemplateHome    = "home"
	TemplateListing = "listing"
)

type TagRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Author struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Entry is an article, short post or page. Stages enrich it by returning
// modified copies; an Entry handed to a stage is never changed in place.
type Entry struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Slug    string   `json:"slug" yaml:"slug"`
	Intro   string   `json:"intro,omitempty" yaml:"intro,omitempty"`
	Body    string   `json:"body,omitempty" yaml:"body,omitempty"`
	Summary string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Author  *Author  `json:"author,omitempty" yaml:"author,omitempty"`
	Tags    []TagRef `json:"tags" yaml:"tags"`

	FirstPublishedAt time.Time `json:"first_published_at" yaml:"first_published_at,omitempty"`
	LastPublishedAt  time.Time `json:"last_published_at" yaml:"last_published_at,omitempty"`
	PublishedVersion *int      `json:"published_version,omitempty" yaml:"published_version,omitempty"`

	IndexInSearchEngines bool `json:"index_in_search_engines" yaml:"index_in_search_engines"`
	IsHomePage           bool `json:"is_home_page" yaml:"is_home_page"`

	Kind        Kind      `json:"entry_kind" yaml:"entry_kind"`
	IsDraft     bool      `json:"is_draft" yaml:"is_draft"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
	Path        string    `json:"path" yaml:"path"`
	Template    string    `json:"template" yaml:"template"`
}

// HasTag reports whether the entry carries the tag with the given id.
func (e Entry) HasTag(id string) bool {
	for _, t := range e.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

type Tag struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Items    []Entry `json:"items" yaml:"items"`
	Path     string  `json:"path" yaml:"path"`
	Template string  `json:"template" yaml:"template"`
}

type ListingPage struct {
	CurrentPage          int     `json:"current_page" yaml:"current_page"`
	PreviousPage         *int    `json:"previous_page" yaml:"previous_page"`
	NextPage             *int    `json:"next_page" yaml:"next_page"`
	Items                []Entry `json:"items" yaml:"items"`
	Path                 string  `json:"path" yaml:"path"`
	Template             string  `json:"template" yaml:"template"`
	IndexInSearchEngines bool    `json:"index_in_search_engines" yaml:"index_in_search_engines"`
}

type Link struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

type Asset struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url" yaml:"url"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Width       int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int    `json:"height,omitempty" yaml:"height,omitempty"`
}

type Site struct {
	Title           string  `json:"title" yaml:"title"`
	MetaTitle       string  `json:"meta_title" yaml:"meta_title"`
	MetaDescription string  `json:"meta_description" yaml:"meta_description"`
	URL             string  `json:"url" yaml:"url"`
	EntriesPerPage  int     `json:"entries_per_page" yaml:"entries_per_page"`
	Author          *Author `json:"author,omitempty" yaml:"author,omitempty"`
	Navigation      []Link  `json:"navigation" yaml:"navigation"`
	Footer          []Link  `json:"footer" yaml:"footer"`
	Social          []Link  `json:"social" yaml:"social"`
	Logo            *Asset  `json:"logo,omitempty" yaml:"logo,omitempty"`
	OGImage         *Asset  `json:"og_image,omitempty" yaml:"og_image,omitempty"`
}

type Redirect struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Status int    `json:"status" yaml:"status"`
}

type Event struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Date     time.Time `json:"date" yaml:"date,omitempty"`
	Location string    `json:"location,omitempty" yaml:"location,omitempty"`
	URL      string    `json:"url,omitempty" yaml:"url,omitempty"`
}

// Content is the complete site graph produced by one pipeline run.
type Content struct {
	Entries     []Entry       `json:"entries" yaml:"entries"`
	Pages       []Entry       `json:"pages" yaml:"pages"`
	Listing     []ListingPage `json:"listing" yaml:"listing"`
	Tags        []Tag         `json:"tags" yaml:"tags"`
	Site        Site          `json:"site" yaml:"site"`
	Redirects   []Redirect    `json:"redirects" yaml:"redirects"`
	Assets      []Asset       `json:"assets" yaml:"assets"`
	Events      []Event       `json:"events" yaml:"events"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
}
