package sink

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gesteves/kona/app/content"
)

// FeedGenerator renders the latest published entries as an RSS 2.0 document.
type FeedGenerator struct {
	size      int
	generator string
}

func NewFeedGenerator(size int, generator string) *FeedGenerator {
	return &FeedGenerator{size: size, generator: generator}
}

func (g *FeedGenerator) Run(c *content.Content) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	site := c.Site
	g.writeElement(&buf, "title", cmp.Or(site.MetaTitle, site.Title), 4)
	g.writeElement(&buf, "link", site.URL+"/", 4)
	g.writeElement(&buf, "description", cmp.Or(site.MetaDescription, site.Title), 4)
	if site.URL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(site.URL+"/feed.xml")))
	}

	items := g.latest(c.Entries)
	lastBuildDate := c.GeneratedAt
	if len(items) > 0 {
		lastBuildDate = cmp.Or(items[0].UpdatedAt, items[0].PublishedAt, lastBuildDate)
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", g.generator, 4)

	if site.Logo != nil && site.Logo.URL != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", site.Logo.URL, 6)
		g.writeElement(&buf, "title", site.Title, 6)
		g.writeElement(&buf, "link", site.URL+"/", 6)
		buf.WriteString("    </image>\n")
	}

	for _, e := range items {
		g.writeItem(&buf, site, e)
	}

	buf.WriteString("  </channel>\n</rss>\n")
	return buf.Bytes()
}

func (g *FeedGenerator) latest(entries []content.Entry) []content.Entry {
	items := make([]content.Entry, 0, g.size)
	for _, e := range entries {
		if len(items) == g.size {
			break
		}
		if !e.IsDraft {
			items = append(items, e)
		}
	}
	return items
}

func (g *FeedGenerator) writeItem(buf *bytes.Buffer, site content.Site, e content.Entry) {
	link := site.URL + strings.TrimSuffix(e.Path, "index.html")

	buf.WriteString("    <item>\n")
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", site.URL != ""))
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", e.Title, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", cmp.Or(e.Summary, e.Title), 6)
	g.writeElement(buf, "pubDate", e.PublishedAt.Format(time.RFC1123Z), 6)

	author := site.Author
	if e.Author != nil {
		author = e.Author
	}
	if author != nil && author.Email != "" {
		g.writeElement(buf, "author", fmt.Sprintf("%s (%s)", author.Email, author.Name), 6)
	}

	for _, tag := range e.Tags {
		g.writeElement(buf, "category", tag.Name, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *FeedGenerator) writeElement(buf *bytes.Buffer, tag, text string, indent int) {
	if text == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(text))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
