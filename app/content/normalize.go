package content

import (
	"strings"

	"github.com/gesteves/kona/app/source"
)

func normalizeRedirects(raw []source.RawRedirect) []Redirect {
	out := make([]Redirect, 0, len(raw))
	for _, r := range raw {
		out = append(out, Redirect{
			From:   strings.TrimSpace(r.From),
			To:     strings.TrimSpace(r.To),
			Status: r.Status,
		})
	}
	return out
}

func normalizeAssets(raw []source.RawAsset) []Asset {
	out := make([]Asset, 0, len(raw))
	for _, a := range raw {
		out = append(out, *normalizeAsset(&a))
	}
	return out
}

func normalizeAsset(a *source.RawAsset) *Asset {
	if a == nil {
		return nil
	}
	return &Asset{
		ID:          a.Sys.ID,
		Title:       strings.TrimSpace(a.Title),
		Description: strings.TrimSpace(a.Description),
		URL:         strings.TrimSpace(a.URL),
		ContentType: strings.TrimSpace(a.ContentType),
		Width:       a.Width,
		Height:      a.Height,
	}
}

func normalizeEvents(raw []source.RawEvent) []Event {
	out := make([]Event, 0, len(raw))
	for _, ev := range raw {
		out = append(out, Event{
			ID:       ev.Sys.ID,
			Title:    strings.TrimSpace(ev.Title),
			Date:     utc(ev.Date.Time),
			Location: strings.TrimSpace(ev.Location),
			URL:      strings.TrimSpace(ev.URL),
		})
	}
	return out
}

func normalizeSite(raw source.RawSite) Site {
	site := Site{
		Title:           strings.TrimSpace(raw.Title),
		MetaTitle:       strings.TrimSpace(raw.MetaTitle),
		MetaDescription: strings.TrimSpace(raw.MetaDescription),
		URL:             strings.TrimRight(strings.TrimSpace(raw.URL), "/"),
		EntriesPerPage:  raw.EntriesPerPage,
		Navigation:      normalizeLinks(raw.Navigation.Items),
		Footer:          normalizeLinks(raw.Footer.Items),
		Social:          normalizeLinks(raw.Social.Items),
		Logo:            normalizeAsset(raw.Logo),
		OGImage:         normalizeAsset(raw.OGImage),
	}
	if raw.Author != nil {
		site.Author = &Author{
			Name:  strings.TrimSpace(raw.Author.Name),
			Email: strings.TrimSpace(raw.Author.Email),
			URL:   strings.TrimSpace(raw.Author.URL),
		}
	}
	return site
}

func normalizeLinks(raw []source.Link) []Link {
	out := make([]Link, 0, len(raw))
	for _, l := range raw {
		out = append(out, Link{
			Title: strings.TrimSpace(l.Title),
			URL:   strings.TrimSpace(l.URL),
			Icon:  strings.TrimSpace(l.Icon),
		})
	}
	return out
}
