package content

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const SummaryLength = 300

var markdown = goldmark.New()

// Summarize returns a copy of e whose Summary is derived from the intro
// when the source did not provide one.
func Summarize(e Entry) Entry {
	if strings.TrimSpace(e.Summary) != "" {
		return e
	}
	e.Summary = truncateWords(PlainText(e.Intro), SummaryLength)
	return e
}

// PlainText extracts the text content of a markdown document, dropping
// markup, code blocks and raw HTML.
func PlainText(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	src := []byte(md)
	root := markdown.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			if n.Type() == gmast.TypeBlock {
				b.WriteByte(' ')
			}
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock, *gmast.HTMLBlock, *gmast.RawHTML:
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		}
		return gmast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

func truncateWords(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(s) {
		wl := utf8.RuneCountInString(word)
		if n > 0 {
			wl++
		}
		if n+wl > limit-1 {
			break
		}
		if n > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		n += wl
	}
	if n == 0 {
		return string([]rune(s)[:limit-1]) + "…"
	}
	return b.String() + "…"
}
