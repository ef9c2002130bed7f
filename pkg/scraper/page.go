package scraper

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxContentRunes caps the extracted text handed back to callers.
	MaxContentRunes = 3000
	// paragraphs this short are usually navigation or button labels
	minParagraphRunes = 10
)

// Page is the readable content of a web page
type Page struct {
	URL     string
	Title   string
	Content string
}

// ParsePage extracts the document title and the text of every paragraph longer
// than minParagraphRunes, one paragraph per line.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "(untitled)"
	}

	var paragraphs []string
	doc.Find("p").Each(func(i int, sel *goquery.Selection) {
		text := sel.Text()
		if utf8.RuneCountInString(text) <= minParagraphRunes {
			return
		}
		paragraphs = append(paragraphs, strings.TrimSpace(text))
	})

	return Page{
		Title:   title,
		Content: truncateRunes(strings.Join(paragraphs, "\n"), MaxContentRunes),
	}, nil
}

// Summary renders the page for a chat reply.
func (p Page) Summary() string {
	return fmt.Sprintf("[Page summary]\nTitle: %s\nContent: %s", p.Title, p.Content)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
