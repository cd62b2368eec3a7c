package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsLens/internal/domain"
	"NewsLens/internal/extraction"
)

// Option keys read by SelectorStrategy.
const (
	OptionSelectors      = "selectors"
	OptionAuthorSelector = "author_selector"
)

const defaultParagraphSelector = "article p, [itemprop='articleBody'] p, .story-body p, main p"

var spaceExpr = regexp.MustCompile(`\s+`)

// SelectorStrategy collects paragraph text matched by CSS selectors. It is the
// fallback when readability misses the article body.
type SelectorStrategy struct{}

var _ extraction.Strategy = SelectorStrategy{}

// Name identifies the strategy inside the registry.
func (SelectorStrategy) Name() string {
	return "selectors"
}

// Extract tries each configured selector group in order and keeps the first
// that yields text; bare <p> tags are the last resort.
func (SelectorStrategy) Extract(page extraction.Page) (domain.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style, noscript, figure, aside, nav").Remove()

	groups := selectorGroups(page.Options[OptionSelectors])
	var text string
	for _, group := range groups {
		if text = collectParagraphs(doc, group); text != "" {
			break
		}
	}

	return domain.Extraction{
		Text:    text,
		Authors: findAuthors(doc, page.Options[OptionAuthorSelector]),
	}, nil
}

// selectorGroups splits a "|"-separated option into selector groups.
func selectorGroups(option string) []string {
	var groups []string
	for _, g := range strings.Split(option, "|") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return append(groups, defaultParagraphSelector, "p")
}

func collectParagraphs(doc *goquery.Document, selector string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}

func findAuthors(doc *goquery.Document, selector string) []string {
	var authors []string
	seen := map[string]struct{}{}
	add := func(name string) {
		name = strings.TrimPrefix(cleanText(name), "By ")
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		authors = append(authors, name)
	}

	if selector != "" {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
	}
	if len(authors) == 0 {
		doc.Find(`meta[name="author"], meta[property="article:author"]`).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok {
				add(content)
			}
		})
	}
	return authors
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(s, " "))
}
