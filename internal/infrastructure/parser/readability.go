package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-shiori/go-readability"

	"NewsLens/internal/domain"
	"NewsLens/internal/extraction"
)

// ReadabilityStrategy extracts the main article body with Mozilla's
// readability heuristics.
type ReadabilityStrategy struct{}

var _ extraction.Strategy = ReadabilityStrategy{}

// Name identifies the strategy inside the registry.
func (ReadabilityStrategy) Name() string {
	return "readability"
}

func (ReadabilityStrategy) Extract(page extraction.Page) (domain.Extraction, error) {
	article, err := readability.FromReader(bytes.NewReader(page.HTML), page.URL)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("readability: %w", err)
	}

	var authors []string
	if byline := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(article.Byline), "By ")); byline != "" {
		authors = append(authors, byline)
	}

	return domain.Extraction{
		Text:    strings.TrimSpace(article.TextContent),
		Authors: authors,
	}, nil
}
