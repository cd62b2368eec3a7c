// Package textnorm cleans raw article text before scoring.
//
// The filters are best effort: publisher chrome varies and some residue will
// survive, so downstream scoring gates on word and character counts.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"NewsLens/internal/domain"
)

// Devanagari block bounds.
const (
	devanagariFirst = '\u0900'
	devanagariLast  = '\u097F'
)

const minLineWords = 4

var (
	wordExpr       = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// boilerplateMarkers truncate the text at the first one found, in this order.
var boilerplateMarkers = []string{
	"Published On:",
	"Updated On:",
	"First published on:",
	"Subscribe to our newsletter",
	"Sign up for our newsletter",
	"Get the latest news on WhatsApp",
	"Disclaimer:",
	"(Disclaimer:",
	"Read More:",
	"READ MORE:",
	"Also Read:",
	"ALSO READ:",
	"Click here to read",
	"Download the app",
	"Follow us on",
	"Catch all the Latest",
}

// lineMarkers drop any line that contains them.
var lineMarkers = []string{
	"Updated:",
	"Published:",
	"Last Updated",
	"Written by",
	"Edited by",
	"Reported by",
	"Subscribe",
	"SUBSCRIBE",
	"Watch:",
	"WATCH:",
	"Watch Video",
	"LIVE Updates",
	"विज्ञापन",
}

// publisherLineMarkers drop lines for publishers that run live blogs.
var publisherLineMarkers = map[string][]string{
	"news18":    {"LIVE"},
	"abp india": {"LIVE"},
}

var mojibakePages = []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252}

// socialMarkers drop lines that carry embedded social-media links.
var socialMarkers = []string{
	"pic.twitter.com",
	"twitter.com/",
	"//x.com/",
	"instagram.com/",
	"facebook.com/",
	"youtube.com/",
	"youtu.be/",
	"//t.co/",
	"— (@",
}

// Text is a normalized article body ready for scoring.
type Text struct {
	Body      string
	WordCount int
	CharCount int
	Script    domain.Script
}

// Prepare runs Clean, StripBoilerplate and Normalize and measures the result.
func Prepare(raw string) Text {
	return PrepareFor(raw, "")
}

// PrepareFor is Prepare with the extra line filters registered for publisher.
func PrepareFor(raw, publisher string) Text {
	extra := publisherLineMarkers[strings.ToLower(strings.TrimSpace(publisher))]
	body := normalize(StripBoilerplate(Clean(raw)), extra)
	return Text{
		Body:      body,
		WordCount: len(Tokenize(body)),
		CharCount: utf8.RuneCountInString(body),
		Script:    DetectScript(body),
	}
}

// Clean repairs UTF-8 text that was decoded as Latin-1 or Windows-1252, then
// normalizes carriage returns and trims.
func Clean(raw string) string {
	text := repairMojibake(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// repairMojibake re-encodes the text as Latin-1, then as Windows-1252, and
// keeps the first byte sequence that is valid UTF-8. Text that fits neither
// code page, or whose bytes are not UTF-8, is returned unchanged.
func repairMojibake(s string) string {
	for _, cp := range mojibakePages {
		raw, err := cp.NewEncoder().Bytes([]byte(s))
		if err != nil {
			continue
		}
		if utf8.Valid(raw) {
			return string(raw)
		}
	}
	return s
}

// StripBoilerplate truncates text at the first publisher-chrome marker.
func StripBoilerplate(text string) string {
	for _, marker := range boilerplateMarkers {
		if idx := strings.Index(text, marker); idx >= 0 {
			return strings.TrimSpace(text[:idx])
		}
	}
	return text
}

// Normalize filters bylines, captions, embeds and short lines, then joins the
// remaining lines into a single whitespace-collapsed string.
func Normalize(text string) string {
	return normalize(text, nil)
}

func normalize(text string, extra []string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isChromeLine(line) || containsAny(line, extra) {
			continue
		}
		if len(strings.Fields(line)) < minLineWords && !IsDevanagariScript(line) {
			continue
		}
		kept = append(kept, line)
	}
	joined := strings.Join(kept, " ")
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(joined, " "))
}

func isChromeLine(line string) bool {
	if strings.HasPrefix(line, "By ") {
		return true
	}
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "photo") || strings.HasPrefix(lower, "image") {
		return true
	}
	return containsAny(line, lineMarkers) || containsAny(lower, socialMarkers)
}

func containsAny(line string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// IsDevanagariScript reports whether any rune falls in the Devanagari block.
// It is a coarse language gate, not a language identifier.
func IsDevanagariScript(text string) bool {
	for _, r := range text {
		if r >= devanagariFirst && r <= devanagariLast {
			return true
		}
	}
	return false
}

// DetectScript maps IsDevanagariScript onto a domain.Script tag.
func DetectScript(text string) domain.Script {
	if IsDevanagariScript(text) {
		return domain.ScriptDevanagari
	}
	return domain.ScriptLatin
}

// Tokenize extracts lower-cased word tokens. Lexicon keys use the same folding.
func Tokenize(text string) []string {
	tokens := wordExpr.FindAllString(text, -1)
	for i, tok := range tokens {
		tokens[i] = strings.ToLower(tok)
	}
	return tokens
}
