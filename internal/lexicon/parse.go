package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"NewsLens/internal/domain"
)

// ErrResource marks a missing or malformed resource file. It is fatal: a
// partial lexicon would bias every downstream score.
var ErrResource = errors.New("lexicon resource unusable")

func resourceErr(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrResource, path, fmt.Sprintf(format, args...))
}

func readRecords(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResource, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, resourceErr(path, "read: %v", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, resourceErr(path, "file is empty")
	}
	return records, nil
}

// parseRiskWords reads the comma-delimited risk resource. The header names the
// Word, Negative and Uncertainty columns; a non-zero cell marks membership.
func parseRiskWords(path string, b *builder) error {
	records, err := readRecords(path, ',')
	if err != nil {
		return err
	}

	wordCol, negCol, uncCol := -1, -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "word":
			wordCol = i
		case "negative":
			negCol = i
		case "uncertainty":
			uncCol = i
		}
	}
	if wordCol < 0 || negCol < 0 || uncCol < 0 {
		return resourceErr(path, "header must name Word, Negative and Uncertainty columns")
	}

	for line, rec := range records[1:] {
		if len(rec) <= max(wordCol, negCol, uncCol) {
			return resourceErr(path, "line %d: expected at least %d columns", line+2, max(wordCol, negCol, uncCol)+1)
		}
		word := fold(rec[wordCol])
		if word == "" {
			continue
		}
		if marked(rec[negCol]) {
			b.negative[word] = struct{}{}
		}
		if marked(rec[uncCol]) {
			b.uncertainty[word] = struct{}{}
		}
	}

	if len(b.negative) == 0 || len(b.uncertainty) == 0 {
		return resourceErr(path, "no negative or uncertainty words found")
	}
	return nil
}

// parseEmotions reads a tab-delimited emotion resource, detecting its layout
// from the first row: three columns are word/emotion/flag triples, more are a
// word-by-emotion matrix with one header column per emotion.
func parseEmotions(path string, b *builder) error {
	records, err := readRecords(path, '\t')
	if err != nil {
		return err
	}

	var added int
	switch cols := len(records[0]); {
	case cols == 3:
		added, err = parseEmotionTriples(path, records, b)
	case cols > 3:
		added, err = parseEmotionMatrix(path, records, b)
	default:
		err = resourceErr(path, "expected 3 or more tab-separated columns, got %d", cols)
	}
	if err != nil {
		return err
	}

	if added == 0 {
		return resourceErr(path, "no emotion associations found")
	}
	return nil
}

func parseEmotionTriples(path string, records [][]string, b *builder) (int, error) {
	if !isNumber(records[0][2]) {
		records = records[1:]
	}
	added := 0
	for line, rec := range records {
		if len(rec) != 3 {
			return 0, resourceErr(path, "line %d: expected 3 columns, got %d", line+1, len(rec))
		}
		word, emotion := fold(rec[0]), fold(rec[1])
		if word == "" || emotion == "" {
			continue
		}
		if marked(rec[2]) {
			b.addEmotion(word, domain.Emotion(emotion))
			added++
		}
	}
	return added, nil
}

func parseEmotionMatrix(path string, records [][]string, b *builder) (int, error) {
	header := records[0]
	emotions := make([]domain.Emotion, len(header))
	for i := 1; i < len(header); i++ {
		emotions[i] = domain.Emotion(fold(header[i]))
	}

	added := 0
	for line, rec := range records[1:] {
		if len(rec) != len(header) {
			return 0, resourceErr(path, "line %d: expected %d columns, got %d", line+2, len(header), len(rec))
		}
		word := fold(rec[0])
		if word == "" {
			continue
		}
		for i := 1; i < len(rec); i++ {
			if emotions[i] != "" && marked(rec[i]) {
				b.addEmotion(word, emotions[i])
				added++
			}
		}
	}
	return added, nil
}

// parseIntensity reads word/emotion/score triples.
func parseIntensity(path string, b *builder) error {
	records, err := readRecords(path, '\t')
	if err != nil {
		return err
	}
	if len(records[0]) >= 3 && !isNumber(records[0][2]) {
		records = records[1:]
	}

	for line, rec := range records {
		if len(rec) != 3 {
			return resourceErr(path, "line %d: expected 3 columns, got %d", line+1, len(rec))
		}
		word := fold(rec[0])
		if word == "" {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return resourceErr(path, "line %d: bad score %q", line+1, rec[2])
		}
		b.addIntensity(word, score)
	}

	if len(b.intensity) == 0 {
		return resourceErr(path, "no intensity scores found")
	}
	return nil
}

// marked treats a positive numeric cell as membership. The master dictionary
// records the year a word was added and the negated year it was removed.
func marked(cell string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	return err == nil && v > 0
}

func isNumber(cell string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	return err == nil
}
