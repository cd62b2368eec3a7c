package domain

import (
	"fmt"
	"sort"
	"strings"
)

// OutcomeStatus enumerates what happened to one record in a batch.
type OutcomeStatus string

const (
	StatusScored  OutcomeStatus = "scored"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome is the typed per-record result of a pipeline run.
type Outcome struct {
	ArticleID string
	Headline  string
	Publisher string
	Status    OutcomeStatus
	Reason    string
	Result    *ScoreResult
	Err       error
}

// PublisherStats counts outcomes for one publisher.
type PublisherStats struct {
	Seen      int
	Processed int
	Skipped   int
	Failed    int
}

// BatchSummary aggregates the outcomes of one run.
type BatchSummary struct {
	RunID      string
	Outcomes   []Outcome
	Publishers map[string]*PublisherStats
}

// NewBatchSummary starts an empty summary.
func NewBatchSummary(runID string) *BatchSummary {
	return &BatchSummary{RunID: runID, Publishers: map[string]*PublisherStats{}}
}

// Add records an outcome.
func (s *BatchSummary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)

	stats, ok := s.Publishers[o.Publisher]
	if !ok {
		stats = &PublisherStats{}
		s.Publishers[o.Publisher] = stats
	}
	stats.Seen++
	switch o.Status {
	case StatusScored:
		stats.Processed++
	case StatusSkipped:
		stats.Skipped++
	case StatusFailed:
		stats.Failed++
	}
}

// Count returns how many outcomes have the given status.
func (s *BatchSummary) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Digest renders the per-publisher table.
func (s *BatchSummary) Digest() string {
	names := make([]string, 0, len(s.Publishers))
	for name := range s.Publishers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Processing summary (run %s)\n", s.RunID)
	for _, name := range names {
		st := s.Publishers[name]
		label := name
		if label == "" {
			label = "(unknown)"
		}
		fmt.Fprintf(&b, "%-15s Seen: %3d  Processed: %3d  Skipped: %3d  Failed: %3d\n",
			label, st.Seen, st.Processed, st.Skipped, st.Failed)
	}
	fmt.Fprintf(&b, "Total: %d scored, %d skipped, %d failed",
		s.Count(StatusScored), s.Count(StatusSkipped), s.Count(StatusFailed))
	return b.String()
}
