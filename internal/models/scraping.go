package models

import "time"

// Skip reason constants, one per early-termination point in the candidate
// state machine
const (
	SkipReasonExtraction  = "extraction-error"
	SkipReasonIrrelevant  = "irrelevant"
	SkipReasonParseError  = "date-parse-error"
	SkipReasonNotUpcoming = "past-or-too-far"
	SkipReasonDuplicate   = "duplicate"
	SkipReasonStoreError  = "store-error"
)

// SourceSummary is the per-source outcome tally for one pipeline execution.
// One instance per source per run; discarded after reporting.
type SourceSummary struct {
	SourceURL   string         `json:"source_url"`
	SourceName  string         `json:"source_name"`
	AddedEvents int            `json:"added_events"`
	Skipped     int            `json:"skipped"`
	NewVenues   int            `json:"new_venues"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
	Error       string         `json:"error,omitempty"`
	Duration    time.Duration  `json:"duration"`
}

// NewSourceSummary creates an empty summary for a source
func NewSourceSummary(name, url string) *SourceSummary {
	return &SourceSummary{
		SourceURL:   url,
		SourceName:  name,
		SkipReasons: make(map[string]int),
	}
}

// Skip records one skipped candidate under the given reason
func (s *SourceSummary) Skip(reason string) {
	s.Skipped++
	s.SkipReasons[reason]++
}

// RunReport aggregates the summaries of one complete scraping run across all
// configured sources
type RunReport struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Duration    int64            `json:"duration_ms"`
	Summaries   []*SourceSummary `json:"summaries"`

	// Aggregated results
	TotalSources      int `json:"total_sources"`
	SuccessfulSources int `json:"successful_sources"`
	FailedSources     int `json:"failed_sources"`
	TotalAdded        int `json:"total_added"`
	TotalSkipped      int `json:"total_skipped"`
	TotalNewVenues    int `json:"total_new_venues"`
}

// NewRunReport creates a report for a run starting at the given instant
func NewRunReport(start time.Time) *RunReport {
	return &RunReport{
		RunID:     GenerateRunID(start),
		StartedAt: start,
	}
}

// Add appends a source summary and folds it into the aggregate counters
func (r *RunReport) Add(s *SourceSummary) {
	r.Summaries = append(r.Summaries, s)
	r.TotalSources++
	if s.Error != "" {
		r.FailedSources++
	} else {
		r.SuccessfulSources++
	}
	r.TotalAdded += s.AddedEvents
	r.TotalSkipped += s.Skipped
	r.TotalNewVenues += s.NewVenues
}

// Finish stamps completion time and duration
func (r *RunReport) Finish(end time.Time) {
	r.CompletedAt = end
	r.Duration = end.Sub(r.StartedAt).Milliseconds()
}
