package pipeline

import (
	"strings"
	"time"
)

// RelevanceFilter decides whether a candidate's name and description match
// the enjoyment keyword taxonomy. Pure and total: no side effects, every
// input gets an answer.
type RelevanceFilter struct {
	keywords []string
}

// NewRelevanceFilter builds a filter from a keyword set. Keywords are
// matched case-insensitively as substrings.
func NewRelevanceFilter(keywords []string) *RelevanceFilter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &RelevanceFilter{keywords: lowered}
}

// Matches returns true iff the lowercase concatenation of name and
// description contains at least one keyword
func (f *RelevanceFilter) Matches(name, description string) bool {
	text := strings.ToLower(name + " " + description)
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// RecencyFilter decides whether a normalized start instant falls within the
// admissible future window. Window zero means open-ended going forward.
type RecencyFilter struct {
	Window time.Duration
}

// Upcoming returns true iff start is not in the past and, when a window is
// configured, not beyond it
func (f RecencyFilter) Upcoming(start, now time.Time) bool {
	if start.Before(now) {
		return false
	}
	if f.Window > 0 && start.After(now.Add(f.Window)) {
		return false
	}
	return true
}
