package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"yovibe-events-scraper/internal/sources"
)

// ErrUnparseableDate reports that a listing's date text matched none of its
// source's grammars. This is a distinct outcome from "parsed but in the
// past": callers skip and count the candidate instead of admitting a record
// with a guessed start time.
var ErrUnparseableDate = errors.New("unparseable date")

var (
	ordinalPattern = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)
	weekdayPattern = regexp.MustCompile(`^(?i)(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s*,?\s*`)
)

// DateParser normalizes a source's raw date/time strings into UTC instants
// using the source's grammar list. Grammars are tried in priority order and
// the first successful parse wins.
type DateParser struct {
	Grammars    []sources.DateGrammar
	TimeLayouts []string
}

// NewDateParser builds a parser from a source adapter
func NewDateParser(src sources.Source) DateParser {
	return DateParser{
		Grammars:    src.DateGrammars,
		TimeLayouts: src.TimeLayouts,
	}
}

// Parse converts the listing's date attribute (preferred, when present) or
// date text, plus the separate time text, into a single UTC instant. The
// reference instant supplies the year for year-less grammars. A time-parse
// failure never invalidates a successful date parse; the time falls back to
// midnight.
func (p DateParser) Parse(dateAttr, dateText, timeText string, now time.Time) (time.Time, error) {
	for _, candidate := range []string{dateAttr, dateText} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		for _, g := range p.Grammars {
			t, ok := p.tryGrammar(g, candidate, timeText, now)
			if ok {
				return t, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, dateText)
}

func (p DateParser) tryGrammar(g sources.DateGrammar, text, timeText string, now time.Time) (time.Time, bool) {
	if g.StripOrdinals {
		text = ordinalPattern.ReplaceAllString(text, "$1")
	}
	if g.DropWeekday {
		text = weekdayPattern.ReplaceAllString(text, "")
	}

	parsed, err := time.Parse(g.Layout, text)
	if err != nil {
		return time.Time{}, false
	}

	year := parsed.Year()
	if !g.HasYear {
		year = now.Year()
	}

	t := time.Date(year, parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)

	// Year-less dates that already slipped more than a day into the past
	// refer to the next occurrence
	if !g.HasYear && t.Before(now.Add(-24*time.Hour)) {
		t = t.AddDate(1, 0, 0)
	}

	if !g.HasTime {
		t = p.combineTime(t, timeText)
	}

	return t, true
}

// combineTime merges a separately supplied time string into a date-only
// instant. All layouts missing leaves the instant at midnight.
func (p DateParser) combineTime(date time.Time, timeText string) time.Time {
	timeText = strings.ToUpper(strings.TrimSpace(timeText))
	if timeText == "" {
		return date
	}

	for _, layout := range p.TimeLayouts {
		t, err := time.Parse(layout, timeText)
		if err != nil {
			continue
		}
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	}

	return date
}
