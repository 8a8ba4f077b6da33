package sources

import "time"

// SelectorMap is the per-source declarative description of where each logical
// field lives in a parsed listing document. Card locates the repeated listing
// element; the rest are resolved relative to it. Desc, Fee and Link are
// optional and their absence is tolerated by the extractor.
type SelectorMap struct {
	Card     string `yaml:"card"`
	Title    string `yaml:"title"`
	Venue    string `yaml:"venue"`
	Location string `yaml:"location"`
	Date     string `yaml:"date"`
	// DateAttr names an attribute on the date element that carries a
	// machine-readable date (e.g. "datetime"). When set, the attribute is
	// tried before the element's text.
	DateAttr string `yaml:"date_attr,omitempty"`
	Time     string `yaml:"time"`
	Poster   string `yaml:"poster"`
	Desc     string `yaml:"desc,omitempty"`
	Fee      string `yaml:"fee,omitempty"`
	Link     string `yaml:"link,omitempty"`
}

// DateGrammar describes one textual date format a source is known to emit.
// Grammars are tried in declaration order; the first successful parse wins.
type DateGrammar struct {
	Layout string `yaml:"layout"`
	// StripOrdinals removes "st"/"nd"/"rd"/"th" suffixes from day numbers
	// before parsing
	StripOrdinals bool `yaml:"strip_ordinals,omitempty"`
	// DropWeekday discards a leading "Friday, " style weekday token
	DropWeekday bool `yaml:"drop_weekday,omitempty"`
	// HasYear is false for formats like "December 12"; the year is then
	// inferred from the reference instant
	HasYear bool `yaml:"has_year"`
	// HasTime is true when the layout already includes a time of day, in
	// which case the separate time text is ignored for this grammar
	HasTime bool `yaml:"has_time,omitempty"`
}

// Source is one event-listing site: where to fetch it, how to fetch it, and
// how to read its markup. Each source gets its own adapter so per-site markup
// fragility stays isolated from the shared pipeline.
type Source struct {
	Name    string
	URL     string
	Enabled bool

	// Render requests a rendered-DOM fetch instead of a static one;
	// WaitSelector is the readiness condition for the rendered page.
	Render       bool
	WaitSelector string
	Timeout      time.Duration

	Selectors    SelectorMap
	DateGrammars []DateGrammar
	// TimeLayouts are tried against the separate time text; a miss falls
	// back to midnight rather than invalidating a parsed date.
	TimeLayouts []string
}

var defaultTimeLayouts = []string{"3:04 PM", "3:04PM", "15:04", "3 PM"}

// Builtin returns the built-in source adapters. Selector maps track each
// site's current markup and are expected to need maintenance.
func Builtin() []Source {
	return []Source{
		{
			Name:    "AllEvents Kampala",
			URL:     "https://allevents.ug/events/",
			Enabled: true,
			Timeout: 30 * time.Second,
			Selectors: SelectorMap{
				Card:     ".event-card",
				Title:    ".event-title",
				Venue:    ".event-venue",
				Location: ".event-location",
				Date:     ".event-date",
				DateAttr: "datetime",
				Time:     ".event-time",
				Poster:   "img",
				Desc:     ".event-description",
				Link:     "a.event-link",
			},
			DateGrammars: []DateGrammar{
				{Layout: "2006-01-02", HasYear: true},
				{Layout: "2 January 2006", HasYear: true, StripOrdinals: true},
			},
			TimeLayouts: defaultTimeLayouts,
		},
		{
			Name:    "Evento Uganda",
			URL:     "https://evento.ug/events?eventtype=Music%20and%20Concerts",
			Enabled: true,
			Timeout: 30 * time.Second,
			Selectors: SelectorMap{
				Card:     ".event-item",
				Title:    ".event-name",
				Venue:    ".event-venue",
				Location: ".event-location",
				Date:     ".event-date",
				Time:     ".event-time",
				Poster:   "img",
				Fee:      ".event-fees",
			},
			DateGrammars: []DateGrammar{
				{Layout: "January 2 @ 3:04 PM", HasTime: true, StripOrdinals: true},
				{Layout: "January 2, 2006", HasYear: true, StripOrdinals: true},
			},
			TimeLayouts: defaultTimeLayouts,
		},
		{
			// Quicket renders its listing grid client-side, so this is the
			// one source that needs the rendered-DOM fetch strategy.
			Name:         "Quicket Uganda",
			URL:          "https://www.quicket.co.ug/events/uganda",
			Enabled:      true,
			Render:       true,
			WaitSelector: ".event-card",
			Timeout:      60 * time.Second,
			Selectors: SelectorMap{
				Card:     ".event-card",
				Title:    ".event-title",
				Venue:    ".event-venue",
				Location: ".event-location",
				Date:     ".event-date",
				Time:     ".event-time",
				Poster:   "img",
				Desc:     ".event-description",
				Fee:      ".event-price",
				Link:     "a",
			},
			DateGrammars: []DateGrammar{
				{Layout: "January 2, 2006", DropWeekday: true, HasYear: true, StripOrdinals: true},
				{Layout: "2 January 2006", HasYear: true, StripOrdinals: true},
			},
			TimeLayouts: defaultTimeLayouts,
		},
	}
}
