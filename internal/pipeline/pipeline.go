package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"yovibe-events-scraper/internal/models"
	"yovibe-events-scraper/internal/sources"
)

// FetchOptions carries the per-source rendering requirements down to the
// document fetcher
type FetchOptions struct {
	Render       bool
	WaitSelector string
	Timeout      time.Duration
}

// DocumentFetcher retrieves a URL as a parsed document tree. Implementations
// cover both static fetching and rendered-DOM fetching; the pipeline is
// identical regardless of which strategy a source needs.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) (*goquery.Document, error)
}

// EventStore is the document-store collaborator. Lookups return (nil, nil)
// when no matching record exists.
type EventStore interface {
	FindEventByPermalink(ctx context.Context, permalink string) (*models.Event, error)
	FindEventByDedupKey(ctx context.Context, dedupKey string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	FindVenueByNaturalKey(ctx context.Context, naturalKey string) (*models.Venue, error)
	CreateVenue(ctx context.Context, venue *models.Venue) error
}

// BlobStore stores raw image bytes and returns a publicly resolvable URL
type BlobStore interface {
	UploadImage(ctx context.Context, data []byte, key string) (string, error)
}

// ImageFetcher downloads raw image bytes from a URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Clients bundles the external collaborators the pipeline calls. Constructed
// explicitly and passed in, so tests substitute fakes.
type Clients struct {
	Fetcher DocumentFetcher
	Store   EventStore
	Blobs   BlobStore
	Images  ImageFetcher
}

// Pipeline runs the extraction-and-normalization flow for each configured
// source. Each listing element moves through the candidate states
// Extracted, RelevanceChecked, DateParsed, RecencyChecked, DedupChecked,
// VenueResolved, Admitted, terminating on the first rejection. Relevance and
// date checks run before any store round-trip so obviously rejected
// candidates cost no lookups.
type Pipeline struct {
	clients   Clients
	relevance *RelevanceFilter
	recency   RecencyFilter
	now       func() time.Time
	dryRun    bool

	// In-run admission state. The store dedup checks are point-in-time, so
	// these sets are what guarantee at most one admission per permalink or
	// triple within a single run.
	seenPermalinks map[string]bool
	seenTriples    map[string]bool
	venueCache     map[string]string // natural key -> venue id
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock overrides the pipeline's notion of "now" (used by tests and the
// recency filter)
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithDryRun makes the pipeline report what it would admit without writing
// to the store or uploading posters
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// New constructs a pipeline with the given collaborators, relevance keyword
// set and recency window (zero window = open-ended)
func New(clients Clients, keywords []string, window time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		clients:        clients,
		relevance:      NewRelevanceFilter(keywords),
		recency:        RecencyFilter{Window: window},
		now:            time.Now,
		seenPermalinks: make(map[string]bool),
		seenTriples:    make(map[string]bool),
		venueCache:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes all enabled sources sequentially and returns the run report.
// A source failure aborts only that source; the rest still run.
func (p *Pipeline) Run(ctx context.Context, srcs []sources.Source) *models.RunReport {
	report := models.NewRunReport(p.now())

	for _, src := range srcs {
		if !src.Enabled {
			log.Printf("Skipping disabled source: %s", src.Name)
			continue
		}
		report.Add(p.RunSource(ctx, src))
	}

	report.Finish(p.now())
	return report
}

// RunSource fetches one source's listing document and processes every
// listing card, producing the per-source outcome tally
func (p *Pipeline) RunSource(ctx context.Context, src sources.Source) *models.SourceSummary {
	start := time.Now()
	summary := models.NewSourceSummary(src.Name, src.URL)
	defer func() { summary.Duration = time.Since(start) }()

	log.Printf("Scraping source: %s (%s)", src.Name, src.URL)

	doc, err := p.clients.Fetcher.Fetch(ctx, src.URL, FetchOptions{
		Render:       src.Render,
		WaitSelector: src.WaitSelector,
		Timeout:      src.Timeout,
	})
	if err != nil {
		summary.Error = err.Error()
		log.Printf("Skipping %s due to fetch error: %v", src.URL, err)
		return summary
	}

	parser := NewDateParser(src)
	doc.Find(src.Selectors.Card).Each(func(i int, card *goquery.Selection) {
		p.processListing(ctx, src, parser, card, summary)
	})

	log.Printf("Finished %s: %d added, %d skipped, %d new venues",
		src.Name, summary.AddedEvents, summary.Skipped, summary.NewVenues)

	return summary
}

// processListing drives one listing card through the candidate state
// machine. A failure in any one candidate never aborts the source run.
func (p *Pipeline) processListing(ctx context.Context, src sources.Source, parser DateParser, card *goquery.Selection, summary *models.SourceSummary) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from candidate panic on %s: %v", src.Name, r)
			summary.Skip(models.SkipReasonExtraction)
		}
	}()

	// Extracted
	listing, err := ExtractListing(card, src.Selectors)
	if err != nil {
		log.Printf("Skipped malformed listing on %s: %v", src.Name, err)
		summary.Skip(models.SkipReasonExtraction)
		return
	}

	// RelevanceChecked
	if !p.relevance.Matches(listing.Title, listing.Description) {
		log.Printf("Skipped non-enjoyment event: %s", listing.Title)
		summary.Skip(models.SkipReasonIrrelevant)
		return
	}

	// DateParsed: unparseable dates are an explicit rejection, never
	// silently replaced with the current instant
	startTime, err := parser.Parse(listing.DateAttr, listing.DateText, listing.TimeText, p.now())
	if err != nil {
		log.Printf("Skipped event with unparseable date %q: %s", listing.DateText, listing.Title)
		summary.Skip(models.SkipReasonParseError)
		return
	}

	// RecencyChecked
	if !p.recency.Upcoming(startTime, p.now()) {
		log.Printf("Skipped event outside admissible window: %s", listing.Title)
		summary.Skip(models.SkipReasonNotUpcoming)
		return
	}

	// DedupChecked: by permalink when the listing has one. The triple
	// check needs a venue id, so it runs right after venue resolution.
	permalink := strings.TrimSpace(listing.Permalink)
	if permalink != "" {
		dup, err := p.isDuplicatePermalink(ctx, permalink)
		if err != nil {
			log.Printf("Dedup lookup failed for %s: %v", listing.Title, err)
			summary.Skip(models.SkipReasonStoreError)
			return
		}
		if dup {
			log.Printf("Skipped duplicate event: %s", listing.Title)
			summary.Skip(models.SkipReasonDuplicate)
			return
		}
	}

	// VenueResolved
	venueID, created, err := p.resolveVenue(ctx, listing.VenueName, listing.Location)
	if err != nil {
		log.Printf("Venue resolution failed for %s: %v", listing.Title, err)
		summary.Skip(models.SkipReasonStoreError)
		return
	}
	if created {
		summary.NewVenues++
	}

	dedupKey := models.GenerateDedupKey(listing.Title, venueID, startTime)
	if permalink == "" {
		dup, err := p.isDuplicateTriple(ctx, dedupKey)
		if err != nil {
			log.Printf("Dedup lookup failed for %s: %v", listing.Title, err)
			summary.Skip(models.SkipReasonStoreError)
			return
		}
		if dup {
			log.Printf("Skipped duplicate event: %s", listing.Title)
			summary.Skip(models.SkipReasonDuplicate)
			return
		}
	}

	// Admitted: assemble the record and hand it to the store
	fees, free := ParseEntryFees(listing.FeeText)
	price := models.PricePaid
	if free {
		price = models.PriceFree
	}

	event := &models.Event{
		EventID:        models.NewEntityID(),
		Name:           listing.Title,
		VenueID:        venueID,
		VenueName:      listing.VenueName,
		Location:       listing.Location,
		StartTime:      startTime,
		Description:    listing.Description,
		Artists:        []string{},
		IsFreeEntry:    free,
		PriceIndicator: price,
		EntryFees:      fees,
		Permalink:      permalink,
		CreatedAt:      p.now(),
	}
	event.PosterURL = p.uploadPoster(ctx, listing.PosterURL, listing.Title)
	models.PopulateEventKeys(event)

	if !p.dryRun {
		if err := p.clients.Store.CreateEvent(ctx, event); err != nil {
			log.Printf("Failed to store event %s: %v", listing.Title, err)
			summary.Skip(models.SkipReasonStoreError)
			return
		}
	}

	if permalink != "" {
		p.seenPermalinks[models.GeneratePermalinkKey(permalink)] = true
	} else {
		p.seenTriples[dedupKey] = true
	}

	summary.AddedEvents++
	log.Printf("Added event: %s", listing.Title)
}

// isDuplicatePermalink checks the in-run set first, then the store
func (p *Pipeline) isDuplicatePermalink(ctx context.Context, permalink string) (bool, error) {
	key := models.GeneratePermalinkKey(permalink)
	if p.seenPermalinks[key] {
		return true, nil
	}
	existing, err := p.clients.Store.FindEventByPermalink(ctx, permalink)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// isDuplicateTriple checks the in-run set first, then the store
func (p *Pipeline) isDuplicateTriple(ctx context.Context, dedupKey string) (bool, error) {
	if p.seenTriples[dedupKey] {
		return true, nil
	}
	existing, err := p.clients.Store.FindEventByDedupKey(ctx, dedupKey)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// resolveVenue maps a (name, location) pair to a stable venue id, creating
// the venue on first sight. The in-run cache makes resolution idempotent
// within a run without extra lookups.
func (p *Pipeline) resolveVenue(ctx context.Context, name, location string) (string, bool, error) {
	key := models.GenerateVenueNaturalKey(name, location)
	if id, ok := p.venueCache[key]; ok {
		return id, false, nil
	}

	existing, err := p.clients.Store.FindVenueByNaturalKey(ctx, key)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		p.venueCache[key] = existing.VenueID
		return existing.VenueID, false, nil
	}

	venue := &models.Venue{
		VenueID:   models.NewEntityID(),
		Name:      strings.TrimSpace(name),
		Location:  strings.TrimSpace(location),
		Category:  models.DefaultVenueCategory,
		CreatedAt: p.now(),
	}
	models.PopulateVenueKeys(venue)

	if !p.dryRun {
		if err := p.clients.Store.CreateVenue(ctx, venue); err != nil {
			return "", false, err
		}
	}

	p.venueCache[key] = venue.VenueID
	return venue.VenueID, true, nil
}

// uploadPoster mirrors the listing's poster into the blob store and returns
// the public URL. Upload problems degrade to the original remote URL; image
// hosting is not part of the admit decision.
func (p *Pipeline) uploadPoster(ctx context.Context, posterURL, eventName string) string {
	if posterURL == "" || p.dryRun {
		return posterURL
	}
	if p.clients.Images == nil || p.clients.Blobs == nil {
		return posterURL
	}

	data, err := p.clients.Images.FetchImage(ctx, posterURL)
	if err != nil {
		log.Printf("Poster fetch failed for %s, keeping source URL: %v", eventName, err)
		return posterURL
	}

	publicURL, err := p.clients.Blobs.UploadImage(ctx, data, models.PosterKey(eventName))
	if err != nil {
		log.Printf("Poster upload failed for %s, keeping source URL: %v", eventName, err)
		return posterURL
	}

	return publicURL
}
