package models

import "time"

// Entity type constants for the events table
const (
	EntityTypeEvent = "EVENT"
	EntityTypeVenue = "VENUE"
)

// Sort key constant: every entity stores a single metadata item
const SortKeyMetadata = "METADATA"

// Price indicator constants
const (
	PriceFree = 0
	PricePaid = 1
)

// DefaultVenueCategory is assigned to venues created by the scraper.
// Venue categorization is curated manually after the fact.
const DefaultVenueCategory = "nightlife"

// RawListing holds the raw strings pulled out of one listing card before any
// normalization. All fields are optional; it exists only within a single
// extraction attempt and has no identity.
type RawListing struct {
	Title       string
	VenueName   string
	Location    string
	DateText    string
	DateAttr    string // machine-readable date attribute, when the source provides one
	TimeText    string
	PosterURL   string
	Description string
	FeeText     string
	Permalink   string
}

// Event represents a normalized event document as stored in DynamoDB
type Event struct {
	// Primary Keys
	PK string `json:"PK" dynamodbav:"PK"` // EVENT#{event_id}
	SK string `json:"SK" dynamodbav:"SK"` // METADATA

	EventID   string `json:"event_id" dynamodbav:"event_id"`
	Name      string `json:"name" dynamodbav:"name"`
	VenueID   string `json:"venue_id" dynamodbav:"venue_id"`
	VenueName string `json:"venue_name" dynamodbav:"venue_name"`
	Location  string `json:"location" dynamodbav:"location"`

	// StartTime is always a fully qualified UTC instant. Candidates whose
	// date text cannot be parsed are rejected upstream, never defaulted.
	StartTime time.Time `json:"start_time" dynamodbav:"start_time"`

	PosterURL   string   `json:"poster_image_url" dynamodbav:"poster_image_url"`
	Description string   `json:"description" dynamodbav:"description"`
	Artists     []string `json:"artists" dynamodbav:"artists"`

	IsFreeEntry    bool       `json:"is_free_entry" dynamodbav:"is_free_entry"`
	PriceIndicator int        `json:"price_indicator" dynamodbav:"price_indicator"` // 0 = free, 1 = paid
	EntryFees      []EntryFee `json:"entry_fees,omitempty" dynamodbav:"entry_fees,omitempty"`

	// Permalink is the source-specific detail URL, when the listing had one
	Permalink string `json:"permalink,omitempty" dynamodbav:"permalink,omitempty"`

	IsDeleted bool      `json:"is_deleted" dynamodbav:"is_deleted"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`

	// GSI Keys (computed fields for efficient querying)
	PermalinkKey string `json:"PermalinkKey,omitempty" dynamodbav:"PermalinkKey,omitempty"` // LINK#{permalink}
	DedupKey     string `json:"DedupKey,omitempty" dynamodbav:"DedupKey,omitempty"`         // EVENT#{norm name}#{venue_id}#{start RFC3339}
	VenueKey     string `json:"VenueKey,omitempty" dynamodbav:"VenueKey,omitempty"`         // VENUE#{venue_id}
}

// EntryFee is a single ticket tier parsed from a listing's fee text
type EntryFee struct {
	Name   string `json:"name" dynamodbav:"name"`
	Amount string `json:"amount" dynamodbav:"amount"`
}

// Venue represents a physical location where events take place. Venues are
// created lazily on first sight of a (name, location) pair and never updated
// or deleted by the scraper.
type Venue struct {
	// Primary Keys
	PK string `json:"PK" dynamodbav:"PK"` // VENUE#{venue_id}
	SK string `json:"SK" dynamodbav:"SK"` // METADATA

	VenueID     string `json:"venue_id" dynamodbav:"venue_id"`
	Name        string `json:"name" dynamodbav:"name"`
	Location    string `json:"location" dynamodbav:"location"`
	Description string `json:"description" dynamodbav:"description"`
	Category    string `json:"category" dynamodbav:"category"`

	Coordinates *Coordinates `json:"coordinates,omitempty" dynamodbav:"coordinates,omitempty"`

	IsDeleted bool      `json:"is_deleted" dynamodbav:"is_deleted"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`

	// NaturalKey is the lookup key for get-or-create:
	// VENUE#{norm name}#{norm location}
	NaturalKey string `json:"NaturalKey,omitempty" dynamodbav:"NaturalKey,omitempty"`
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Lat float64 `json:"lat" dynamodbav:"lat"`
	Lng float64 `json:"lng" dynamodbav:"lng"`
}
