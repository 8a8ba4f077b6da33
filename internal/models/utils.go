package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeString trims and lowercases a scraped string. Comparison keys
// (venue natural keys, dedup keys) are always built from normalized values.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeName collapses internal whitespace in addition to trimming and
// lowercasing, so "Beach  Party" and "beach party" compare equal.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NewEntityID generates a unique id for a new event or venue
func NewEntityID() string {
	return uuid.New().String()
}

// GenerateRunID creates a unique ID for a scraping run
func GenerateRunID(timestamp time.Time) string {
	input := fmt.Sprintf("run|%d", timestamp.Unix())
	hash := sha256.Sum256([]byte(input))
	return "run_" + hex.EncodeToString(hash[:])[:8]
}

// CreateEventPK builds the partition key for an event item
func CreateEventPK(eventID string) string {
	return EntityTypeEvent + "#" + eventID
}

// CreateVenuePK builds the partition key for a venue item
func CreateVenuePK(venueID string) string {
	return EntityTypeVenue + "#" + venueID
}

// GeneratePermalinkKey builds the GSI key used for dedup by source permalink
func GeneratePermalinkKey(permalink string) string {
	return "LINK#" + strings.TrimSpace(permalink)
}

// GenerateDedupKey builds the GSI key used for dedup by the
// (name, venue, start) triple. Name comparison is case- and
// whitespace-insensitive; the start instant is compared exactly.
func GenerateDedupKey(name, venueID string, start time.Time) string {
	return fmt.Sprintf("EVENT#%s#%s#%s", NormalizeName(name), venueID, start.UTC().Format(time.RFC3339))
}

// GenerateVenueNaturalKey builds the GSI key used for venue get-or-create
// lookup by normalized (name, location) pair
func GenerateVenueNaturalKey(name, location string) string {
	return fmt.Sprintf("VENUE#%s#%s", NormalizeString(name), NormalizeString(location))
}

// GenerateVenueKey builds the GSI key linking an event to its venue
func GenerateVenueKey(venueID string) string {
	return "VENUE#" + venueID
}

// PosterKey builds the blob-store path for an event's poster image
func PosterKey(eventName string) string {
	slug := strings.ReplaceAll(strings.TrimSpace(eventName), " ", "_")
	return fmt.Sprintf("events/%s/poster.jpg", slug)
}

// IsValidURL performs basic URL validation
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// PopulateEventKeys fills in the primary and GSI key fields before an event
// is written. The permalink key is only set when a permalink exists, so the
// sparse GSI never indexes permalink-less events.
func PopulateEventKeys(e *Event) {
	e.PK = CreateEventPK(e.EventID)
	e.SK = SortKeyMetadata
	if e.Permalink != "" {
		e.PermalinkKey = GeneratePermalinkKey(e.Permalink)
	}
	e.DedupKey = GenerateDedupKey(e.Name, e.VenueID, e.StartTime)
	e.VenueKey = GenerateVenueKey(e.VenueID)
}

// PopulateVenueKeys fills in the primary and natural key fields before a
// venue is written
func PopulateVenueKeys(v *Venue) {
	v.PK = CreateVenuePK(v.VenueID)
	v.SK = SortKeyMetadata
	v.NaturalKey = GenerateVenueNaturalKey(v.Name, v.Location)
}
