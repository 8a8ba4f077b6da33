package pipeline

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"yovibe-events-scraper/internal/models"
	"yovibe-events-scraper/internal/sources"
)

// ExtractListing applies a source's selector map to one listing card and
// returns the raw field strings. Title, venue, location and date are
// required; desc, fee, time and link selectors are optional and their
// absence is tolerated.
func ExtractListing(card *goquery.Selection, sel sources.SelectorMap) (models.RawListing, error) {
	var listing models.RawListing

	listing.Title = textOf(card, sel.Title)
	if listing.Title == "" {
		return listing, fmt.Errorf("missing title element %q", sel.Title)
	}

	listing.VenueName = textOf(card, sel.Venue)
	if listing.VenueName == "" {
		return listing, fmt.Errorf("missing venue element %q", sel.Venue)
	}

	listing.Location = textOf(card, sel.Location)
	if listing.Location == "" {
		return listing, fmt.Errorf("missing location element %q", sel.Location)
	}

	listing.DateText = textOf(card, sel.Date)
	if sel.DateAttr != "" {
		listing.DateAttr = attrOf(card, sel.Date, sel.DateAttr)
	}
	if listing.DateText == "" && listing.DateAttr == "" {
		return listing, fmt.Errorf("missing date element %q", sel.Date)
	}

	listing.TimeText = textOf(card, sel.Time)
	listing.PosterURL = attrOf(card, sel.Poster, "src")
	listing.Description = textOf(card, sel.Desc)
	listing.FeeText = textOf(card, sel.Fee)
	listing.Permalink = attrOf(card, sel.Link, "href")

	return listing, nil
}

// textOf returns the trimmed inner text of the first element matching the
// selector, or "" when the selector is empty or matches nothing
func textOf(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

// attrOf returns the named attribute of the first element matching the
// selector, or "" when absent
func attrOf(card *goquery.Selection, selector, attr string) string {
	if selector == "" {
		return ""
	}
	val, _ := card.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}
