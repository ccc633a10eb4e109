package models

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// ErrInvalidQueryPoint is returned when a user position is missing, non-finite or out of range.
var ErrInvalidQueryPoint = errors.New("invalid query point")

// ErrUnknownCategory is returned when a category filter value is not recognised.
var ErrUnknownCategory = errors.New("unknown category")

// Category classifies a drop-off location.
type Category string

const (
	CategoryBin      Category = "bin"
	CategoryGoodwill Category = "goodwill"
	CategoryThrift   Category = "thrift"
	CategoryOther    Category = "other"

	// CategoryAll is a filter sentinel, never a record category.
	CategoryAll Category = "all"
)

// Categories lists every record category in display order.
var Categories = []Category{CategoryBin, CategoryGoodwill, CategoryThrift, CategoryOther}

// ParseCategory maps a raw sheet value onto a category. Unrecognised labels become CategoryOther.
func ParseCategory(raw string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryBin, CategoryGoodwill, CategoryThrift:
		return c
	default:
		return CategoryOther
	}
}

// ParseCategoryFilter parses a filter value supplied by a caller. An empty value means CategoryAll.
func ParseCategoryFilter(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" || c == CategoryAll {
		return CategoryAll, nil
	}
	if slices.Contains(Categories, c) {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}

// AcceptancePolicy describes whether a site takes donations, buys goods, both or neither.
type AcceptancePolicy string

const (
	PolicyDonationOnly AcceptancePolicy = "donation_only"
	PolicyBuyOnly      AcceptancePolicy = "buy_only"
	PolicyBoth         AcceptancePolicy = "both"
	PolicyNeither      AcceptancePolicy = "neither"
	PolicyUnknown      AcceptancePolicy = "unknown"
)

var policyAliases = map[string]AcceptancePolicy{
	"donation_only":    PolicyDonationOnly,
	"donations_only":   PolicyDonationOnly,
	"donation":         PolicyDonationOnly,
	"donations":        PolicyDonationOnly,
	"donate":           PolicyDonationOnly,
	"buy_only":         PolicyBuyOnly,
	"buy":              PolicyBuyOnly,
	"buys":             PolicyBuyOnly,
	"buying":           PolicyBuyOnly,
	"both":             PolicyBoth,
	"donate_and_buy":   PolicyBoth,
	"donation_and_buy": PolicyBoth,
	"buy_and_donate":   PolicyBoth,
	"neither":          PolicyNeither,
	"none":             PolicyNeither,
	"no":               PolicyNeither,
}

// ParseAcceptancePolicy normalizes a raw policy cell. Anything unrecognised is PolicyUnknown.
func ParseAcceptancePolicy(raw string) AcceptancePolicy {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if p, ok := policyAliases[key]; ok {
		return p
	}
	return PolicyUnknown
}

// LocationRecord represents a single drop-off site taken from the published sheet.
type LocationRecord struct {
	ID               string           `json:"id" yaml:"id"`
	Category         Category         `json:"category" yaml:"category"`
	Name             string           `json:"name" yaml:"name"`
	Address          string           `json:"address" yaml:"address"`
	City             string           `json:"city" yaml:"city"`
	State            string           `json:"state" yaml:"state"`
	PostalCode       string           `json:"postal_code" yaml:"postal_code"`
	Latitude         float64          `json:"latitude" yaml:"latitude"`
	Longitude        float64          `json:"longitude" yaml:"longitude"`
	Website          string           `json:"website" yaml:"website"`
	AcceptancePolicy AcceptancePolicy `json:"acceptance_policy" yaml:"acceptance_policy"`
}

// GeohashPrecision is the geohash length attached to locations shown to users.
const GeohashPrecision = 7

// Geohash encodes the record's coordinates at the given precision.
func (l LocationRecord) Geohash(precision int) string {
	return geohash.EncodeWithPrecision(l.Latitude, l.Longitude, precision)
}

// Snapshot is an immutable, ordered set of records produced by one ingestion run.
type Snapshot struct {
	records  []LocationRecord
	loadedAt time.Time
}

// NewSnapshot copies records into a new snapshot.
func NewSnapshot(records []LocationRecord, loadedAt time.Time) Snapshot {
	return Snapshot{records: slices.Clone(records), loadedAt: loadedAt}
}

// Len returns the number of records.
func (s Snapshot) Len() int { return len(s.records) }

// At returns the i-th record.
func (s Snapshot) At(i int) LocationRecord { return s.records[i] }

// Records returns a copy of the records in snapshot order.
func (s Snapshot) Records() []LocationRecord {
	if len(s.records) == 0 {
		return []LocationRecord{}
	}
	return slices.Clone(s.records)
}

// LoadedAt reports when the snapshot was ingested.
func (s Snapshot) LoadedAt() time.Time { return s.loadedAt }

// QueryPoint is the user's position for a nearest-location request.
type QueryPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects non-finite or out-of-range coordinates.
func (p QueryPoint) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidQueryPoint)
	}
	if !s2.LatLngFromDegrees(p.Latitude, p.Longitude).IsValid() {
		return fmt.Errorf("%w: (%g, %g) out of range", ErrInvalidQueryPoint, p.Latitude, p.Longitude)
	}
	return nil
}

// NearestResult pairs the closest record with its distance, rounded to one decimal place.
type NearestResult struct {
	Location      LocationRecord `json:"location" yaml:"location"`
	DistanceMiles float64        `json:"distance_miles" yaml:"distance_miles"`
}

// Diagnostic describes a row that was left out of a snapshot.
type Diagnostic struct {
	Row    int    `json:"row" yaml:"row"`
	Reason string `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}
