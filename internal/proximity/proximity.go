// Package proximity answers filter, pagination and nearest-location queries
// over an immutable snapshot. Every function is pure.
package proximity

import (
	"errors"
	"fmt"
	"math"

	"dropoff-locator/internal/models"
)

// EarthRadiusMiles is the mean Earth radius used by Haversine.
const EarthRadiusMiles = 3959.0

// ErrEmptySnapshot is returned by Nearest when there is nothing to search.
var ErrEmptySnapshot = errors.New("snapshot has no locations")

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for near-antipodal points.
	a = min(max(a, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// FilterByCategory returns the records of the given category in snapshot order.
// CategoryAll returns every record.
func FilterByCategory(snapshot models.Snapshot, category models.Category) []models.LocationRecord {
	if category == models.CategoryAll {
		return snapshot.Records()
	}
	out := []models.LocationRecord{}
	for i := 0; i < snapshot.Len(); i++ {
		if rec := snapshot.At(i); rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}

// Nearest finds the record closest to point. Ties go to the earliest record.
// Distances are compared unrounded; the result carries the distance rounded
// to one decimal place. Records without a finite distance are never returned.
func Nearest(snapshot models.Snapshot, point models.QueryPoint) (models.NearestResult, error) {
	if err := point.Validate(); err != nil {
		return models.NearestResult{}, err
	}
	if snapshot.Len() == 0 {
		return models.NearestResult{}, ErrEmptySnapshot
	}

	best := -1
	bestDist := math.Inf(1)
	for i := 0; i < snapshot.Len(); i++ {
		rec := snapshot.At(i)
		d := Haversine(point.Latitude, point.Longitude, rec.Latitude, rec.Longitude)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return models.NearestResult{}, fmt.Errorf("%w: no record has finite coordinates", ErrEmptySnapshot)
	}

	return models.NearestResult{
		Location:      snapshot.At(best),
		DistanceMiles: RoundMiles(bestDist),
	}, nil
}

// RoundMiles rounds a distance to one decimal place for display.
func RoundMiles(d float64) float64 {
	return math.Round(d*10) / 10
}

// CountByCategory tallies records per category. Every category is present in the result.
func CountByCategory(snapshot models.Snapshot) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}
	for i := 0; i < snapshot.Len(); i++ {
		counts[snapshot.At(i).Category]++
	}
	return counts
}
