package search

import (
	"math"
	"sort"

	"github.com/pders01/nearby/internal/storage"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) int {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return int(math.Round(earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))))
}

// SortByDistance fills Distance relative to (lat, lon) and orders places nearest first.
func SortByDistance(places []*storage.Place, lat, lon float64) {
	for _, p := range places {
		p.Distance = DistanceMeters(lat, lon, p.Lat, p.Lon)
	}
	sort.SliceStable(places, func(i, j int) bool {
		return places[i].Distance < places[j].Distance
	})
}
