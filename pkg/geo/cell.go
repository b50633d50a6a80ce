package geo

import (
	geohash "github.com/TomiHiltunen/geohash-golang"

	"climate/models"
)

// CellPrecision is the geohash length used for event keys: roughly a
// 1.2km x 0.6km cell, finer than one grid step.
const CellPrecision = 6

// Geohash returns the geohash of c truncated to precision characters.
func Geohash(c models.Coordinates, precision int) string {
	gh := geohash.Encode(c.Lat, c.Lon)
	if precision > 0 && precision < len(gh) {
		return gh[:precision]
	}
	return gh
}
