package geo

import (
	"math"

	"climate/models"
)

// Equirectangular maps between raster pixels and geographic coordinates
// for a plate carrée image spanning the whole globe. Row 0 is the north
// pole, column 0 the antimeridian at -180°.
type Equirectangular struct {
	Width, Height int
}

func (p Equirectangular) halfExtents() (h, w float64) {
	return float64(p.Height) / 2, float64(p.Width) / 2
}

// ToPixel returns the nearest pixel for c. The result may fall one past the
// last row or column for coordinates exactly on the south pole or +180°.
func (p Equirectangular) ToPixel(c models.Coordinates) (row, col int) {
	h, w := p.halfExtents()
	row = int(math.Round(h - c.Lat/90*h))
	col = int(math.Round(c.Lon/180*w + w))
	return row, col
}

// ToCoordinates is the inverse of ToPixel.
func (p Equirectangular) ToCoordinates(row, col int) models.Coordinates {
	h, w := p.halfExtents()
	return models.Coordinates{
		Lat: (h - float64(row)) / h * 90,
		Lon: (float64(col) - w) / w * 180,
	}
}

// DegreesPerPixel reports the angular size of one pixel along each axis.
func (p Equirectangular) DegreesPerPixel() (lat, lon float64) {
	return 180 / float64(p.Height), 360 / float64(p.Width)
}
