package thermal

import (
	"climate/models"
	"climate/pkg/geo"
)

// Correlator marks the pixels around a target coordinate.
type Correlator struct {
	// Radius is the exclusive pixel distance from the target pixel.
	Radius int
}

// Correlate finds every pixel whose distance from the pixel of target is
// below Radius, overwrites it with opaque white and returns the coordinates
// of the matched pixels in row-major order. Only the rows and columns of the
// disc's bounding box are visited; the result equals a full raster scan.
func (c Correlator) Correlate(r *Raster, target models.Coordinates) ([]models.Coordinates, error) {
	if r == nil || len(r.Pix) < r.Width*r.Height*r.Channels {
		return nil, ErrNoThermalData
	}
	proj := geo.Equirectangular{Width: r.Width, Height: r.Height}
	tr, tc := proj.ToPixel(target)
	rad := c.Radius
	limit := rad * rad

	var matched []models.Coordinates
	for row := max(0, tr-rad); row <= min(r.Height-1, tr+rad); row++ {
		for col := max(0, tc-rad); col <= min(r.Width-1, tc+rad); col++ {
			dr, dc := row-tr, col-tc
			if dr*dr+dc*dc >= limit {
				continue
			}
			matched = append(matched, proj.ToCoordinates(row, col))
			px := r.Pix[r.Offset(row, col) : r.Offset(row, col)+r.Channels]
			for i := range px {
				px[i] = 0xff
			}
		}
	}
	return matched, nil
}
