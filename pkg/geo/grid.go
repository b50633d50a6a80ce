package geo

import (
	"math"

	"climate/models"
)

// Cell is one sample of a Grid. Row and Col are the lattice offsets from
// the grid center, in steps.
type Cell struct {
	Row, Col    int
	Coordinates models.Coordinates
}

// Grid is a square lattice of sample coordinates around a center point.
type Grid struct {
	Center models.Coordinates
	Root   int
	Step   float64
	Cells  []Cell
}

// GridRoot returns floor(sqrt(budget)/2), the number of lattice steps on
// each side of the center.
func GridRoot(budget int) int {
	if budget <= 0 {
		return 0
	}
	return int(math.Floor(math.Sqrt(float64(budget)) / 2))
}

// DefaultStep is the per-axis spacing used when none is configured: one
// degree spread over the lattice half-width.
func DefaultStep(budget int) float64 {
	root := GridRoot(budget)
	if root == 0 {
		return 0
	}
	return 1.0 / float64(root)
}

// NewGrid lays out (2*root)^2 cells in row-major order with offsets in
// [-root, root) on both axes. A non-positive step selects DefaultStep.
// Latitudes are clamped to the poles and longitudes wrapped into [-180, 180].
func NewGrid(center models.Coordinates, budget int, step float64) Grid {
	root := GridRoot(budget)
	if step <= 0 {
		step = DefaultStep(budget)
	}
	g := Grid{Center: center, Root: root, Step: step}
	if root == 0 {
		return g
	}

	g.Cells = make([]Cell, 0, 4*root*root)
	for i := -root; i < root; i++ {
		for j := -root; j < root; j++ {
			g.Cells = append(g.Cells, Cell{
				Row: i,
				Col: j,
				Coordinates: models.Coordinates{
					Lat: clampLat(center.Lat + float64(i)*step),
					Lon: wrapLon(center.Lon + float64(j)*step),
				},
			})
		}
	}
	return g
}

// Len returns the number of cells in the grid.
func (g Grid) Len() int { return len(g.Cells) }

// At returns the cell at the given lattice offset.
func (g Grid) At(row, col int) (Cell, bool) {
	if row < -g.Root || row >= g.Root || col < -g.Root || col >= g.Root {
		return Cell{}, false
	}
	side := 2 * g.Root
	return g.Cells[(row+g.Root)*side+(col+g.Root)], true
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
