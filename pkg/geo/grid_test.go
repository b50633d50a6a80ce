package geo

import (
	"math"
	"testing"

	"climate/models"
)

const eps = 1e-9

func TestGridRootAndStep(t *testing.T) {
	cases := []struct {
		budget    int
		wantRoot  int
		wantCells int
		wantStep  float64
	}{
		{budget: 400, wantRoot: 10, wantCells: 400, wantStep: 0.1},
		{budget: 401, wantRoot: 10, wantCells: 400, wantStep: 0.1},
		{budget: 399, wantRoot: 9, wantCells: 324, wantStep: 1.0 / 9},
		{budget: 4, wantRoot: 1, wantCells: 4, wantStep: 1},
		{budget: 3, wantRoot: 0, wantCells: 0, wantStep: 0},
		{budget: 0, wantRoot: 0, wantCells: 0, wantStep: 0},
	}

	for _, tc := range cases {
		if got := GridRoot(tc.budget); got != tc.wantRoot {
			t.Errorf("GridRoot(%d) = %d; want %d", tc.budget, got, tc.wantRoot)
		}
		if got := DefaultStep(tc.budget); math.Abs(got-tc.wantStep) > eps {
			t.Errorf("DefaultStep(%d) = %v; want %v", tc.budget, got, tc.wantStep)
		}
		g := NewGrid(models.Coordinates{}, tc.budget, 0)
		if g.Len() != tc.wantCells {
			t.Errorf("NewGrid(budget=%d).Len() = %d; want %d", tc.budget, g.Len(), tc.wantCells)
		}
		if want := (2 * tc.wantRoot) * (2 * tc.wantRoot); g.Len() != want {
			t.Errorf("budget %d: %d cells, not (2*root)^2 = %d", tc.budget, g.Len(), want)
		}
	}
}

func TestNewGrid_OakvilleNeighbour(t *testing.T) {
	center := models.Coordinates{Lat: 43.4675, Lon: -79.6877}
	g := NewGrid(center, 400, 0.1)

	cell, ok := g.At(-1, 1)
	if !ok {
		t.Fatal("offset (-1, 1) missing from grid")
	}
	want := models.Coordinates{Lat: 43.3675, Lon: -79.5877}
	if math.Abs(cell.Coordinates.Lat-want.Lat) > eps || math.Abs(cell.Coordinates.Lon-want.Lon) > eps {
		t.Fatalf("cell (-1, 1) = %v; want %v", cell.Coordinates, want)
	}

	found := false
	for _, c := range g.Cells {
		if math.Abs(c.Coordinates.Lat-want.Lat) < eps && math.Abs(c.Coordinates.Lon-want.Lon) < eps {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("grid does not contain %v", want)
	}
}

func TestNewGrid_RowMajorOrder(t *testing.T) {
	g := NewGrid(models.Coordinates{Lat: 10, Lon: 20}, 16, 1)
	if g.Root != 2 || g.Len() != 16 {
		t.Fatalf("root=%d len=%d; want 2 and 16", g.Root, g.Len())
	}
	first, last := g.Cells[0], g.Cells[len(g.Cells)-1]
	if first.Row != -2 || first.Col != -2 {
		t.Errorf("first cell offset = (%d, %d); want (-2, -2)", first.Row, first.Col)
	}
	if last.Row != 1 || last.Col != 1 {
		t.Errorf("last cell offset = (%d, %d); want (1, 1)", last.Row, last.Col)
	}
	if g.Cells[1].Row != -2 || g.Cells[1].Col != -1 {
		t.Errorf("second cell offset = (%d, %d); want (-2, -1)", g.Cells[1].Row, g.Cells[1].Col)
	}
	if first.Coordinates != (models.Coordinates{Lat: 8, Lon: 18}) {
		t.Errorf("first cell = %v; want 8,18", first.Coordinates)
	}
	if _, ok := g.At(2, 0); ok {
		t.Error("At(2, 0) should be outside a root-2 grid")
	}
}

func TestNewGrid_WrapsAndClamps(t *testing.T) {
	g := NewGrid(models.Coordinates{Lat: 89.95, Lon: 179.95}, 400, 0.1)
	for _, c := range g.Cells {
		if !c.Coordinates.Valid() {
			t.Fatalf("cell (%d, %d) out of range: %v", c.Row, c.Col, c.Coordinates)
		}
	}
	cell, _ := g.At(0, 1)
	if math.Abs(cell.Coordinates.Lon-(-179.95)) > 1e-6 {
		t.Errorf("wrapped longitude = %v; want -179.95", cell.Coordinates.Lon)
	}
	cell, _ = g.At(1, 0)
	if cell.Coordinates.Lat != 90 {
		t.Errorf("clamped latitude = %v; want 90", cell.Coordinates.Lat)
	}
}
