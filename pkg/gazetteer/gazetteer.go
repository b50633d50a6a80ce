package gazetteer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"climate/models"
	"climate/pkg/geo"
)

// Entry is one gazetteer row. Country may be empty when the source does not
// record it.
type Entry struct {
	Name    string
	Country string
	models.Coordinates
}

type placeKey struct {
	name    string
	country string
}

// Gazetteer maps city display names to coordinates. It is read-only once
// built and safe for concurrent use.
type Gazetteer struct {
	entries map[string]models.Coordinates
	// byCountry keeps every row by name and lower-cased country, so
	// same-named cities in different countries stay distinct.
	byCountry map[placeKey]models.Coordinates
}

// New returns a gazetteer holding a copy of entries. No country is recorded
// for them, so country-qualified lookups only match exact names.
func New(entries map[string]models.Coordinates) *Gazetteer {
	g := newGazetteer(len(entries))
	maps.Copy(g.entries, entries)
	return g
}

// FromEntries builds a gazetteer from rows in order. A later row with the
// same name replaces an earlier one for exact lookups.
func FromEntries(entries []Entry) *Gazetteer {
	g := newGazetteer(len(entries))
	for _, e := range entries {
		g.add(e)
	}
	return g
}

func newGazetteer(size int) *Gazetteer {
	return &Gazetteer{
		entries:   make(map[string]models.Coordinates, size),
		byCountry: make(map[placeKey]models.Coordinates, size),
	}
}

func (g *Gazetteer) add(e Entry) {
	g.entries[e.Name] = e.Coordinates
	if e.Country != "" {
		g.byCountry[placeKey{name: e.Name, country: strings.ToLower(e.Country)}] = e.Coordinates
	}
}

// Lookup returns the coordinates recorded for name exactly as spelled.
func (g *Gazetteer) Lookup(name string) (models.Coordinates, bool) {
	c, ok := g.entries[name]
	return c, ok
}

// Resolve looks name up exactly and, failing that, retries with the city
// part of a "<city> <country>" string. The retry only matches a row recorded
// under that same country. Absent names return an error wrapping
// ErrUnknownLocation.
func (g *Gazetteer) Resolve(name string) (models.Coordinates, error) {
	if c, ok := g.Lookup(name); ok {
		return c, nil
	}
	if city, country, ok := geo.SplitCountry(name); ok {
		if c, ok := g.byCountry[placeKey{name: city, country: strings.ToLower(country)}]; ok {
			return c, nil
		}
	}
	if geo.IsCountry(name) {
		return models.Coordinates{}, fmt.Errorf("%w: %q names a country, not a city", ErrUnknownLocation, name)
	}
	return models.Coordinates{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
}

func (g *Gazetteer) Len() int { return len(g.entries) }

// Names returns the entry names in sorted order.
func (g *Gazetteer) Names() []string {
	return slices.Sorted(maps.Keys(g.entries))
}
