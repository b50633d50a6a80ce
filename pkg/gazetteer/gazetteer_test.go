package gazetteer

import (
	"errors"
	"strings"
	"testing"

	"climate/models"
)

func TestGazetteer_Resolve(t *testing.T) {
	g := FromEntries([]Entry{
		{Name: "Oakville Canada", Country: "Canada", Coordinates: models.Coordinates{Lat: 43.4675, Lon: -79.6877}},
		{Name: "Paris", Country: "France", Coordinates: models.Coordinates{Lat: 48.8567, Lon: 2.3522}},
	})

	tests := []struct {
		name    string
		query   string
		want    models.Coordinates
		wantErr error
	}{
		{name: "exact match", query: "Oakville Canada", want: models.Coordinates{Lat: 43.4675, Lon: -79.6877}},
		{name: "city with country suffix", query: "Paris France", want: models.Coordinates{Lat: 48.8567, Lon: 2.3522}},
		{name: "unknown city", query: "Atlantis", wantErr: ErrUnknownLocation},
		{name: "unknown city with country", query: "Gotham United States", wantErr: ErrUnknownLocation},
		{name: "case sensitive", query: "paris", wantErr: ErrUnknownLocation},
		{name: "country only", query: "Canada", wantErr: ErrUnknownLocation},
		{name: "country suffix is case insensitive", query: "Paris FRANCE", want: models.Coordinates{Lat: 48.8567, Lon: 2.3522}},
		{name: "city recorded under another country", query: "Paris Canada", wantErr: ErrUnknownLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Resolve(tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v; want %v", tt.query, err, tt.wantErr)
				}
				if got != (models.Coordinates{}) {
					t.Errorf("Resolve(%q) returned %v alongside an error", tt.query, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %v; want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestGazetteer_ResolveSameNameDifferentCountries(t *testing.T) {
	in := header +
		row("Oakville", "43.4675", "-79.6877", "Canada") +
		row("Oakville", "38.4700", "-90.3047", "United States")
	g, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		query string
		want  models.Coordinates
	}{
		{query: "Oakville Canada", want: models.Coordinates{Lat: 43.4675, Lon: -79.6877}},
		{query: "Oakville, Canada", want: models.Coordinates{Lat: 43.4675, Lon: -79.6877}},
		{query: "Oakville United States", want: models.Coordinates{Lat: 38.4700, Lon: -90.3047}},
	}
	for _, tt := range tests {
		got, err := g.Resolve(tt.query)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", tt.query, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v; want %v", tt.query, got, tt.want)
		}
	}

	if _, err := g.Resolve("Oakville Australia"); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("Resolve(Oakville Australia) error = %v; want ErrUnknownLocation", err)
	}
}

func TestGazetteer_NewHasNoCountries(t *testing.T) {
	g := New(map[string]models.Coordinates{"Oakville": {Lat: 43.4675, Lon: -79.6877}})
	if _, err := g.Resolve("Oakville Canada"); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("Resolve(Oakville Canada) error = %v; want ErrUnknownLocation", err)
	}
}

func TestGazetteer_ResolveCountryMessage(t *testing.T) {
	_, err := New(nil).Resolve("Canada")
	if err == nil || !strings.Contains(err.Error(), "names a country") {
		t.Fatalf("Resolve(Canada) error = %v; want a country hint", err)
	}
}

func TestGazetteer_LookupMissing(t *testing.T) {
	g := New(nil)
	if _, ok := g.Lookup("Null Island"); ok {
		t.Fatal("Lookup on empty gazetteer reported a hit")
	}
}

func TestGazetteer_NewCopiesEntries(t *testing.T) {
	src := map[string]models.Coordinates{"A": {Lat: 1, Lon: 1}}
	g := New(src)
	src["B"] = models.Coordinates{Lat: 2, Lon: 2}
	if g.Len() != 1 {
		t.Fatalf("Len() = %d after mutating source map; want 1", g.Len())
	}
	if names := g.Names(); len(names) != 1 || names[0] != "A" {
		t.Fatalf("Names() = %v; want [A]", names)
	}
}
