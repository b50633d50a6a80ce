package models

import "fmt"

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

type Location struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Source      string      `json:"source,omitempty"` // e.g., "gazetteer", "nominatim"
}
