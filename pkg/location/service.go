// Package location resolves free-form place names through Nominatim. It is
// the fallback for names the gazetteer does not know.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"climate/models"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrNoResults is returned when Nominatim has no match for the query.
var ErrNoResults = errors.New("no geocoding results")

// NominatimResponse is shaped for the search API response.
type NominatimResponse []struct {
	PlaceID     int64   `json:"place_id"`
	OsmType     string  `json:"osm_type"`
	OsmID       int64   `json:"osm_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient returns a geocoder. Nominatim's usage policy requires an
// identifying user agent.
func NewClient(httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: DefaultBaseURL, userAgent: userAgent}
}

// Geocode looks up query and returns the best match.
func (c *Client) Geocode(ctx context.Context, query string) (models.Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	u := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Location{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Location{}, fmt.Errorf("geocode %q: unexpected status: %s", query, resp.Status)
	}

	var results NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(results) == 0 {
		return models.Location{}, fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode %q: bad latitude %q", query, first.Lat)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode %q: bad longitude %q", query, first.Lon)
	}
	coords := models.Coordinates{Lat: lat, Lon: lon}
	if !coords.Valid() {
		return models.Location{}, fmt.Errorf("geocode %q: coordinate %v out of range", query, coords)
	}

	return models.Location{Name: query, Coordinates: coords, Source: "nominatim"}, nil
}
