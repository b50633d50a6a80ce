// Package weather builds current-conditions requests for a sampling grid and
// reads back the newline-delimited responses they produce.
package weather

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"

	"climate/models"
	"climate/pkg/geo"
	"climate/pkg/transfer"
)

const DefaultEndpoint = "https://api.open-meteo.com/v1/forecast"

// CurrentFields are the current-condition variables requested per cell.
var CurrentFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"apparent_temperature",
	"precipitation",
	"cloud_cover",
	"wind_speed_10m",
}

// ObservationURL returns the forecast request for a single coordinate.
func ObservationURL(endpoint string, c models.Coordinates) string {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", c.Lat))
	params.Set("longitude", fmt.Sprintf("%.4f", c.Lon))
	params.Set("current", strings.Join(CurrentFields, ","))
	return fmt.Sprintf("%s?%s", endpoint, params.Encode())
}

// Requests maps every grid cell to a transfer appending to sink.
func Requests(endpoint string, g geo.Grid, sink string) []transfer.Request {
	reqs := make([]transfer.Request, 0, g.Len())
	for _, cell := range g.Cells {
		reqs = append(reqs, transfer.Request{URL: ObservationURL(endpoint, cell.Coordinates), Sink: sink})
	}
	return reqs
}

// Observation is the subset of a forecast response kept for summaries.
type Observation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		CloudCover          float64 `json:"cloud_cover"`
		WindSpeed           float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// ReadObservations decodes one observation per non-empty line of path.
// Lines that are not valid observations are counted in skipped.
func ReadObservations(path string) (obs []Observation, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var o Observation
		if err := json.Unmarshal([]byte(line), &o); err != nil {
			skipped++
			continue
		}
		obs = append(obs, o)
	}
	return obs, skipped, sc.Err()
}

// Summary holds temperature statistics over a set of observations.
type Summary struct {
	Count      int
	MinC, MaxC float64
	MeanC      float64
}

func Summarize(obs []Observation) Summary {
	if len(obs) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(obs), MinC: math.Inf(1), MaxC: math.Inf(-1)}
	var sum float64
	for _, o := range obs {
		t := o.Current.Temperature
		sum += t
		s.MinC = math.Min(s.MinC, t)
		s.MaxC = math.Max(s.MaxC, t)
	}
	s.MeanC = sum / float64(len(obs))
	return s
}
