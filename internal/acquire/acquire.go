// Package acquire resolves a location and gathers the data sets that describe
// it: one whole-globe thermal snapshot and a grid of current weather
// observations around the location. The thermal snapshot is then correlated
// with the location and the outcome optionally published as an event.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"climate/internal/keys"
	imodels "climate/internal/models"
	"climate/internal/pipeline"
	"climate/models"
	"climate/pkg/gazetteer"
	"climate/pkg/geo"
	"climate/pkg/thermal"
	"climate/pkg/transfer"
	"climate/pkg/weather"

	"github.com/google/uuid"
)

// Resolver maps a location name to coordinates. *gazetteer.Gazetteer
// implements it.
type Resolver interface {
	Resolve(name string) (models.Coordinates, error)
}

// Geocoder is consulted for names the Resolver does not know.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Location, error)
}

// Fetcher runs a batch of transfers unless their sink is already populated.
// *transfer.Scheduler implements it.
type Fetcher interface {
	FetchOnce(ctx context.Context, sink string, reqs []transfer.Request) (transfer.Tally, error)
}

// Publisher receives the acquisition event.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Options configure an Engine. Zero values select the defaults.
type Options struct {
	ThermalPath     string
	ThermalEndpoint string
	ThermalLayer    string
	ThermalWidth    int
	ThermalHeight   int
	Radius          int

	WeatherPath     string
	WeatherEndpoint string
	GridBudget      int
	// GridStep in degrees; zero derives it from GridBudget.
	GridStep float64

	// Now supplies the snapshot date.
	Now func() time.Time

	Geocoder  Geocoder
	Publisher Publisher
}

const DefaultGridBudget = 400

func (o *Options) setDefaults() {
	if o.ThermalPath == "" {
		o.ThermalPath = "thermalImage.png"
	}
	if o.ThermalEndpoint == "" {
		o.ThermalEndpoint = thermal.DefaultEndpoint
	}
	if o.ThermalLayer == "" {
		o.ThermalLayer = thermal.DefaultLayer
	}
	if o.ThermalWidth <= 0 {
		o.ThermalWidth = thermal.DefaultWidth
	}
	if o.ThermalHeight <= 0 {
		o.ThermalHeight = thermal.DefaultHeight
	}
	if o.Radius <= 0 {
		o.Radius = thermal.DefaultRadius
	}
	if o.WeatherPath == "" {
		o.WeatherPath = "weatherData.ndjson"
	}
	if o.WeatherEndpoint == "" {
		o.WeatherEndpoint = weather.DefaultEndpoint
	}
	if o.GridBudget <= 0 {
		o.GridBudget = DefaultGridBudget
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result is the outcome of one acquisition. Thermal is nil and ThermalErr
// set when no snapshot could be decoded; the acquisition still succeeds.
type Result struct {
	RunID       string
	Location    string
	Coordinates models.Coordinates
	Source      string
	Date        string

	Grid         geo.Grid
	ThermalTally transfer.Tally
	WeatherTally transfer.Tally
	Weather      weather.Summary

	Thermal    *thermal.Raster
	ThermalErr error
	Matched    []models.Coordinates

	StartedAt  time.Time
	FinishedAt time.Time
}

// Engine runs acquisitions. It is safe for sequential reuse; concurrent
// acquisitions would share the same sink files.
type Engine struct {
	resolver Resolver
	thermal  Fetcher
	weather  Fetcher
	opts     Options
	pipeline *pipeline.Pipeline[Result]
}

// New builds an Engine. thermalFetcher and weatherFetcher may be the same
// Fetcher; they are separate so the weather sink can carry a delimiter that
// must never be appended to the image.
func New(resolver Resolver, thermalFetcher, weatherFetcher Fetcher, opts Options) *Engine {
	opts.setDefaults()
	e := &Engine{
		resolver: resolver,
		thermal:  thermalFetcher,
		weather:  weatherFetcher,
		opts:     opts,
	}
	e.pipeline = pipeline.NewPipeline(
		pipeline.NewStage("resolve", e.resolve),
		pipeline.NewStage("fetch", e.fetchThermal, e.fetchWeather),
		pipeline.NewStage("correlate", e.correlate),
		pipeline.NewStage("publish", e.publish),
	)
	return e
}

// Acquire runs the whole acquisition for name. It fails when the location
// cannot be resolved or ctx is cancelled; individual transfer failures are
// only tallied.
func (e *Engine) Acquire(ctx context.Context, name string) (Result, error) {
	now := e.opts.Now()
	r := Result{
		RunID:     uuid.NewString(),
		Location:  name,
		Date:      now.Format(thermal.DateLayout),
		StartedAt: now,
	}

	if err := e.pipeline.Run(ctx, &r); err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			err = se.Err
		}
		return r, err
	}
	return r, nil
}

func (e *Engine) resolve(ctx context.Context, r *Result) error {
	c, err := e.resolver.Resolve(r.Location)
	if err == nil {
		r.Coordinates, r.Source = c, "gazetteer"
		log.Printf("Resolved %q to %v", r.Location, c)
		return nil
	}
	if e.opts.Geocoder == nil || !errors.Is(err, gazetteer.ErrUnknownLocation) {
		return err
	}

	loc, gerr := e.opts.Geocoder.Geocode(ctx, r.Location)
	if gerr != nil {
		return fmt.Errorf("%w (geocoder: %v)", err, gerr)
	}
	r.Coordinates, r.Source = loc.Coordinates, loc.Source
	log.Printf("Geocoded %q to %v", r.Location, loc.Coordinates)
	return nil
}

func (e *Engine) fetchThermal(ctx context.Context, r *Result) error {
	snapshot := thermal.SnapshotURL(e.opts.ThermalEndpoint, e.opts.ThermalLayer, r.StartedAt, e.opts.ThermalWidth, e.opts.ThermalHeight)

	tally, err := e.thermal.FetchOnce(ctx, e.opts.ThermalPath, []transfer.Request{{URL: snapshot, Sink: e.opts.ThermalPath}})
	r.ThermalTally = tally
	if err != nil {
		return fmt.Errorf("thermal fetch: %w", err)
	}
	log.Printf("thermal fetch finished: %v", tally)
	return nil
}

func (e *Engine) fetchWeather(ctx context.Context, r *Result) error {
	step := e.opts.GridStep
	if step <= 0 {
		step = geo.DefaultStep(e.opts.GridBudget)
	}
	r.Grid = geo.NewGrid(r.Coordinates, e.opts.GridBudget, step)
	reqs := weather.Requests(e.opts.WeatherEndpoint, r.Grid, e.opts.WeatherPath)

	tally, err := e.weather.FetchOnce(ctx, e.opts.WeatherPath, reqs)
	r.WeatherTally = tally
	if err != nil {
		return fmt.Errorf("weather fetch: %w", err)
	}
	if tally.Skipped {
		log.Printf("weather fetch skipped, %s already present", e.opts.WeatherPath)
	} else {
		log.Printf("weather fetch finished: ok=%d failed=%d", tally.Ok, tally.Failed)
	}

	obs, skipped, err := weather.ReadObservations(e.opts.WeatherPath)
	if err != nil {
		log.Printf("Could not read weather observations: %v", err)
		return nil
	}
	r.Weather = weather.Summarize(obs)
	if skipped > 0 {
		log.Printf("Ignored %d unreadable weather records", skipped)
	}
	return nil
}

func (e *Engine) correlate(_ context.Context, r *Result) error {
	raster, err := thermal.Load(e.opts.ThermalPath)
	if err != nil {
		r.ThermalErr = err
		log.Printf("Continuing without thermal data: %v", err)
		return nil
	}

	matched, err := thermal.Correlator{Radius: e.opts.Radius}.Correlate(raster, r.Coordinates)
	if err != nil {
		r.ThermalErr = err
		log.Printf("Continuing without thermal data: %v", err)
		return nil
	}
	r.Thermal, r.Matched = raster, matched
	log.Printf("Correlated %d thermal pixels around %v", len(matched), r.Coordinates)
	return nil
}

func (e *Engine) publish(ctx context.Context, r *Result) error {
	r.FinishedAt = e.opts.Now()
	if e.opts.Publisher == nil {
		return nil
	}

	ev := r.Event()
	if err := e.opts.Publisher.PublishJSON(ctx, keys.Event(ev), ev); err != nil {
		log.Printf("Failed to publish acquisition event %s: %v", ev.RunID, err)
	}
	return nil
}

// Event summarises r for publication.
func (r *Result) Event() imodels.AcquisitionEvent {
	ev := imodels.AcquisitionEvent{
		RunID:       r.RunID,
		Location:    r.Location,
		Coordinates: r.Coordinates,
		Geohash:     geo.Geohash(r.Coordinates, geo.CellPrecision),
		Date:        r.Date,
		Thermal:     summary(r.ThermalTally),
		Weather:     summary(r.WeatherTally),
		Matched:     len(r.Matched),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
	if r.ThermalErr != nil {
		ev.ThermalErr = r.ThermalErr.Error()
	}
	return ev
}

func summary(t transfer.Tally) imodels.TallySummary {
	return imodels.TallySummary{Issued: t.Issued, Ok: t.Ok, Failed: t.Failed, Skipped: t.Skipped}
}
