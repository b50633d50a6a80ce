package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"climate/internal/config"
	"climate/internal/metrics"
	"climate/internal/storage"
	"climate/pkg/gazetteer"
	"climate/pkg/kafkaclient"
	"climate/pkg/location"
	"climate/pkg/transfer"
)

// Service is an Engine together with the resources it owns.
type Service struct {
	*Engine
	Gazetteer *gazetteer.Gazetteer
	producer  *kafkaclient.Producer
}

// Acquire runs Engine.Acquire and records its outcome in the metrics.
func (s *Service) Acquire(ctx context.Context, name string) (Result, error) {
	res, err := s.Engine.Acquire(ctx, name)
	metrics.Acquisition(outcomeLabel(err), len(res.Matched))
	return res, err
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gazetteer.ErrUnknownLocation):
		return "unknown_location"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}

// Locations lists the gazetteer entries in sorted order.
func (s *Service) Locations() []string {
	return s.Gazetteer.Names()
}

// Close releases the event producer, if any.
func (s *Service) Close() error {
	if s.producer == nil {
		return nil
	}
	return s.producer.Close()
}

// NewService wires an Engine from cfg: it makes sure the gazetteer is
// available locally, loads it, and sets up transfers, geocoding and event
// publishing as configured.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg.Gazetteer.Bucket != "" {
		if err := fetchGazetteer(ctx, cfg.Gazetteer); err != nil {
			return nil, err
		}
	}

	gz, err := gazetteer.Load(cfg.Gazetteer.Path)
	if err != nil {
		return nil, fmt.Errorf("loading gazetteer: %w", err)
	}
	log.Printf("Gazetteer ready with %d locations", gz.Len())

	client := &http.Client{Timeout: cfg.Transfer.RequestTimeout}
	thermalFetcher := transfer.NewScheduler(client, transfer.Options{
		MaxInFlight:  1,
		PollInterval: cfg.Transfer.PollInterval,
		UserAgent:    cfg.Transfer.UserAgent,
		ContentType:  "image/",
		Observe:      metrics.TransferObserver("thermal"),
	})
	weatherFetcher := transfer.NewScheduler(client, transfer.Options{
		MaxInFlight:  cfg.Transfer.MaxInFlight,
		PollInterval: cfg.Transfer.PollInterval,
		UserAgent:    cfg.Transfer.UserAgent,
		Delimiter:    []byte("\n"),
		Observe:      metrics.TransferObserver("weather"),
	})

	opts := Options{
		ThermalPath:     cfg.Thermal.Path,
		ThermalEndpoint: cfg.Thermal.Endpoint,
		ThermalLayer:    cfg.Thermal.Layer,
		ThermalWidth:    cfg.Thermal.Width,
		ThermalHeight:   cfg.Thermal.Height,
		Radius:          cfg.Thermal.Radius,
		WeatherPath:     cfg.Weather.Path,
		WeatherEndpoint: cfg.Weather.Endpoint,
		GridBudget:      cfg.Weather.GridBudget,
		GridStep:        cfg.Weather.GridStep,
	}
	if cfg.GeocoderFallback {
		opts.Geocoder = location.NewClient(client, cfg.Transfer.UserAgent)
	}

	svc := &Service{Gazetteer: gz}
	if cfg.Kafka.Enabled() {
		svc.producer, err = kafkaclient.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		opts.Publisher = svc.producer
		log.Printf("Publishing acquisition events to %s on %s", cfg.Kafka.Topic, cfg.Kafka.Broker)
	}

	svc.Engine = New(gz, thermalFetcher, weatherFetcher, opts)
	return svc, nil
}

func fetchGazetteer(ctx context.Context, gc config.GazetteerConfig) error {
	s3, err := storage.NewS3Service(gc.MinIO.Endpoint, gc.MinIO.AccessKey, gc.MinIO.SecretKey, gc.MinIO.UseSSL)
	if err != nil {
		return err
	}
	_, err = s3.EnsureLocal(ctx, gc.Bucket, gc.Object, gc.Path)
	if errors.Is(err, storage.ErrObjectNotFound) {
		log.Printf("Gazetteer object missing from storage: %v", err)
		return nil
	}
	return err
}
