package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"climate/internal/acquire"
	"climate/internal/config"
	"climate/internal/env"
	"climate/internal/metrics"
	"climate/internal/models"
	"climate/internal/service"
	"climate/pkg/gazetteer"
	"climate/pkg/graceful"
	"climate/pkg/kafkaclient"
)

func main() {
	env.LoadEnv()
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Kafka.Broker == "" || cfg.Kafka.RequestTopic == "" {
		log.Fatalf("KAFKA_BROKER and KAFKA_REQUEST_TOPIC must be set")
	}

	svc, err := acquire.NewService(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up acquisition: %v", err)
	}
	defer svc.Close()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", cfg.Kafka.Broker, cfg.Kafka.RequestTopic, cfg.Kafka.GroupID)
	consumer, err := kafkaclient.NewKafkaConsumer(cfg.Kafka.RequestTopic, cfg.Kafka.GroupID, cfg.Kafka.Broker)
	if err != nil {
		log.Fatalf("Failed to create kafka consumer %v", err)
	}
	consumer.StartConsuming(ctx)

	requests := service.NewIterator(consumer, service.JSONDecoder[models.AcquisitionRequest]())
	for d := range requests.Objects(ctx) {
		res, err := svc.Acquire(ctx, d.Data.Location)
		switch {
		case errors.Is(err, context.Canceled):
			// leave the offset uncommitted so the request is redelivered
			log.Printf("Acquisition for %q interrupted", d.Data.Location)
			continue
		case errors.Is(err, gazetteer.ErrUnknownLocation):
			log.Printf("Dropping request: %v", err)
		case err != nil:
			log.Printf("Acquisition for %q failed: %v", d.Data.Location, err)
		default:
			log.Printf("Acquired %q at %v: weather %v, %d thermal pixels", res.Location, res.Coordinates, res.WeatherTally, len(res.Matched))
		}

		if err := requests.Commit(ctx, d); err != nil {
			log.Printf("Failed to commit offset: %v", err)
		}
	}

	consumer.Stop()
	log.Println("Watcher finished, application exiting.")
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
	return srv
}
