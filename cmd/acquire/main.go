package main

import (
	"context"
	"log"
	"os"

	"climate/internal/acquire"
	"climate/internal/cli"
	"climate/internal/config"
	"climate/internal/env"
	"climate/pkg/graceful"
)

func main() {
	env.LoadEnv()

	ctx, cancel := graceful.Context(context.Background())

	deps := cli.Dependencies{
		Open: func(ctx context.Context) (cli.Engine, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			log.Printf("Gazetteer %s, grid budget %d, radius %d", cfg.Gazetteer.Path, cfg.Weather.GridBudget, cfg.Thermal.Radius)
			svc, err := acquire.NewService(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return svc, nil
		},
	}

	code := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
