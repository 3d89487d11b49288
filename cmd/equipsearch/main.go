// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/rentyard/equipsearch/aggregate"
	"github.com/rentyard/equipsearch/cache"
	"github.com/rentyard/equipsearch/client"
	"github.com/rentyard/equipsearch/core"
	"github.com/rentyard/equipsearch/ratelimit"
)

func main() {
	// A missing .env file is fine; flags and real env vars still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "equipsearch",
		Usage: "Search and aggregate rental equipment inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search the upstream inventory index",
				Action: searchCommand,
				Flags: append(upstreamFlags(),
					&cli.StringSliceFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Equipment type to match (repeatable)",
					},
					&cli.StringFlag{
						Name:  "make",
						Usage: "Manufacturer to match",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Model to match",
					},
					&cli.StringFlag{
						Name:    "keywords",
						Aliases: []string{"k"},
						Usage:   "Free-text keywords",
					},
					&cli.Float64Flag{
						Name:  "lat",
						Usage: "Search center latitude",
					},
					&cli.Float64Flag{
						Name:  "lon",
						Usage: "Search center longitude",
					},
					&cli.Float64Flag{
						Name:  "radius",
						Usage: "Search radius in miles",
						Value: 100,
					},
					&cli.Float64Flag{
						Name:  "min-capacity",
						Usage: "Minimum capacity filter",
					},
					&cli.Float64Flag{
						Name:  "max-capacity",
						Usage: "Maximum capacity filter",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Maximum number of records to return",
						Value: 24,
					},
				),
			},
			{
				Name:   "industries",
				Usage:  "Aggregate inventory counts across the category catalog",
				Action: industriesCommand,
				Flags: append(upstreamFlags(),
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Path to a category catalog YAML file (omit for the built-in catalog)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent category searches",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "per-category-cap",
						Usage: "Maximum records fetched per equipment type",
						Value: 24,
					},
					&cli.Float64Flag{
						Name:  "lat",
						Usage: "Search center latitude",
					},
					&cli.Float64Flag{
						Name:  "lon",
						Usage: "Search center longitude",
					},
					&cli.Float64Flag{
						Name:  "radius",
						Usage: "Search radius in miles",
						Value: 100,
					},
				),
			},
			{
				Name:   "warm",
				Usage:  "Keep the result cache warm by re-running aggregation on a schedule",
				Action: warmCommand,
				Flags: append(upstreamFlags(),
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Path to a category catalog YAML file (omit for the built-in catalog)",
					},
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron schedule for refresh runs",
						Value: "@every 10m",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent category searches",
						Value: 4,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// upstreamFlags are shared by every command that talks to the inventory
// index.
func upstreamFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "Inventory search endpoint URL",
			EnvVars: []string{"EQUIPSEARCH_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Inventory search API key",
			EnvVars: []string{"EQUIPSEARCH_API_KEY"},
		},
		&cli.IntFlag{
			Name:    "rps",
			Usage:   "Maximum upstream requests per second",
			EnvVars: []string{"EQUIPSEARCH_RPS"},
			Value:   10,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for throttled requests",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 500 * time.Millisecond,
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Result cache directory (omit for an in-memory cache)",
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Usage: "How long cached results stay fresh",
			Value: 5 * time.Minute,
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Bypass the result cache entirely",
		},
	}
}

// newSearchClient wires the cache, rate limiter, and client for a command.
// The returned cleanup closes the cache store.
func newSearchClient(c *cli.Context) (*client.Client, func(), error) {
	config := client.NewConfig(
		client.WithEndpoint(c.String("endpoint")),
		client.WithAPIKey(c.String("api-key")),
		client.WithCache(!c.Bool("no-cache"), c.Duration("cache-ttl")),
		client.WithMaxRequestsPerSecond(c.Int("rps")),
		client.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	)
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	var store *cache.Store
	var err error
	if dir := c.String("cache-dir"); dir != "" {
		store, err = cache.NewStore(dir)
	} else {
		store, err = cache.NewMemoryStore()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open result cache: %w", err)
	}

	bucket, err := ratelimit.NewBucket(config.MaxRequestsPerSecond)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	searchClient, err := client.New(config, store, bucket)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create search client: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close result cache", "err", err)
		}
	}
	return searchClient, cleanup, nil
}

func loadCatalog(c *cli.Context) (*aggregate.Catalog, error) {
	path := c.String("catalog")
	if path == "" {
		return aggregate.DefaultCatalog(), nil
	}
	catalog, err := aggregate.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog, nil
}

func locationFromFlags(c *cli.Context) *core.LocationFilter {
	if !c.IsSet("lat") || !c.IsSet("lon") {
		return nil
	}
	return &core.LocationFilter{
		Latitude:    c.Float64("lat"),
		Longitude:   c.Float64("lon"),
		RadiusMiles: c.Float64("radius"),
	}
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	searchClient, cleanup, err := newSearchClient(c)
	if err != nil {
		return err
	}
	defer cleanup()

	criteria := core.SearchCriteria{
		EquipmentTypes: c.StringSlice("type"),
		Make:           c.String("make"),
		Model:          c.String("model"),
		Keywords:       strings.Fields(c.String("keywords")),
		Location:       locationFromFlags(c),
		Top:            c.Int("top"),
	}
	if c.IsSet("min-capacity") {
		v := c.Float64("min-capacity")
		criteria.MinCapacity = &v
	}
	if c.IsSet("max-capacity") {
		v := c.Float64("max-capacity")
		criteria.MaxCapacity = &v
	}
	if err := core.ValidateCriteria(criteria); err != nil {
		return err
	}

	result, err := searchClient.Search(ctx, criteria)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d of %d matching records\n", len(result.Records), result.Total)
	for i, rec := range result.Records {
		label := strings.TrimSpace(fmt.Sprintf("%d %s %s", rec.Year, rec.Make, rec.Model))
		mode := "rental"
		if rec.BuyItNowOnly {
			mode = "purchase only"
		}
		fmt.Printf("%d: %s (%s) %s, %s [%s]\n", i+1, label, rec.PrimaryType, rec.City, rec.State, mode)
	}
	return nil
}

func industriesCommand(c *cli.Context) error {
	ctx := context.Background()

	searchClient, cleanup, err := newSearchClient(c)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog, err := loadCatalog(c)
	if err != nil {
		return err
	}

	aggregator, err := aggregate.NewAggregator(searchClient, catalog,
		aggregate.WithPoolSize(c.Int("pool-size")),
		aggregate.WithPerCategoryCap(c.Int("per-category-cap")),
		aggregate.WithLocation(locationFromFlags(c)),
	)
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}
	defer aggregator.Release()

	items := aggregator.All(ctx)
	for _, item := range items {
		fmt.Printf("%s: %d records\n", item.Category.Name, item.Count)
		for slug, count := range item.SubTypeCounts {
			fmt.Printf("  %s: %d\n", slug, count)
		}
	}
	return nil
}

func warmCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searchClient, cleanup, err := newSearchClient(c)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog, err := loadCatalog(c)
	if err != nil {
		return err
	}

	aggregator, err := aggregate.NewAggregator(searchClient, catalog,
		aggregate.WithPoolSize(c.Int("pool-size")),
	)
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}
	defer aggregator.Release()

	refresher, err := aggregate.NewRefresher(aggregator, c.String("schedule"), nil)
	if err != nil {
		return fmt.Errorf("failed to create refresher: %w", err)
	}
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start refresher: %w", err)
	}
	defer refresher.Stop()

	slog.Info("cache warmer running", "schedule", c.String("schedule"))
	<-ctx.Done()
	slog.Info("cache warmer stopping")
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
