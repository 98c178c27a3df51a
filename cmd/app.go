package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"retail-sales-analytics/internal/config"
	"retail-sales-analytics/internal/generator"
	"retail-sales-analytics/internal/report"
	"retail-sales-analytics/internal/sink"
	"retail-sales-analytics/internal/store"
)

// Commands accepted on the command line.
const (
	cmdBootstrap = "bootstrap"
	cmdGenerate  = "generate"
	cmdReport    = "report"
	cmdServe     = "serve"
	cmdAll       = "all"
)

// dataset is the storage handle shared by every command.
type dataset interface {
	store.Storer
	store.FactReader
}

// app holds the handle and settings for one command invocation.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	data   dataset
	ping   func(ctx context.Context) error
	close  func() error
}

// openApp acquires the storage handle selected by cfg.Database.
func openApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	if cfg.Database.Driver == config.DriverMemory {
		a.data = store.NewMemoryStore()
		a.ping = func(context.Context) error { return nil }
		a.close = func() error { return nil }
		logger.Warn().Msg("using the in-memory store, data is lost when the process exits")
		return a, nil
	}

	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN(), logger)
	if err != nil {
		return nil, err
	}
	a.data = s
	a.ping = s.DB().PingContext
	a.close = s.Close
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database connection established")
	return a, nil
}

func (a *app) Close() error {
	return a.close()
}

// run executes one command.
func (a *app) run(ctx context.Context, command string) error {
	switch command {
	case cmdBootstrap:
		return a.bootstrap(ctx)
	case cmdGenerate:
		_, err := a.generate(ctx)
		return err
	case cmdReport:
		_, err := a.report(ctx)
		return err
	case cmdAll:
		if err := a.bootstrap(ctx); err != nil {
			return err
		}
		if _, err := a.generate(ctx); err != nil {
			return err
		}
		_, err := a.report(ctx)
		return err
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// bootstrap drops and recreates the schema. The in-memory store has none.
func (a *app) bootstrap(ctx context.Context) error {
	creator, ok := a.data.(interface {
		CreateSchema(ctx context.Context) error
	})
	if !ok {
		a.logger.Debug().Msg("store has no schema, skipping bootstrap")
		return nil
	}
	return creator.CreateSchema(ctx)
}

func (a *app) generate(ctx context.Context) (*generator.Result, error) {
	opts := []generator.Option{generator.WithLogger(a.logger)}
	if a.cfg.Generator.Seed != nil {
		opts = append(opts, generator.WithSeed(*a.cfg.Generator.Seed))
	}
	g, err := generator.New(a.data, generatorConfig(a.cfg.Generator), opts...)
	if err != nil {
		return nil, err
	}
	res, err := g.Run(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info().
		Str("run_id", res.RunID.String()).
		Uint64("seed", res.Seed).
		Int("categories", res.Categories).
		Int("products", res.Products).
		Int("customers", res.Customers).
		Int("sales", res.Sales).
		Msg("dataset generated")
	return res, nil
}

// report computes every report and exports them as CSV files.
func (a *app) report(ctx context.Context) (*report.Set, error) {
	set, err := report.NewEngine(a.data, report.WithLogger(a.logger)).Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := sink.NewCSVSink(a.cfg.Reports.OutputDir, a.logger).Write(ctx, set.Tables()); err != nil {
		return nil, err
	}
	return set, nil
}

func generatorConfig(c config.GeneratorConfig) generator.Config {
	return generator.Config{
		Categories:          c.Categories,
		ProductsPerCategory: c.ProductsPerCategory,
		Customers:           c.Customers,
		Sales:               c.Sales,
		PriceMin:            c.PriceMin,
		PriceMax:            c.PriceMax,
		CostRatioMin:        c.CostRatioMin,
		CostRatioMax:        c.CostRatioMax,
		RegistrationStart:   c.RegistrationStart.Time,
		RegistrationEnd:     c.RegistrationEnd.Time,
		SaleStart:           c.SaleStart.Time,
		SaleEnd:             c.SaleEnd.Time,
		AnonymousSaleRate:   c.AnonymousSaleRate,
	}
}
