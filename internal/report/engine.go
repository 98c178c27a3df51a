package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"retail-sales-analytics/internal/domain"
	"retail-sales-analytics/internal/store"
)

// Engine reads the sale facts once and computes every report from them.
type Engine struct {
	reader store.FactReader
	logger zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(reader store.FactReader, opts ...EngineOption) *Engine {
	e := &Engine{reader: reader, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "report").Logger()
	return e
}

// Build loads the dataset and computes the full report set. An empty
// dataset yields empty reports, not an error.
func (e *Engine) Build(ctx context.Context) (*Set, error) {
	started := time.Now()
	facts, err := e.reader.ListSaleFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: load sale facts: %w", err)
	}

	set := Compute(facts)
	for _, t := range set.Tables() {
		if t.Name() != NameDensity && len(t.Rows()) == 0 {
			e.logger.Warn().Str("report", t.Name()).Msg("empty aggregation")
		}
	}
	e.logger.Info().
		Int("sales", len(facts)).
		Str("total_revenue", money(set.Summary.TotalRevenue)).
		Dur("elapsed", time.Since(started)).
		Msg("reports computed")
	return set, nil
}

// Compute runs every aggregation over facts, which must be ordered by sale id.
func Compute(facts []domain.SaleFact) *Set {
	return &Set{
		Summary:       Summarize(facts),
		ByProduct:     ByProduct(facts),
		ByCategory:    ByCategory(facts),
		Monthly:       Monthly(facts),
		ByCustomer:    ByCustomer(facts),
		ByLoyaltyTier: ByLoyaltyTier(facts),
		TopProducts:   TopProducts(facts),
		TopCustomers:  TopCustomers(facts),
		Density:       Density(facts),
	}
}
