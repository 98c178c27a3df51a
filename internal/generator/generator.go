package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"retail-sales-analytics/internal/domain"
	"retail-sales-analytics/internal/store"
)

// Config holds the counts, ranges and windows of one generation run.
// Date windows are inclusive on both ends.
type Config struct {
	Categories          int // taken from the head of the catalog
	ProductsPerCategory int
	Customers           int
	Sales               int
	PriceMin            float64
	PriceMax            float64
	CostRatioMin        float64
	CostRatioMax        float64
	RegistrationStart   time.Time
	RegistrationEnd     time.Time
	SaleStart           time.Time
	SaleEnd             time.Time
	AnonymousSaleRate   float64
}

// DefaultConfig mirrors the sizes of the reference dataset.
func DefaultConfig() Config {
	return Config{
		Categories:          len(defaultCategories),
		ProductsPerCategory: 10,
		Customers:           150,
		Sales:               500,
		PriceMin:            5,
		PriceMax:            500,
		CostRatioMin:        0.3,
		CostRatioMax:        0.7,
		RegistrationStart:   time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		RegistrationEnd:     time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
		SaleStart:           time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		SaleEnd:             time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// discounts is sampled uniformly: four in six sales pay full price.
var discounts = []decimal.Decimal{
	decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
	decimal.RequireFromString("0.05"), decimal.RequireFromString("0.10"),
}

// Result summarizes a successful run.
type Result struct {
	RunID      uuid.UUID `json:"run_id"`
	Seed       uint64    `json:"seed"`
	Categories int       `json:"categories"`
	Products   int       `json:"products"`
	Customers  int       `json:"customers"`
	Sales      int       `json:"sales"`
}

// Generator writes a synthetic dataset through a store.Writer.
type Generator struct {
	store   store.Writer
	cfg     Config
	catalog Catalog
	seed    uint64
	logger  zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the run reproducible. Without it a random seed is drawn
// and reported in the Result.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(catalog Catalog) Option {
	return func(g *Generator) { g.catalog = catalog }
}

// New validates cfg against the catalog and returns a Generator.
func New(s store.Writer, cfg Config, opts ...Option) (*Generator, error) {
	g := &Generator{
		store:   s,
		cfg:     cfg,
		catalog: DefaultCatalog(),
		seed:    rand.Uint64(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) validate() error {
	c := g.cfg
	invalid := func(field, reason string) error {
		return &domain.InvalidRange{Field: field, Reason: reason}
	}
	switch {
	case c.Categories < 0:
		return invalid("categories", "must be >= 0")
	case c.Categories > len(g.catalog.Categories):
		return invalid("categories", fmt.Sprintf("must be <= %d, the catalog size", len(g.catalog.Categories)))
	case c.ProductsPerCategory < 0:
		return invalid("products_per_category", "must be >= 0")
	case c.Customers < 0:
		return invalid("customers", "must be >= 0")
	case c.Sales < 0:
		return invalid("sales", "must be >= 0")
	case !(c.PriceMin > 0 && c.PriceMin <= c.PriceMax):
		return invalid("price", fmt.Sprintf("range [%g, %g] must satisfy 0 < min <= max", c.PriceMin, c.PriceMax))
	case !(c.CostRatioMin >= 0 && c.CostRatioMin <= c.CostRatioMax && c.CostRatioMax <= 1):
		return invalid("cost_ratio", fmt.Sprintf("range [%g, %g] must satisfy 0 <= lo <= hi <= 1", c.CostRatioMin, c.CostRatioMax))
	case c.RegistrationEnd.Before(c.RegistrationStart):
		return invalid("registration_window", "end is before start")
	case c.SaleEnd.Before(c.SaleStart):
		return invalid("sale_window", "end is before start")
	case c.AnonymousSaleRate < 0 || c.AnonymousSaleRate > 1:
		return invalid("anonymous_sale_rate", "must be within [0, 1]")
	}
	if c.ProductsPerCategory > 0 {
		for _, cat := range g.catalog.Categories[:c.Categories] {
			if len(cat.ProductNames) == 0 {
				return invalid("catalog", fmt.Sprintf("category %q has no product names", cat.Name))
			}
		}
	}
	if c.Customers > 0 {
		switch {
		case len(g.catalog.LastNames) == 0:
			return invalid("catalog", "no last names")
		case len(g.catalog.FirstNames) == 0:
			return invalid("catalog", "no first names")
		case len(g.catalog.Cities) == 0:
			return invalid("catalog", "no cities")
		case len(g.catalog.EmailDomains) == 0:
			return invalid("catalog", "no email domains")
		}
	}
	return nil
}

// Run replaces the stored dataset with a freshly generated one. Stages run
// in dependency order and each commits as one batch. When a stage fails the
// rows of the earlier stages are removed again before the error is returned.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.New(), Seed: g.seed}
	logger := g.logger.With().Str("run_id", res.RunID.String()).Uint64("seed", g.seed).Logger()
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	if err := g.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("generator: reset before run: %w", err)
	}
	logger.Info().
		Int("categories", g.cfg.Categories).
		Int("products_per_category", g.cfg.ProductsPerCategory).
		Int("customers", g.cfg.Customers).
		Int("sales", g.cfg.Sales).
		Msg("generation started")

	started := time.Now()
	err := g.run(ctx, rng, res, logger)
	if err != nil {
		logger.Error().Err(err).Msg("generation failed, removing partial dataset")
		if rerr := g.store.Reset(context.WithoutCancel(ctx)); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("generator: cleanup after failure: %w", rerr))
		}
		return nil, err
	}
	logger.Info().Dur("elapsed", time.Since(started)).Msg("generation finished")
	return res, nil
}

func (g *Generator) run(ctx context.Context, rng *rand.Rand, res *Result, logger zerolog.Logger) error {
	categories, err := g.store.InsertCategories(ctx, g.buildCategories())
	if err != nil {
		return stageError(domain.StageCategories, err)
	}
	res.Categories = len(categories)
	logger.Debug().Int("rows", len(categories)).Str("stage", string(domain.StageCategories)).Msg("stage committed")

	products, err := g.store.InsertProducts(ctx, g.buildProducts(rng, categories))
	if err != nil {
		return stageError(domain.StageProducts, err)
	}
	res.Products = len(products)
	logger.Debug().Int("rows", len(products)).Str("stage", string(domain.StageProducts)).Msg("stage committed")

	customers, err := g.store.InsertCustomers(ctx, g.buildCustomers(rng))
	if err != nil {
		return stageError(domain.StageCustomers, err)
	}
	res.Customers = len(customers)
	logger.Debug().Int("rows", len(customers)).Str("stage", string(domain.StageCustomers)).Msg("stage committed")

	sales, err := g.buildSales(rng, products, customers)
	if err != nil {
		return err
	}
	sales, err = g.store.InsertSales(ctx, sales)
	if err != nil {
		return stageError(domain.StageSales, err)
	}
	res.Sales = len(sales)
	logger.Debug().Int("rows", len(sales)).Str("stage", string(domain.StageSales)).Msg("stage committed")
	return nil
}

func (g *Generator) buildCategories() []domain.Category {
	seeds := g.catalog.Categories[:g.cfg.Categories]
	categories := make([]domain.Category, len(seeds))
	for i, seed := range seeds {
		categories[i] = domain.Category{Name: seed.Name}
		if seed.Description != "" {
			categories[i].Description = ptr(seed.Description)
		}
	}
	return categories
}

func (g *Generator) buildProducts(rng *rand.Rand, categories []domain.Category) []domain.Product {
	products := make([]domain.Product, 0, len(categories)*g.cfg.ProductsPerCategory)
	for i, category := range categories {
		names := productNames(g.catalog.Categories[i].ProductNames, g.cfg.ProductsPerCategory)
		for _, name := range names {
			price := decimal.NewFromFloat(uniform(rng, g.cfg.PriceMin, g.cfg.PriceMax)).Round(2)
			if !price.IsPositive() {
				price = decimal.New(1, -2)
			}
			cost := price.Mul(decimal.NewFromFloat(uniform(rng, g.cfg.CostRatioMin, g.cfg.CostRatioMax))).Round(2)
			if cost.GreaterThan(price) {
				cost = price
			}
			stock := int32(rng.IntN(101))
			products = append(products, domain.Product{
				Name:           name,
				CategoryID:     category.ID,
				UnitPrice:      price,
				ProductionCost: &cost,
				StockLevel:     &stock,
			})
		}
	}
	return products
}

func (g *Generator) buildCustomers(rng *rand.Rand) []domain.Customer {
	customers := make([]domain.Customer, g.cfg.Customers)
	for i := range customers {
		lastName := pick(rng, g.catalog.LastNames)
		firstName := pick(rng, g.catalog.FirstNames)
		email := emailAddress(rng, firstName, lastName, g.catalog.EmailDomains)
		phone := phoneNumber(rng)
		city := pick(rng, g.catalog.Cities)
		registered := dateIn(rng, g.cfg.RegistrationStart, g.cfg.RegistrationEnd)
		customers[i] = domain.Customer{
			LastName:         lastName,
			FirstName:        &firstName,
			Email:            &email,
			Phone:            &phone,
			City:             &city,
			RegistrationDate: &registered,
			LoyaltyTier:      pick(rng, domain.LoyaltyTiers),
		}
	}
	return customers
}

func (g *Generator) buildSales(rng *rand.Rand, products []domain.Product, customers []domain.Customer) ([]domain.Sale, error) {
	if g.cfg.Sales > 0 && len(products) == 0 {
		return nil, &domain.ConstraintViolation{
			Stage:     domain.StageSales,
			Invariant: fmt.Sprintf("%d sales requested but no product exists", g.cfg.Sales),
		}
	}
	sales := make([]domain.Sale, g.cfg.Sales)
	for i := range sales {
		product := products[rng.IntN(len(products))]
		var customerID *int64
		anonymous := g.cfg.AnonymousSaleRate > 0 && rng.Float64() < g.cfg.AnonymousSaleRate
		if len(customers) > 0 && !anonymous {
			id := customers[rng.IntN(len(customers))].ID
			customerID = &id
		}
		date := dateIn(rng, g.cfg.SaleStart, g.cfg.SaleEnd)
		quantity := int32(1 + rng.IntN(5))
		discount := pick(rng, discounts)
		sales[i] = domain.Sale{
			ProductID:     product.ID,
			CustomerID:    customerID,
			SaleDate:      date,
			Quantity:      quantity,
			TotalAmount:   domain.SaleAmount(product.UnitPrice, quantity, discount),
			PaymentMethod: pick(rng, domain.PaymentMethods),
		}
	}
	return sales, nil
}

// stageError makes sure every failure names its stage.
func stageError(stage domain.Stage, err error) error {
	var cv *domain.ConstraintViolation
	if errors.As(err, &cv) {
		return err
	}
	return fmt.Errorf("generator: stage %s: %w", stage, err)
}
