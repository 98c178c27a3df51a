package store

import (
	"context"

	"retail-sales-analytics/internal/domain"
)

// Every Insert* method writes its rows as one atomic batch: either all rows
// are visible afterwards or none are. Returned rows carry the assigned ids,
// in input order.

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	InsertCategories(ctx context.Context, categories []domain.Category) ([]domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// ProductStorer defines the database operations for products.
type ProductStorer interface {
	InsertProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CustomerStorer defines the database operations for customers.
type CustomerStorer interface {
	InsertCustomers(ctx context.Context, customers []domain.Customer) ([]domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// SaleStorer defines the database operations for sales.
type SaleStorer interface {
	InsertSales(ctx context.Context, sales []domain.Sale) ([]domain.Sale, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
}

// FactReader is the read side used by the aggregation engine.
type FactReader interface {
	// ListSaleFacts returns every sale joined with its product, category and
	// optional customer, ordered by sale id.
	ListSaleFacts(ctx context.Context) ([]domain.SaleFact, error)
}

// Writer is everything the generator writes through.
type Writer interface {
	InsertCategories(ctx context.Context, categories []domain.Category) ([]domain.Category, error)
	InsertProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	InsertCustomers(ctx context.Context, customers []domain.Customer) ([]domain.Customer, error)
	InsertSales(ctx context.Context, sales []domain.Sale) ([]domain.Sale, error)
	// Reset removes every row and restarts id assignment at 1.
	Reset(ctx context.Context) error
}

// Storer is a Writer that can also list back what it stored. The List*
// methods are used to inspect a generated dataset, not by the report path.
type Storer interface {
	CategoryStorer
	ProductStorer
	CustomerStorer
	SaleStorer
	Reset(ctx context.Context) error
}
