package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category represents a product category of the store.
// Categories are created once at bootstrap and never mutated afterwards.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"` // Pointer for nullable fields
}

// Validate checks the per-row constraints of a category.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ConstraintViolation{Stage: StageCategories, Invariant: "category name must not be empty"}
	}
	return nil
}

// Product represents a product of the catalog.
// ProductionCost and StockLevel are nullable in storage.
type Product struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	CategoryID     int64            `json:"category_id"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	ProductionCost *decimal.Decimal `json:"production_cost,omitempty"`
	StockLevel     *int32           `json:"stock_level,omitempty"`
}

// Validate checks the per-row constraints of a product. Foreign keys are
// checked by the generator, which knows the set of inserted categories.
func (p Product) Validate() error {
	violation := func(format string, args ...any) error {
		return &ConstraintViolation{Stage: StageProducts, Invariant: fmt.Sprintf(format, args...)}
	}
	if strings.TrimSpace(p.Name) == "" {
		return violation("product name must not be empty")
	}
	if !p.UnitPrice.IsPositive() {
		return violation("product %q unit_price %s must be > 0", p.Name, p.UnitPrice)
	}
	if p.ProductionCost != nil {
		if p.ProductionCost.IsNegative() {
			return violation("product %q production_cost %s must be >= 0", p.Name, p.ProductionCost)
		}
		if p.ProductionCost.GreaterThan(p.UnitPrice) {
			return violation("product %q production_cost %s exceeds unit_price %s", p.Name, p.ProductionCost, p.UnitPrice)
		}
	}
	if p.StockLevel != nil && *p.StockLevel < 0 {
		return violation("product %q stock_level %d must be >= 0", p.Name, *p.StockLevel)
	}
	return nil
}
