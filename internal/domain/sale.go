package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled. The zero value is stored as NULL.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "Card"
	PaymentCash     PaymentMethod = "Cash"
	PaymentTransfer PaymentMethod = "Transfer"
	PaymentCheck    PaymentMethod = "Check"
)

// PaymentMethods lists every payment method in declaration order.
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentCash, PaymentTransfer, PaymentCheck}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentTransfer, PaymentCheck:
		return true
	}
	return false
}

// Value implements driver.Valuer.
func (m PaymentMethod) Value() (driver.Value, error) {
	if m == "" {
		return nil, nil
	}
	if !m.Valid() {
		return nil, fmt.Errorf("invalid payment method %q", string(m))
	}
	return string(m), nil
}

// Scan implements sql.Scanner.
func (m *PaymentMethod) Scan(src any) error {
	s, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("scan payment method: %w", err)
	}
	*m = PaymentMethod(s)
	return nil
}

// Sale is one line of the sales ledger.
type Sale struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	CustomerID    *int64          `json:"customer_id,omitempty"` // nil for anonymous sales
	SaleDate      time.Time       `json:"sale_date"`
	Quantity      int32           `json:"quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
}

// Validate checks the per-row constraints of a sale.
func (s Sale) Validate() error {
	violation := func(format string, args ...any) error {
		return &ConstraintViolation{Stage: StageSales, Invariant: fmt.Sprintf(format, args...)}
	}
	if s.ProductID <= 0 {
		return violation("sale product_id %d does not reference a product", s.ProductID)
	}
	if s.Quantity <= 0 {
		return violation("sale quantity %d must be > 0", s.Quantity)
	}
	if s.TotalAmount.IsNegative() {
		return violation("sale total_amount %s must be >= 0", s.TotalAmount)
	}
	if s.SaleDate.IsZero() {
		return violation("sale_date is required")
	}
	if s.PaymentMethod != "" && !s.PaymentMethod.Valid() {
		return violation("payment_method %q is not one of Card, Cash, Transfer, Check", s.PaymentMethod)
	}
	return nil
}

// SaleAmount computes unitPrice × quantity × (1 − discount) rounded to cents.
func SaleAmount(unitPrice decimal.Decimal, quantity int32, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.
		Mul(decimal.NewFromInt32(quantity)).
		Mul(decimal.NewFromInt(1).Sub(discount)).
		Round(2)
}

// SaleFact is a sale joined with its product, category and (optional)
// customer. It is the row shape the aggregation engine consumes.
type SaleFact struct {
	SaleID        int64
	SaleDate      time.Time
	Quantity      int32
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	ProductID     int64
	ProductName   string
	CategoryName  string       // empty when the product has no category
	Customer      *CustomerRef // nil when the sale has no customer
}

// CustomerRef carries the customer columns needed for grouping.
type CustomerRef struct {
	ID          int64
	LastName    string
	FirstName   string
	LoyaltyTier LoyaltyTier
}
