package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// LoyaltyTier classifies how often a customer buys.
// The zero value means "unknown" and is stored as NULL.
type LoyaltyTier string

const (
	TierOccasional LoyaltyTier = "Occasional"
	TierRegular    LoyaltyTier = "Regular"
	TierLoyal      LoyaltyTier = "Loyal"
)

// LoyaltyTiers lists every tier in declaration order.
var LoyaltyTiers = []LoyaltyTier{TierOccasional, TierRegular, TierLoyal}

// Valid reports whether t is one of the enumerated tiers.
func (t LoyaltyTier) Valid() bool {
	switch t {
	case TierOccasional, TierRegular, TierLoyal:
		return true
	}
	return false
}

// Value implements driver.Valuer.
func (t LoyaltyTier) Value() (driver.Value, error) {
	if t == "" {
		return nil, nil
	}
	if !t.Valid() {
		return nil, fmt.Errorf("invalid loyalty tier %q", string(t))
	}
	return string(t), nil
}

// Scan implements sql.Scanner.
func (t *LoyaltyTier) Scan(src any) error {
	s, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("scan loyalty tier: %w", err)
	}
	*t = LoyaltyTier(s)
	return nil
}

// Customer represents a registered customer.
type Customer struct {
	ID               int64       `json:"id"`
	LastName         string      `json:"last_name"`
	FirstName        *string     `json:"first_name,omitempty"`
	Email            *string     `json:"email,omitempty"`
	Phone            *string     `json:"phone,omitempty"`
	City             *string     `json:"city,omitempty"`
	RegistrationDate *time.Time  `json:"registration_date,omitempty"`
	LoyaltyTier      LoyaltyTier `json:"loyalty_tier,omitempty"`
}

// Validate checks the per-row constraints of a customer.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.LastName) == "" {
		return &ConstraintViolation{Stage: StageCustomers, Invariant: "customer last_name must not be empty"}
	}
	if c.LoyaltyTier != "" && !c.LoyaltyTier.Valid() {
		return &ConstraintViolation{
			Stage:     StageCustomers,
			Invariant: fmt.Sprintf("loyalty_tier %q is not one of Occasional, Regular, Loyal", c.LoyaltyTier),
		}
	}
	return nil
}

// GivenName returns the first name or "" when it is unknown.
func (c Customer) GivenName() string {
	if c.FirstName == nil {
		return ""
	}
	return *c.FirstName
}

func scanEnum(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}
