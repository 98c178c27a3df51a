package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleAmount(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		qty      int32
		discount string
		want     string
	}{
		{"ten percent off", "100", 2, "0.10", "180.00"},
		{"no discount", "19.99", 3, "0", "59.97"},
		{"five percent rounds to cents", "12.35", 1, "0.05", "11.73"},
		{"half cent rounds away from zero", "0.10", 1, "0.05", "0.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SaleAmount(decimal.RequireFromString(tt.price), tt.qty, decimal.RequireFromString(tt.discount))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestSaleAmount_ExactHundredEighty(t *testing.T) {
	got := SaleAmount(decimal.NewFromInt(100), 2, decimal.RequireFromString("0.10"))
	assert.True(t, got.Equal(decimal.RequireFromString("180.00")), "got %s", got)
}

func TestProduct_Validate(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	cost := decimal.RequireFromString("12.00")
	negStock := int32(-1)

	require.NoError(t, Product{Name: "Lamp", UnitPrice: price}.Validate())

	err := Product{Name: "Lamp", UnitPrice: decimal.Zero}.Validate()
	assert.True(t, errors.Is(err, ErrConstraintViolation))

	err = Product{Name: "Lamp", UnitPrice: price, ProductionCost: &cost}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds unit_price")

	err = Product{Name: "Lamp", UnitPrice: price, StockLevel: &negStock}.Validate()
	assert.True(t, errors.Is(err, ErrConstraintViolation))

	var cv *ConstraintViolation
	require.True(t, errors.As(Product{UnitPrice: price}.Validate(), &cv))
	assert.Equal(t, StageProducts, cv.Stage)
}

func TestCustomer_Validate(t *testing.T) {
	assert.NoError(t, Customer{LastName: "Martin", LoyaltyTier: TierLoyal}.Validate())
	assert.NoError(t, Customer{LastName: "Martin"}.Validate())
	assert.True(t, errors.Is(Customer{LastName: "Martin", LoyaltyTier: "Gold"}.Validate(), ErrConstraintViolation))
	assert.True(t, errors.Is(Customer{}.Validate(), ErrConstraintViolation))
}

func TestSale_Validate(t *testing.T) {
	ok := Sale{
		ProductID:     1,
		SaleDate:      time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		Quantity:      2,
		TotalAmount:   decimal.RequireFromString("10.00"),
		PaymentMethod: PaymentCash,
	}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Quantity = 0
	assert.True(t, errors.Is(bad.Validate(), ErrConstraintViolation))

	bad = ok
	bad.PaymentMethod = "Bitcoin"
	assert.True(t, errors.Is(bad.Validate(), ErrConstraintViolation))

	bad = ok
	bad.ProductID = 0
	assert.Contains(t, bad.Validate().Error(), "stage sales")
}

func TestEnums_ValueAndScan(t *testing.T) {
	v, err := TierRegular.Value()
	require.NoError(t, err)
	assert.Equal(t, "Regular", v)

	v, err = LoyaltyTier("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = PaymentMethod("IOU").Value()
	assert.Error(t, err)

	var m PaymentMethod
	require.NoError(t, m.Scan([]byte("Transfer")))
	assert.Equal(t, PaymentTransfer, m)

	var tier LoyaltyTier
	require.NoError(t, tier.Scan(nil))
	assert.Equal(t, LoyaltyTier(""), tier)
	assert.Error(t, tier.Scan(42))
}

func TestInvalidRange_Is(t *testing.T) {
	err := error(&InvalidRange{Field: "sales", Reason: "must be >= 0"})
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.False(t, errors.Is(err, ErrConstraintViolation))
	assert.Equal(t, "invalid range: sales must be >= 0", err.Error())
}
