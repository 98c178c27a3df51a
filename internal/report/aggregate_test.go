package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-sales-analytics/internal/domain"
)

var nextSaleID int64

func fact(date string, product, category string, qty int32, amount string, customer *domain.CustomerRef) domain.SaleFact {
	nextSaleID++
	return domain.SaleFact{
		SaleID:       nextSaleID,
		SaleDate:     mustDate(date),
		Quantity:     qty,
		TotalAmount:  decimal.RequireFromString(amount),
		ProductName:  product,
		CategoryName: category,
		Customer:     customer,
	}
}

func mustDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func customer(id int64, last, first string, tier domain.LoyaltyTier) *domain.CustomerRef {
	return &domain.CustomerRef{ID: id, LastName: last, FirstName: first, LoyaltyTier: tier}
}

func TestSummarize(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-03", "Laptop", "Electronics", 2, "180.00", nil),
		fact("2023-01-04", "Novel", "Books", 1, "20.00", nil),
		fact("2023-02-10", "Rice", "Food", 4, "10.50", nil),
	}

	s := Summarize(facts)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "210.50", money(s.TotalRevenue))
	assert.Equal(t, "70.17", money(s.MeanAmount))
	assert.Equal(t, "2.33", s.MeanQuantity.StringFixed(2))
	assert.Equal(t, [][]string{{"3", "210.50", "70.17", "2.33"}}, s.Rows())
}

func TestSummarize_MeansKeepFullPrecision(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Pen", "Office", 1, "1.00", nil),
		fact("2023-01-02", "Pen", "Office", 1, "1.00", nil),
		fact("2023-01-03", "Pen", "Office", 2, "1.01", nil),
	}

	s := Summarize(facts)

	n := decimal.NewFromInt(3)
	tolerance := decimal.New(1, -12)
	assert.True(t, s.MeanAmount.GreaterThan(decimal.NewFromInt(1)), "mean %s lost its fraction", s.MeanAmount)
	assert.True(t, s.MeanAmount.Mul(n).Sub(s.TotalRevenue).Abs().LessThan(tolerance),
		"mean %s times count should give back %s", s.MeanAmount, s.TotalRevenue)
	assert.True(t, s.MeanQuantity.Mul(n).Sub(decimal.NewFromInt(4)).Abs().LessThan(tolerance))
	assert.Equal(t, [][]string{{"3", "3.01", "1.00", "1.33"}}, s.Rows())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Count)
	assert.Equal(t, [][]string{{"0", "0.00", "0.00", "0.00"}}, s.Rows())
}

func TestByProduct_SortsByRevenueWithFirstSeenTies(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", nil),
		fact("2023-01-01", "Sofa", "Home", 1, "30.00", nil),
		fact("2023-01-01", "Rug", "Home", 2, "10.00", nil),
		fact("2023-01-02", "Lamp", "Home", 3, "5.00", nil),
		fact("2023-01-02", "Rug", "Home", 1, "5.00", nil),
	}

	r := ByProduct(facts)

	assert.Equal(t, NameByProduct, r.Name())
	assert.Equal(t, []string{"product_name", "total_quantity", "total_revenue"}, r.Header())
	assert.Equal(t, [][]string{
		{"Sofa", "1", "30.00"},
		{"Lamp", "4", "15.00"},
		{"Rug", "3", "15.00"},
	}, r.Rows())
}

func TestByCategory(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", nil),
		fact("2023-01-01", "Novel", "Books", 2, "40.00", nil),
		fact("2023-01-01", "Sofa", "Home", 1, "25.00", nil),
	}

	r := ByCategory(facts)

	require.Len(t, r.Items, 2)
	assert.Equal(t, "Books", r.Items[0].CategoryName)
	assert.Equal(t, 2, r.Items[1].SaleCount)
	assert.Equal(t, [][]string{
		{"Books", "2", "40.00", "1"},
		{"Home", "2", "35.00", "2"},
	}, r.Rows())
}

func TestByCategory_SkipsUncategorisedSales(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", nil),
		fact("2023-01-01", "Gift card", "", 1, "25.00", nil),
	}

	assert.Equal(t, [][]string{{"Home", "1", "10.00", "1"}}, ByCategory(facts).Rows())

	s := Summarize(facts)
	assert.Equal(t, 2, s.Count, "summary still counts the uncategorised sale")
	assert.Equal(t, "35.00", money(s.TotalRevenue))
	assert.Equal(t, [][]string{{"Gift card", "1", "25.00"}, {"Lamp", "1", "10.00"}}, ByProduct(facts).Rows())
}

func TestMonthly_AscendingByMonth(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-03-15", "Lamp", "Home", 1, "10.00", nil),
		fact("2023-01-31", "Lamp", "Home", 1, "20.00", nil),
		fact("2022-12-01", "Lamp", "Home", 1, "5.00", nil),
		fact("2023-03-01", "Lamp", "Home", 1, "1.00", nil),
	}

	r := Monthly(facts)

	assert.Equal(t, [][]string{
		{"2022-12", "5.00", "1"},
		{"2023-01", "20.00", "1"},
		{"2023-03", "11.00", "2"},
	}, r.Rows())
}

func TestByCustomer_MergesNamesakesAndSkipsAnonymous(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", customer(1, "Martin", "Julie", domain.TierLoyal)),
		fact("2023-01-01", "Lamp", "Home", 1, "99.00", nil),
		fact("2023-01-01", "Lamp", "Home", 1, "15.00", customer(2, "Martin", "Julie", domain.TierRegular)),
		fact("2023-01-01", "Lamp", "Home", 1, "12.00", customer(3, "Martin", "Paul", domain.TierRegular)),
	}

	r := ByCustomer(facts)

	assert.Equal(t, NameByCustomer, r.Name())
	assert.Equal(t, [][]string{
		{"Martin", "Julie", "25.00", "2"},
		{"Martin", "Paul", "12.00", "1"},
	}, r.Rows())
}

func TestByLoyaltyTier_ListsEveryTier(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", customer(1, "Martin", "Julie", domain.TierRegular)),
		fact("2023-01-01", "Lamp", "Home", 1, "20.00", customer(2, "Petit", "Anne", domain.TierRegular)),
		fact("2023-01-01", "Lamp", "Home", 1, "5.00", customer(3, "Roux", "Eric", domain.TierLoyal)),
		fact("2023-01-01", "Lamp", "Home", 1, "7.00", customer(4, "Simon", "Marie", "")),
		fact("2023-01-01", "Lamp", "Home", 1, "50.00", nil),
	}

	r := ByLoyaltyTier(facts)

	assert.Equal(t, [][]string{
		{"Regular", "2", "30.00", "15.00"},
		{"Loyal", "1", "5.00", "5.00"},
		{"Occasional", "0", "0.00", "0.00"},
	}, r.Rows())
}

func TestByLoyaltyTier_MeanBasketKeepsFullPrecision(t *testing.T) {
	julie := customer(1, "Martin", "Julie", domain.TierLoyal)
	facts := []domain.SaleFact{
		fact("2023-01-01", "Pen", "Office", 1, "1.00", julie),
		fact("2023-01-02", "Pen", "Office", 1, "1.00", julie),
		fact("2023-01-03", "Pen", "Office", 1, "1.01", julie),
	}

	r := ByLoyaltyTier(facts)

	loyal := r.Items[0]
	require.Equal(t, domain.TierLoyal, loyal.LoyaltyTier)
	assert.True(t, loyal.MeanBasket.Mul(decimal.NewFromInt(3)).Sub(loyal.TotalRevenue).Abs().LessThan(decimal.New(1, -12)),
		"mean basket %s times 3 should give back %s", loyal.MeanBasket, loyal.TotalRevenue)
	assert.Equal(t, []string{"Loyal", "3", "3.01", "1.00"}, r.Rows()[0])
}

func TestByLoyaltyTier_NoSales(t *testing.T) {
	r := ByLoyaltyTier(nil)

	require.Len(t, r.Items, 3)
	for i, tier := range domain.LoyaltyTiers {
		assert.Equal(t, tier, r.Items[i].LoyaltyTier, "ties keep enum order")
		assert.True(t, r.Items[i].MeanBasket.IsZero())
	}
}

func TestTopProducts(t *testing.T) {
	var facts []domain.SaleFact
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		facts = append(facts, fact("2023-01-01", name, "Misc", 1, decimal.NewFromInt(int64(10*(i%3+1))).String(), nil))
	}
	facts = append(facts, fact("2023-01-01", "A", "Misc", 1, "1.00", nil))

	r := TopProducts(facts)

	assert.Equal(t, NameTopProducts, r.Name())
	require.Len(t, r.Items, TopN)
	seen := map[string]bool{}
	for i, it := range r.Items {
		assert.False(t, seen[it.ProductName], "duplicate product %s", it.ProductName)
		seen[it.ProductName] = true
		if i > 0 {
			assert.True(t, r.Items[i-1].TotalRevenue.GreaterThanOrEqual(it.TotalRevenue))
		}
	}
	// C and F tie at 30.00, B and E at 20.00; the first seen ranks first.
	assert.Equal(t, []string{"C", "F", "B", "E", "A"}, productNames(r.Items))
}

func TestTopCustomers_FewerThanN(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", customer(1, "Martin", "Julie", domain.TierRegular)),
		fact("2023-01-01", "Lamp", "Home", 1, "20.00", customer(2, "Petit", "Anne", domain.TierRegular)),
	}

	r := TopCustomers(facts)

	assert.Equal(t, NameTopCustomers, r.Name())
	assert.Equal(t, [][]string{
		{"Petit", "Anne", "20.00", "1"},
		{"Martin", "Julie", "10.00", "1"},
	}, r.Rows())
}

func TestDensity(t *testing.T) {
	facts := []domain.SaleFact{
		fact("2023-01-01", "Lamp", "Home", 1, "10.00", nil), // Sunday
		fact("2023-01-08", "Lamp", "Home", 1, "10.00", nil), // Sunday
		fact("2023-01-04", "Lamp", "Home", 1, "10.00", nil), // Wednesday
	}
	afternoon := fact("2023-01-06", "Lamp", "Home", 1, "10.00", nil)
	afternoon.SaleDate = afternoon.SaleDate.Add(15 * time.Hour)
	facts = append(facts, afternoon)

	r := Density(facts)

	assert.Equal(t, 2, r.Counts[0][0])
	assert.Equal(t, 1, r.Counts[3][0])
	assert.Equal(t, 1, r.Counts[5][15])

	rows := r.Rows()
	require.Len(t, rows, 7*24)
	assert.Equal(t, []string{"0", "0", "2"}, rows[0])
	assert.Equal(t, []string{"6", "23", "0"}, rows[len(rows)-1])

	total := 0
	for _, day := range r.Counts {
		for _, n := range day {
			total += n
		}
	}
	assert.Equal(t, len(facts), total)
}

func TestEmptyInputs(t *testing.T) {
	set := Compute(nil)

	assert.Empty(t, set.ByProduct.Rows())
	assert.Empty(t, set.ByCategory.Rows())
	assert.Empty(t, set.Monthly.Rows())
	assert.Empty(t, set.ByCustomer.Rows())
	assert.Empty(t, set.TopProducts.Rows())
	assert.Empty(t, set.TopCustomers.Rows())
	assert.Len(t, set.ByLoyaltyTier.Rows(), 3)
	assert.Len(t, set.Density.Rows(), 168)
}

func TestSet_Lookup(t *testing.T) {
	set := Compute(nil)

	assert.Equal(t, []string{
		"summary", "by_product", "by_category", "monthly", "by_customer",
		"by_loyalty_tier", "top_products", "top_customers", "density",
	}, set.Names())

	table, ok := set.Table("monthly")
	require.True(t, ok)
	assert.Equal(t, []string{"month", "total_revenue", "sale_count"}, table.Header())

	_, ok = set.Table("unknown")
	assert.False(t, ok)
}

func productNames(items []ProductRevenue) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ProductName
	}
	return out
}
