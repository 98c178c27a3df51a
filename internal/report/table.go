package report

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Table is the tabular form of a report. Every cell is already formatted.
type Table interface {
	Name() string
	Header() []string
	Rows() [][]string
}

// Report names, also used as CSV file stems and URL path segments.
const (
	NameSummary       = "summary"
	NameByProduct     = "by_product"
	NameByCategory    = "by_category"
	NameMonthly       = "monthly"
	NameByCustomer    = "by_customer"
	NameByLoyaltyTier = "by_loyalty_tier"
	NameTopProducts   = "top_products"
	NameTopCustomers  = "top_customers"
	NameDensity       = "density"
)

// TopN is the length of the ranking reports.
const TopN = 5

// Set is one complete computation over the sales dataset.
type Set struct {
	Summary       Summary
	ByProduct     ProductReport
	ByCategory    CategoryReport
	Monthly       MonthlyReport
	ByCustomer    CustomerReport
	ByLoyaltyTier TierReport
	TopProducts   ProductReport
	TopCustomers  CustomerReport
	Density       DensityReport
}

// Tables lists the reports in a fixed order.
func (s *Set) Tables() []Table {
	return []Table{
		s.Summary,
		s.ByProduct,
		s.ByCategory,
		s.Monthly,
		s.ByCustomer,
		s.ByLoyaltyTier,
		s.TopProducts,
		s.TopCustomers,
		s.Density,
	}
}

// Table looks a report up by name.
func (s *Set) Table(name string) (Table, bool) {
	for _, t := range s.Tables() {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Names returns the report names in the order of Tables.
func (s *Set) Names() []string {
	tables := s.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	return names
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func itoa[T ~int | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}
