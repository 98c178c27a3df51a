package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"retail-sales-analytics/internal/domain"
)

// Summary is the global summary over every sale. Means keep full
// precision; Rows rounds them to two places.
type Summary struct {
	Count        int
	TotalRevenue decimal.Decimal
	MeanAmount   decimal.Decimal
	MeanQuantity decimal.Decimal
}

func (Summary) Name() string { return NameSummary }

func (Summary) Header() []string {
	return []string{"count", "total_revenue", "mean_amount", "mean_quantity"}
}

func (s Summary) Rows() [][]string {
	return [][]string{{itoa(s.Count), money(s.TotalRevenue), money(s.MeanAmount), s.MeanQuantity.StringFixed(2)}}
}

// ProductRevenue is one row of the by-product report.
type ProductRevenue struct {
	ProductName   string
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
}

// ProductReport backs both the by-product report and its top-N ranking.
type ProductReport struct {
	name  string
	Items []ProductRevenue
}

func (r ProductReport) Name() string { return r.name }

func (ProductReport) Header() []string {
	return []string{"product_name", "total_quantity", "total_revenue"}
}

func (r ProductReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, it := range r.Items {
		rows[i] = []string{it.ProductName, itoa(it.TotalQuantity), money(it.TotalRevenue)}
	}
	return rows
}

type CategoryRevenue struct {
	CategoryName  string
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
	SaleCount     int
}

type CategoryReport struct {
	Items []CategoryRevenue
}

func (CategoryReport) Name() string { return NameByCategory }

func (CategoryReport) Header() []string {
	return []string{"category_name", "total_quantity", "total_revenue", "sale_count"}
}

func (r CategoryReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, it := range r.Items {
		rows[i] = []string{it.CategoryName, itoa(it.TotalQuantity), money(it.TotalRevenue), itoa(it.SaleCount)}
	}
	return rows
}

// MonthRevenue is one calendar month; Month is formatted YYYY-MM.
type MonthRevenue struct {
	Month        string
	TotalRevenue decimal.Decimal
	SaleCount    int
}

type MonthlyReport struct {
	Items []MonthRevenue
}

func (MonthlyReport) Name() string { return NameMonthly }

func (MonthlyReport) Header() []string {
	return []string{"month", "total_revenue", "sale_count"}
}

func (r MonthlyReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, it := range r.Items {
		rows[i] = []string{it.Month, money(it.TotalRevenue), itoa(it.SaleCount)}
	}
	return rows
}

// CustomerRevenue groups sales by (last name, first name). Two customers
// sharing both names land in the same row.
type CustomerRevenue struct {
	LastName      string
	FirstName     string
	TotalRevenue  decimal.Decimal
	PurchaseCount int
}

type CustomerReport struct {
	name  string
	Items []CustomerRevenue
}

func (r CustomerReport) Name() string { return r.name }

func (CustomerReport) Header() []string {
	return []string{"last_name", "first_name", "total_revenue", "purchase_count"}
}

func (r CustomerReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, it := range r.Items {
		rows[i] = []string{it.LastName, it.FirstName, money(it.TotalRevenue), itoa(it.PurchaseCount)}
	}
	return rows
}

type TierRevenue struct {
	LoyaltyTier   domain.LoyaltyTier
	PurchaseCount int
	TotalRevenue  decimal.Decimal
	MeanBasket    decimal.Decimal
}

type TierReport struct {
	Items []TierRevenue
}

func (TierReport) Name() string { return NameByLoyaltyTier }

func (TierReport) Header() []string {
	return []string{"loyalty_tier", "purchase_count", "total_revenue", "mean_basket"}
}

func (r TierReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, it := range r.Items {
		rows[i] = []string{string(it.LoyaltyTier), itoa(it.PurchaseCount), money(it.TotalRevenue), money(it.MeanBasket)}
	}
	return rows
}

// DensityReport counts sales per (weekday, hour). Weekday 0 is Sunday.
type DensityReport struct {
	Counts [7][24]int
}

func (DensityReport) Name() string { return NameDensity }

func (DensityReport) Header() []string {
	return []string{"weekday", "hour", "sale_count"}
}

func (r DensityReport) Rows() [][]string {
	rows := make([][]string, 0, 7*24)
	for day := range r.Counts {
		for hour, n := range r.Counts[day] {
			rows = append(rows, []string{itoa(day), itoa(hour), itoa(n)})
		}
	}
	return rows
}

// Summarize computes the global summary. Means are 0 when there is no sale.
func Summarize(facts []domain.SaleFact) Summary {
	s := Summary{Count: len(facts)}
	var quantity int64
	for _, f := range facts {
		s.TotalRevenue = s.TotalRevenue.Add(f.TotalAmount)
		quantity += int64(f.Quantity)
	}
	if s.Count > 0 {
		n := decimal.NewFromInt(int64(s.Count))
		s.MeanAmount = s.TotalRevenue.Div(n)
		s.MeanQuantity = decimal.NewFromInt(quantity).Div(n)
	}
	return s
}

// ByProduct groups by product name, highest revenue first.
func ByProduct(facts []domain.SaleFact) ProductReport {
	g := newGroups[string, ProductRevenue]()
	for _, f := range facts {
		row := g.get(f.ProductName, func() ProductRevenue { return ProductRevenue{ProductName: f.ProductName} })
		row.TotalQuantity += int64(f.Quantity)
		row.TotalRevenue = row.TotalRevenue.Add(f.TotalAmount)
	}
	items := g.items
	slices.SortStableFunc(items, func(a, b ProductRevenue) int { return b.TotalRevenue.Cmp(a.TotalRevenue) })
	return ProductReport{name: NameByProduct, Items: items}
}

// ByCategory groups by category name, highest revenue first. Sales of
// products without a category are left out.
func ByCategory(facts []domain.SaleFact) CategoryReport {
	g := newGroups[string, CategoryRevenue]()
	for _, f := range facts {
		if f.CategoryName == "" {
			continue
		}
		row := g.get(f.CategoryName, func() CategoryRevenue { return CategoryRevenue{CategoryName: f.CategoryName} })
		row.TotalQuantity += int64(f.Quantity)
		row.TotalRevenue = row.TotalRevenue.Add(f.TotalAmount)
		row.SaleCount++
	}
	items := g.items
	slices.SortStableFunc(items, func(a, b CategoryRevenue) int { return b.TotalRevenue.Cmp(a.TotalRevenue) })
	return CategoryReport{Items: items}
}

// Monthly truncates sale dates to the month, oldest month first.
func Monthly(facts []domain.SaleFact) MonthlyReport {
	g := newGroups[time.Time, MonthRevenue]()
	for _, f := range facts {
		y, m, _ := f.SaleDate.Date()
		key := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		row := g.get(key, func() MonthRevenue { return MonthRevenue{Month: key.Format("2006-01")} })
		row.TotalRevenue = row.TotalRevenue.Add(f.TotalAmount)
		row.SaleCount++
	}
	items := g.items
	slices.SortStableFunc(items, func(a, b MonthRevenue) int { return cmp.Compare(a.Month, b.Month) })
	return MonthlyReport{Items: items}
}

// ByCustomer groups sales that have a customer, highest revenue first.
func ByCustomer(facts []domain.SaleFact) CustomerReport {
	type key struct{ last, first string }
	g := newGroups[key, CustomerRevenue]()
	for _, f := range facts {
		if f.Customer == nil {
			continue
		}
		c := f.Customer
		row := g.get(key{c.LastName, c.FirstName}, func() CustomerRevenue {
			return CustomerRevenue{LastName: c.LastName, FirstName: c.FirstName}
		})
		row.TotalRevenue = row.TotalRevenue.Add(f.TotalAmount)
		row.PurchaseCount++
	}
	items := g.items
	slices.SortStableFunc(items, func(a, b CustomerRevenue) int { return b.TotalRevenue.Cmp(a.TotalRevenue) })
	return CustomerReport{name: NameByCustomer, Items: items}
}

// ByLoyaltyTier always lists the three tiers. Sales without a customer or
// without a tier are left out.
func ByLoyaltyTier(facts []domain.SaleFact) TierReport {
	items := make([]TierRevenue, len(domain.LoyaltyTiers))
	index := make(map[domain.LoyaltyTier]int, len(domain.LoyaltyTiers))
	for i, tier := range domain.LoyaltyTiers {
		items[i] = TierRevenue{LoyaltyTier: tier}
		index[tier] = i
	}
	for _, f := range facts {
		if f.Customer == nil {
			continue
		}
		i, ok := index[f.Customer.LoyaltyTier]
		if !ok {
			continue
		}
		items[i].PurchaseCount++
		items[i].TotalRevenue = items[i].TotalRevenue.Add(f.TotalAmount)
	}
	for i := range items {
		if items[i].PurchaseCount > 0 {
			items[i].MeanBasket = items[i].TotalRevenue.Div(decimal.NewFromInt(int64(items[i].PurchaseCount)))
		}
	}
	slices.SortStableFunc(items, func(a, b TierRevenue) int { return b.TotalRevenue.Cmp(a.TotalRevenue) })
	return TierReport{Items: items}
}

// TopProducts is ByProduct cut to TopN rows.
func TopProducts(facts []domain.SaleFact) ProductReport {
	r := ByProduct(facts)
	return ProductReport{name: NameTopProducts, Items: head(r.Items, TopN)}
}

// TopCustomers is ByCustomer cut to TopN rows.
func TopCustomers(facts []domain.SaleFact) CustomerReport {
	r := ByCustomer(facts)
	return CustomerReport{name: NameTopCustomers, Items: head(r.Items, TopN)}
}

// Density fills the 7×24 grid; cells without a sale stay 0.
func Density(facts []domain.SaleFact) DensityReport {
	var r DensityReport
	for _, f := range facts {
		r.Counts[f.SaleDate.Weekday()][f.SaleDate.Hour()]++
	}
	return r
}

// groups keeps aggregation rows in first-seen order so that a stable sort
// breaks ties by first appearance.
type groups[K comparable, V any] struct {
	index map[K]int
	items []V
}

func newGroups[K comparable, V any]() *groups[K, V] {
	return &groups[K, V]{index: make(map[K]int), items: make([]V, 0)}
}

func (g *groups[K, V]) get(key K, init func() V) *V {
	i, ok := g.index[key]
	if !ok {
		i = len(g.items)
		g.index[key] = i
		g.items = append(g.items, init())
	}
	return &g.items[i]
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return slices.Clone(items)
}
