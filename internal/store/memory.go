package store

import (
	"context"
	"fmt"
	"sync"

	"retail-sales-analytics/internal/domain"
)

// MemoryStore is an in-process Storer and FactReader. It enforces the same
// foreign keys and checks as the SQL schema and applies every batch
// atomically, so it can stand in for a database in tests and one-shot runs.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []domain.Category
	products   []domain.Product
	customers  []domain.Customer
	sales      []domain.Sale
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Reset removes every row; ids start at 1 again.
func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories, m.products, m.customers, m.sales = nil, nil, nil, nil
	return nil
}

func (m *MemoryStore) InsertCategories(ctx context.Context, categories []domain.Category) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := make([]domain.Category, len(categories))
	next := int64(len(m.categories)) + 1
	for i, c := range categories {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		c.ID = next + int64(i)
		created[i] = c
	}
	m.categories = append(m.categories, created...)
	return cloneSlice(created), nil
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSlice(m.categories), nil
}

func (m *MemoryStore) InsertProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := make([]domain.Product, len(products))
	next := int64(len(m.products)) + 1
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if p.CategoryID != 0 && !hasID(int64(len(m.categories)), p.CategoryID) {
			return nil, &domain.ConstraintViolation{
				Stage:     domain.StageProducts,
				Invariant: fmt.Sprintf("insert product %q", p.Name),
				Err:       fmt.Errorf("%w: category_id %d", ErrForeignKey, p.CategoryID),
			}
		}
		p.ID = next + int64(i)
		created[i] = p
	}
	m.products = append(m.products, created...)
	return cloneSlice(created), nil
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSlice(m.products), nil
}

func (m *MemoryStore) InsertCustomers(ctx context.Context, customers []domain.Customer) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := make([]domain.Customer, len(customers))
	next := int64(len(m.customers)) + 1
	for i, c := range customers {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		c.ID = next + int64(i)
		created[i] = c
	}
	m.customers = append(m.customers, created...)
	return cloneSlice(created), nil
}

func (m *MemoryStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSlice(m.customers), nil
}

func (m *MemoryStore) InsertSales(ctx context.Context, sales []domain.Sale) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := make([]domain.Sale, len(sales))
	next := int64(len(m.sales)) + 1
	for i, s := range sales {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if !hasID(int64(len(m.products)), s.ProductID) {
			return nil, &domain.ConstraintViolation{
				Stage:     domain.StageSales,
				Invariant: fmt.Sprintf("insert sale for product %d", s.ProductID),
				Err:       fmt.Errorf("%w: product_id %d", ErrForeignKey, s.ProductID),
			}
		}
		if s.CustomerID != nil && !hasID(int64(len(m.customers)), *s.CustomerID) {
			return nil, &domain.ConstraintViolation{
				Stage:     domain.StageSales,
				Invariant: fmt.Sprintf("insert sale for product %d", s.ProductID),
				Err:       fmt.Errorf("%w: customer_id %d", ErrForeignKey, *s.CustomerID),
			}
		}
		s.ID = next + int64(i)
		created[i] = s
	}
	m.sales = append(m.sales, created...)
	return cloneSlice(created), nil
}

func (m *MemoryStore) ListSales(ctx context.Context) ([]domain.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSlice(m.sales), nil
}

// ListSaleFacts joins in memory. Ids are dense, so a row's id is its
// position plus one.
func (m *MemoryStore) ListSaleFacts(ctx context.Context) ([]domain.SaleFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	facts := make([]domain.SaleFact, 0, len(m.sales))
	for _, s := range m.sales {
		p := m.products[s.ProductID-1]
		f := domain.SaleFact{
			SaleID:        s.ID,
			SaleDate:      s.SaleDate,
			Quantity:      s.Quantity,
			TotalAmount:   s.TotalAmount,
			PaymentMethod: s.PaymentMethod,
			ProductID:     p.ID,
			ProductName:   p.Name,
		}
		if p.CategoryID != 0 {
			f.CategoryName = m.categories[p.CategoryID-1].Name
		}
		if s.CustomerID != nil {
			c := m.customers[*s.CustomerID-1]
			f.Customer = &domain.CustomerRef{
				ID:          c.ID,
				LastName:    c.LastName,
				FirstName:   c.GivenName(),
				LoyaltyTier: c.LoyaltyTier,
			}
		}
		facts = append(facts, f)
	}
	return facts, nil
}

func hasID(count, id int64) bool {
	return id >= 1 && id <= count
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
