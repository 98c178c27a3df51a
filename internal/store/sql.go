package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"retail-sales-analytics/internal/domain"
)

// Predefined errors for store operations
var (
	ErrForeignKey = errors.New("store: foreign key violation")
	ErrCheck      = errors.New("store: check constraint violation")
)

// SQLStore implements the Storer and FactReader interfaces over database/sql.
// The same queries run on PostgreSQL and SQLite; only the DDL differs.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
}

// NewSQLStore creates a new SQLStore instance.
func NewSQLStore(db *sql.DB, dialect Dialect, logger zerolog.Logger) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, logger: logger.With().Str("component", "store").Logger()}
}

// Open opens and pings a database for the given driver.
func Open(ctx context.Context, driverName, dsn string, logger zerolog.Logger) (*SQLStore, error) {
	dialect, err := DialectFor(driverName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: Open failed to initialize %s connection: %w", driverName, err)
	}
	if dialect.Name == SQLiteDialect.Name {
		// A single connection keeps one writer and the FK pragma on every query.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: Open failed to ping %s: %w", driverName, err)
	}
	return NewSQLStore(db, dialect, logger), nil
}

// DB exposes the underlying pool, e.g. for health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

// --- Schema ---

// CreateSchema drops the four tables if present and creates them again.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	statements := append(append([]string{}, s.dialect.drop...), s.dialect.create...)
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: CreateSchema failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	s.logger.Info().Str("dialect", s.dialect.Name).Msg("schema created")
	return nil
}

// Reset removes every row and restarts the id sequences.
func (s *SQLStore) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range s.dialect.reset {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("store: Reset failed to execute %q: %w", stmt, err)
			}
		}
		return nil
	})
}

// --- CategoryStorer Implementation ---

func (s *SQLStore) InsertCategories(ctx context.Context, categories []domain.Category) ([]domain.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id;
	`
	if len(categories) == 0 {
		return []domain.Category{}, nil
	}
	if err := validateBatch(categories); err != nil {
		return nil, err
	}
	created := make([]domain.Category, len(categories))
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, c := range categories {
			if err := tx.QueryRowContext(ctx, query, c.Name, c.Description).Scan(&c.ID); err != nil {
				return classify(err, domain.StageCategories, fmt.Sprintf("insert category %q", c.Name))
			}
			created[i] = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, description
		FROM categories
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("store: ListCategories failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}
	return categories, nil
}

// --- ProductStorer Implementation ---

func (s *SQLStore) InsertProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	query := `
		INSERT INTO products (name, category_id, unit_price, production_cost, stock_level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	if len(products) == 0 {
		return []domain.Product{}, nil
	}
	if err := validateBatch(products); err != nil {
		return nil, err
	}
	created := make([]domain.Product, len(products))
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, p := range products {
			err := tx.QueryRowContext(ctx, query,
				p.Name, nullableID(p.CategoryID), p.UnitPrice, p.ProductionCost, p.StockLevel,
			).Scan(&p.ID)
			if err != nil {
				return classify(err, domain.StageProducts, fmt.Sprintf("insert product %q", p.Name))
			}
			created[i] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, category_id, unit_price, production_cost, stock_level
		FROM products
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p          domain.Product
			categoryID sql.NullInt64
			cost       decimal.NullDecimal
			stock      sql.NullInt32
		)
		if err := rows.Scan(&p.ID, &p.Name, &categoryID, &p.UnitPrice, &cost, &stock); err != nil {
			return nil, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		p.CategoryID = categoryID.Int64
		if cost.Valid {
			p.ProductionCost = &cost.Decimal
		}
		if stock.Valid {
			p.StockLevel = &stock.Int32
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, nil
}

// --- CustomerStorer Implementation ---

func (s *SQLStore) InsertCustomers(ctx context.Context, customers []domain.Customer) ([]domain.Customer, error) {
	query := `
		INSERT INTO customers (last_name, first_name, email, phone, city, registration_date, loyalty_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	if len(customers) == 0 {
		return []domain.Customer{}, nil
	}
	if err := validateBatch(customers); err != nil {
		return nil, err
	}
	created := make([]domain.Customer, len(customers))
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, c := range customers {
			err := tx.QueryRowContext(ctx, query,
				c.LastName, c.FirstName, c.Email, c.Phone, c.City, c.RegistrationDate, c.LoyaltyTier,
			).Scan(&c.ID)
			if err != nil {
				return classify(err, domain.StageCustomers, fmt.Sprintf("insert customer %q", c.LastName))
			}
			created[i] = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLStore) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	query := `
		SELECT id, last_name, first_name, email, phone, city, registration_date, loyalty_tier
		FROM customers
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListCustomers failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.ID, &c.LastName, &c.FirstName, &c.Email, &c.Phone, &c.City,
			&c.RegistrationDate, &c.LoyaltyTier,
		); err != nil {
			return nil, fmt.Errorf("store: ListCustomers failed to scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListCustomers iteration error: %w", err)
	}
	return customers, nil
}

// --- SaleStorer Implementation ---

func (s *SQLStore) InsertSales(ctx context.Context, sales []domain.Sale) ([]domain.Sale, error) {
	query := `
		INSERT INTO sales (product_id, customer_id, sale_date, quantity, total_amount, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	if len(sales) == 0 {
		return []domain.Sale{}, nil
	}
	if err := validateBatch(sales); err != nil {
		return nil, err
	}
	created := make([]domain.Sale, len(sales))
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, sale := range sales {
			err := tx.QueryRowContext(ctx, query,
				sale.ProductID, sale.CustomerID, sale.SaleDate, sale.Quantity, sale.TotalAmount, sale.PaymentMethod,
			).Scan(&sale.ID)
			if err != nil {
				return classify(err, domain.StageSales, fmt.Sprintf("insert sale for product %d", sale.ProductID))
			}
			created[i] = sale
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLStore) ListSales(ctx context.Context) ([]domain.Sale, error) {
	query := `
		SELECT id, product_id, customer_id, sale_date, quantity, total_amount, payment_method
		FROM sales
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListSales failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(
			&sale.ID, &sale.ProductID, &sale.CustomerID, &sale.SaleDate,
			&sale.Quantity, &sale.TotalAmount, &sale.PaymentMethod,
		); err != nil {
			return nil, fmt.Errorf("store: ListSales failed to scan sale row: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListSales iteration error: %w", err)
	}
	return sales, nil
}

// --- FactReader Implementation ---

func (s *SQLStore) ListSaleFacts(ctx context.Context) ([]domain.SaleFact, error) {
	query := `
		SELECT s.id, s.sale_date, s.quantity, s.total_amount, s.payment_method,
			p.id, p.name, c.name,
			cu.id, cu.last_name, cu.first_name, cu.loyalty_tier
		FROM sales s
		JOIN products p ON s.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN customers cu ON s.customer_id = cu.id
		ORDER BY s.id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListSaleFacts failed to query sales: %w", err)
	}
	defer rows.Close()

	facts := make([]domain.SaleFact, 0)
	for rows.Next() {
		var (
			f          domain.SaleFact
			category   sql.NullString
			customerID sql.NullInt64
			lastName   sql.NullString
			firstName  sql.NullString
			tier       domain.LoyaltyTier
		)
		if err := rows.Scan(
			&f.SaleID, &f.SaleDate, &f.Quantity, &f.TotalAmount, &f.PaymentMethod,
			&f.ProductID, &f.ProductName, &category,
			&customerID, &lastName, &firstName, &tier,
		); err != nil {
			return nil, fmt.Errorf("store: ListSaleFacts failed to scan row: %w", err)
		}
		f.CategoryName = category.String
		if customerID.Valid {
			f.Customer = &domain.CustomerRef{
				ID:          customerID.Int64,
				LastName:    lastName.String,
				FirstName:   firstName.String,
				LoyaltyTier: tier,
			}
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListSaleFacts iteration error: %w", err)
	}
	return facts, nil
}

// Close closes the database connection pool.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Debug().Msg("closing database connection pool")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: Close failed: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction and commits only if fn succeeds.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

// validateBatch checks every row before a transaction is opened, so an
// invalid batch runs no statement at all.
func validateBatch[T interface{ Validate() error }](rows []T) error {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// nullableID binds the zero id as NULL.
func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// classify turns integrity errors from either driver into a
// domain.ConstraintViolation and wraps everything else.
func classify(err error, stage domain.Stage, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return &domain.ConstraintViolation{Stage: stage, Invariant: op, Err: fmt.Errorf("%w: %s", ErrForeignKey, pqErr.Message)}
		case "23514": // check_violation
			return &domain.ConstraintViolation{Stage: stage, Invariant: op, Err: fmt.Errorf("%w: %s", ErrCheck, pqErr.Message)}
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &domain.ConstraintViolation{Stage: stage, Invariant: op, Err: fmt.Errorf("%w: %s", ErrForeignKey, msg)}
	case strings.Contains(msg, "CHECK constraint failed"):
		return &domain.ConstraintViolation{Stage: stage, Invariant: op, Err: fmt.Errorf("%w: %s", ErrCheck, msg)}
	}
	return fmt.Errorf("store: %s failed: %w", op, err)
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(stmt), "\n")
	return line
}
