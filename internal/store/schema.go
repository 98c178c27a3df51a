package store

import "fmt"

// Dialect carries the engine-specific DDL. Queries themselves use $N
// placeholders, which both lib/pq and go-sqlite3 accept.
type Dialect struct {
	Name   string
	create []string
	drop   []string
	reset  []string
}

var dropTables = []string{
	`DROP TABLE IF EXISTS sales;`,
	`DROP TABLE IF EXISTS customers;`,
	`DROP TABLE IF EXISTS products;`,
	`DROP TABLE IF EXISTS categories;`,
}

// PostgresDialect targets PostgreSQL through lib/pq.
var PostgresDialect = Dialect{
	Name: "postgres",
	drop: dropTables,
	create: []string{
		`CREATE TABLE categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT
		);`,
		`CREATE TABLE products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			category_id BIGINT REFERENCES categories(id),
			unit_price NUMERIC(12,2) NOT NULL CHECK (unit_price > 0),
			production_cost NUMERIC(12,2),
			stock_level INTEGER
		);`,
		`CREATE TABLE customers (
			id BIGSERIAL PRIMARY KEY,
			last_name TEXT NOT NULL,
			first_name TEXT,
			email TEXT,
			phone TEXT,
			city TEXT,
			registration_date DATE,
			loyalty_tier TEXT CHECK (loyalty_tier IN ('Occasional', 'Regular', 'Loyal'))
		);`,
		`CREATE TABLE sales (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			customer_id BIGINT REFERENCES customers(id),
			sale_date DATE NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
			payment_method TEXT CHECK (payment_method IN ('Card', 'Cash', 'Transfer', 'Check'))
		);`,
	},
	reset: []string{
		`TRUNCATE sales, customers, products, categories RESTART IDENTITY;`,
	},
}

// SQLiteDialect targets SQLite through go-sqlite3. Foreign keys are only
// enforced when the DSN carries _foreign_keys=on.
var SQLiteDialect = Dialect{
	Name: "sqlite3",
	drop: dropTables,
	create: []string{
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT
		);`,
		`CREATE TABLE products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category_id INTEGER REFERENCES categories(id),
			unit_price REAL NOT NULL CHECK (unit_price > 0),
			production_cost REAL,
			stock_level INTEGER
		);`,
		`CREATE TABLE customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			last_name TEXT NOT NULL,
			first_name TEXT,
			email TEXT,
			phone TEXT,
			city TEXT,
			registration_date DATE,
			loyalty_tier TEXT CHECK (loyalty_tier IN ('Occasional', 'Regular', 'Loyal'))
		);`,
		`CREATE TABLE sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id),
			customer_id INTEGER REFERENCES customers(id),
			sale_date DATE NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			total_amount REAL NOT NULL CHECK (total_amount >= 0),
			payment_method TEXT CHECK (payment_method IN ('Card', 'Cash', 'Transfer', 'Check'))
		);`,
	},
	reset: []string{
		`DELETE FROM sales;`,
		`DELETE FROM customers;`,
		`DELETE FROM products;`,
		`DELETE FROM categories;`,
		`DELETE FROM sqlite_sequence WHERE name IN ('sales', 'customers', 'products', 'categories');`,
	},
}

// DialectFor returns the dialect registered for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case PostgresDialect.Name:
		return PostgresDialect, nil
	case SQLiteDialect.Name:
		return SQLiteDialect, nil
	default:
		return Dialect{}, fmt.Errorf("store: unsupported driver %q", driverName)
	}
}
