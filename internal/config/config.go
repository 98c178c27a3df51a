package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_ENV"` name the environment variable and
// `default:""` provides the value used when it is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Database   DatabaseConfig
	Generator  GeneratorConfig
	Reports    ReportsConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port           string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite   time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	RateLimitRPS   float64       `envconfig:"HTTP_RATE_LIMIT_RPS" default:"20"` // 0 disables limiting
	RateLimitBurst int           `envconfig:"HTTP_RATE_LIMIT_BURST" default:"40"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig selects the storage engine. SQLite is the default so the
// pipeline runs without any server; Postgres needs the POSTGRES_* variables.
// The memory driver keeps the dataset for the lifetime of one process.
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite3"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"sales.db"`
	Postgres   PostgresConfig
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" validate:"required"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432" validate:"required,numeric"`
	User     string `envconfig:"POSTGRES_USER" validate:"required"`
	Password string `envconfig:"POSTGRES_PASSWORD" validate:"required"`
	DBName   string `envconfig:"POSTGRES_DBNAME" validate:"required"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// DSN returns the driver-specific data source name.
func (dc *DatabaseConfig) DSN() string {
	if dc.Driver == DriverPostgres {
		return dc.Postgres.DSN()
	}
	return dc.SQLitePath + "?_foreign_keys=on"
}

// GeneratorConfig drives the synthetic data generator.
// Range checks live in the generator, which reports them as InvalidRange.
type GeneratorConfig struct {
	Seed                *uint64 `envconfig:"GENERATOR_SEED"` // unset means a random seed per run
	Categories          int     `envconfig:"GENERATOR_CATEGORIES" default:"10"`
	ProductsPerCategory int     `envconfig:"GENERATOR_PRODUCTS_PER_CATEGORY" default:"10"`
	Customers           int     `envconfig:"GENERATOR_CUSTOMERS" default:"150"`
	Sales               int     `envconfig:"GENERATOR_SALES" default:"500"`
	PriceMin            float64 `envconfig:"GENERATOR_PRICE_MIN" default:"5"`
	PriceMax            float64 `envconfig:"GENERATOR_PRICE_MAX" default:"500"`
	CostRatioMin        float64 `envconfig:"GENERATOR_COST_RATIO_MIN" default:"0.3"`
	CostRatioMax        float64 `envconfig:"GENERATOR_COST_RATIO_MAX" default:"0.7"`
	RegistrationStart   Date    `envconfig:"GENERATOR_REGISTRATION_START" default:"2018-01-01"`
	RegistrationEnd     Date    `envconfig:"GENERATOR_REGISTRATION_END" default:"2022-12-31"`
	SaleStart           Date    `envconfig:"GENERATOR_SALE_START" default:"2023-01-01"`
	SaleEnd             Date    `envconfig:"GENERATOR_SALE_END" default:"2023-12-31"`
	AnonymousSaleRate   float64 `envconfig:"GENERATOR_ANONYMOUS_SALE_RATE" default:"0"`
}

// ReportsConfig controls where report tables are exported.
type ReportsConfig struct {
	OutputDir string `envconfig:"REPORTS_OUTPUT_DIR" default:"reports"`
}

// Date is a calendar date read from a YYYY-MM-DD environment value.
type Date struct {
	time.Time
}

// Decode implements envconfig.Decoder.
func (d *Date) Decode(value string) error {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	d.Time = t
	return nil
}

// Load reads the configuration from environment variables and validates it.
// Callers load .env files (godotenv) before calling Load.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural parts of the configuration.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(struct {
		AppEnv string  `validate:"oneof=development staging production"`
		Driver string  `validate:"oneof=sqlite3 postgres memory"`
		RPS    float64 `validate:"gte=0"`
		Burst  int     `validate:"gte=0"`
	}{c.AppEnv, c.Database.Driver, c.HttpServer.RateLimitRPS, c.HttpServer.RateLimitBurst}); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Database.Driver == DriverPostgres {
		if err := v.Struct(c.Database.Postgres); err != nil {
			return fmt.Errorf("invalid postgres configuration: %w", err)
		}
	}
	return nil
}
