package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tropicaldog17/folio/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultPath is the local store file. It differs from the portfolio.db
	// written by older versions so both can live in one directory.
	DefaultPath = "folio.db"
)

// ErrLegacyStore is returned when a SQLite file still has the old schema.
var ErrLegacyStore = errors.New("database holds a legacy portfolio (prices table); import it into a new store with folioctl import-legacy")

// Config holds database configuration
type Config struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// Debug logs every SQL statement
	Debug bool `yaml:"debug"`
}

// DefaultConfig is a local SQLite file in the working directory.
func DefaultConfig() Config {
	return Config{
		Driver:  DriverSQLite,
		Path:    DefaultPath,
		Host:    "localhost",
		Port:    "5432",
		User:    "folio",
		Name:    "folio",
		SSLMode: "disable",
	}
}

// PostgresDSN builds a key/value connection string for PostgreSQL.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// DB wraps the GORM database connection
type DB struct {
	*gorm.DB
}

// Connect establishes a GORM connection to the configured database.
// SQLite schemas are migrated automatically; PostgreSQL schemas are owned by
// the SQL files applied through RunMigrations.
func Connect(config Config) (*DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverSQLite, "":
		path := config.Path
		if path == "" {
			path = DefaultPath
		}
		dialector = sqlite.Open(path)
	case DriverPostgres:
		dialector = postgres.Open(config.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if config.Debug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if config.Driver == DriverPostgres {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// a single writer keeps SQLite free of "database is locked" errors
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{db}
	if config.Driver != DriverPostgres {
		if database.isLegacyStore() {
			sqlDB.Close()
			return nil, ErrLegacyStore
		}
		if err := database.AutoMigrate(); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}
	return database, nil
}

// isLegacyStore reports an old-style file: a prices table and no snapshots.
// Migrating it in place would rewrite the legacy positions table.
func (db *DB) isLegacyStore() bool {
	m := db.Migrator()
	return m.HasTable("prices") && !m.HasTable("price_snapshots")
}

// AutoMigrate creates or updates the position and snapshot tables.
func (db *DB) AutoMigrate() error {
	if err := db.DB.AutoMigrate(&models.Position{}, &models.PriceSnapshot{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database connection is healthy
func (db *DB) Health() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
