package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Connect opens the configured database and verifies it with a ping.
func Connect(cfg Config) (*gorm.DB, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	dialector, err := open(cfg, timeout)
	if err != nil {
		return nil, err
	}

	// Every write runs inside an explicit transaction, so gorm's implicit
	// per-statement transaction is skipped.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// an in-memory database exists once per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 20
		}
		sqlDB.SetMaxIdleConns(min(10, maxOpen))
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func open(cfg Config, timeout int) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return sqlite.Open(cfg.Name), nil
	case DriverMySQL:
		userInfo := url.UserPassword(cfg.User, cfg.Password).String()
		dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
			userInfo, cfg.Host, cfg.Port, cfg.Name, timeout, timeout, timeout)
		return mysql.Open(dsn), nil
	case DriverPostgres, "":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:   cfg.Name,
		}
		q := u.Query()
		q.Set("connect_timeout", fmt.Sprint(timeout))
		q.Set("sslmode", "disable")
		if cfg.Schema != "" {
			q.Set("search_path", cfg.Schema)
		}
		u.RawQuery = q.Encode()
		return postgres.Open(u.String()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Truncate empties a table and restarts its identity where the dialect
// supports it.
func Truncate(tx *gorm.DB, table string) error {
	var err error
	switch tx.Dialector.Name() {
	case DriverPostgres:
		err = tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY", quote(tx, table))).Error
	case DriverMySQL:
		err = tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s", quote(tx, table))).Error
	default:
		err = tx.Exec(fmt.Sprintf("DELETE FROM %s", quote(tx, table))).Error
		if err == nil && tx.Migrator().HasTable("sqlite_sequence") {
			err = tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
		}
	}
	if err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}

func quote(tx *gorm.DB, name string) string {
	stmt := &gorm.Statement{DB: tx}
	return stmt.Quote(name)
}
