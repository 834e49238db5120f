package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"ecomm-product-bot/pkg/failure"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// VectorDBConfig describes the externally hosted pgvector database.
type VectorDBConfig struct {
	Endpoint  string // postgres://user@host:5432/db
	Token     string
	Namespace string
	LogLevel  string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func getLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  parseLogLevel(level),
			IgnoreRecordNotFoundError: true, // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// BuildDSN injects the token as the connection password. An explicit
// password already present in the endpoint is replaced.
func BuildDSN(endpoint, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", failure.Configuration("database.dsn", fmt.Errorf("invalid VECTOR_DB_ENDPOINT: %w", err))
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", failure.Configuration("database.dsn", fmt.Errorf("VECTOR_DB_ENDPOINT must be a postgres:// URL, got scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return "", failure.Configuration("database.dsn", fmt.Errorf("VECTOR_DB_ENDPOINT has no host"))
	}

	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, token)

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// QuoteIdentifier validates a schema or table name before it is spliced into DDL.
func QuoteIdentifier(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", failure.Configuration("database.identifier", fmt.Errorf("invalid identifier %q", name))
	}
	return `"` + name + `"`, nil
}

func NewGormDBFromDSN(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(logLevel),
	})
	if err != nil {
		return nil, failure.Transient("database.open", err)
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// NewVectorDB connects and prepares the namespace: the pgvector extension and
// a schema named after the namespace.
func NewVectorDB(ctx context.Context, cfg VectorDBConfig) (*gorm.DB, error) {
	dsn, err := BuildDSN(cfg.Endpoint, cfg.Token)
	if err != nil {
		return nil, err
	}
	schema, err := QuoteIdentifier(cfg.Namespace)
	if err != nil {
		return nil, err
	}

	db, err := NewGormDBFromDSN(dsn, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, failure.Remote("database.extension", err)
	}
	if err := db.WithContext(ctx).Exec("CREATE SCHEMA IF NOT EXISTS " + schema).Error; err != nil {
		return nil, failure.Remote("database.schema", err)
	}

	return db, nil
}
