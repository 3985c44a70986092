// Package database owns the PostgreSQL connection backing the conversation
// store.
package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
)

// Connect opens the GORM handle for the conversation store, creating the
// target database on first boot, and applies the pool limits from cfg.
func Connect(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dblog := log.With().Str("component", "database").Logger()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DB_POSTGRESQL_DSN is empty")
	}

	if err := createIfMissing(cfg.DatabaseURL, dblog); err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt:    true,
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		Logger:         gormlogger.Default.LogMode(gormLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open conversation store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	dblog.Info().
		Int("max_open_conns", cfg.DBMaxOpenConns).
		Int("max_idle_conns", cfg.DBMaxIdleConns).
		Msg("conversation store connected")
	return db, nil
}

// gormLevel maps the service log level onto GORM's logger: SQL statements
// surface only in debug runs, slow queries and errors always do.
func gormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// createIfMissing connects to the admin database and creates the DSN's
// target database when it does not exist yet. Non-URL DSNs are left to the
// driver to reject.
func createIfMissing(dsn string, log zerolog.Logger) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" || name == "postgres" {
		return nil
	}

	adminURL := *u
	adminURL.Path = "/postgres"
	admin, err := sql.Open("postgres", adminURL.String())
	if err != nil {
		return err
	}
	defer admin.Close()

	var exists bool
	row := admin.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)); err != nil {
		return err
	}
	log.Info().Str("database", name).Msg("created conversation database")
	return nil
}
