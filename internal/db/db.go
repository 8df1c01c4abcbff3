package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/config"
)

// New opens the configured database. DSNs starting with "file:" or
// "sqlite://" select the embedded SQLite driver, anything else is handed to
// PostgreSQL.
func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dialector := Dialector(cfg.DB.DSN)

	level := gormLevel(cfg.Log.Level)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info().Str("driver", db.Dialector.Name()).Msg("database schema up to date")
	}

	return db, nil
}

func Dialector(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(dsn)
	default:
		return postgres.Open(dsn)
	}
}

func gormLevel(logLevel string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "trace", "debug":
		return LogLevelInfo
	case "error", "fatal", "panic":
		return LogLevelError
	default:
		return LogLevelWarn
	}
}
