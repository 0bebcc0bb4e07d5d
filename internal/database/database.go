// Package database opens the GORM connection for the SQL-backed repository.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memorabilia-market/internal/config"
	model "memorabilia-market/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LogrusGormLogger routes GORM logging through logrus
type LogrusGormLogger struct {
	log    *logrus.Logger
	Config logger.Config
}

// NewLogrusGormLogger returns a GORM logger that warns on slow queries and errors
func NewLogrusGormLogger(log *logrus.Logger) *LogrusGormLogger {
	return &LogrusGormLogger{
		log: log,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	}
}

// LogMode sets the logging level and returns a new logger instance.
func (l *LogrusGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.Config.LogLevel = level
	return &newLogger
}

func (l *LogrusGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.log.WithContext(ctx).Infof(msg, data...)
	}
}

func (l *LogrusGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.log.WithContext(ctx).Warnf(msg, data...)
	}
}

func (l *LogrusGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.log.WithContext(ctx).Errorf(msg, data...)
	}
}

// Trace logs SQL statements according to the configured level
func (l *LogrusGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := l.log.WithContext(ctx).WithFields(logrus.Fields{
		"sql":     sql,
		"rows":    rows,
		"elapsed": elapsed.String(),
	})

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error &&
		!(l.Config.IgnoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound)):
		entry.WithField("error", err.Error()).Error("gorm query error")
	case l.Config.SlowThreshold != 0 && elapsed > l.Config.SlowThreshold && l.Config.LogLevel >= logger.Warn:
		entry.Warn("gorm slow query")
	case l.Config.LogLevel >= logger.Info:
		entry.Info("gorm query")
	}
}

// Open connects to the database selected by cfg.StoreDriver and migrates the schema
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	case config.StorePostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("database: unsupported store driver %q", cfg.StoreDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewLogrusGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", cfg.StoreDriver, err)
	}

	if cfg.StoreDriver == config.StoreSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database: get sql handle: %w", err)
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the marketplace tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Bid{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
