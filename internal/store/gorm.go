package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"FinSim/internal/logger"
	"FinSim/internal/model"
)

// Config selects and tunes the database.
type Config struct {
	Driver          string // sqlite, postgres, mysql
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
}

// GormStore is the relational Store.
type GormStore struct {
	db *gorm.DB
}

// Open connects, tunes the pool and migrates the four simulation tables.
// SQLite goes through the pure-Go modernc driver.
func Open(cfg Config) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		conn, err := openSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.New(sqlite.Config{Conn: conn})
		if cfg.MaxOpenConns == 0 {
			cfg.MaxOpenConns = 1
		}
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := gormlogger.Silent
	switch cfg.LogLevel {
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&model.MarketSimulation{},
		&model.SimulatedTransaction{},
		&model.SimulatedEvent{},
		&model.DailySimulation{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("database opened", zap.String("driver", cfg.Driver))
	return &GormStore{db: db}, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("sqlite dsn is empty")
	}
	if path := strings.SplitN(dsn, "?", 2)[0]; path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	return conn, nil
}

func (g *GormStore) SaveDay(ctx context.Context, b *model.DayBatch) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.DailySimulation{}).Where("date = ?", b.Date).Count(&n).Error; err != nil {
			return fmt.Errorf("check date: %w", err)
		}
		if n > 0 {
			return ErrDuplicateDate
		}
		if len(b.Markets) > 0 {
			if err := tx.CreateInBatches(&b.Markets, 100).Error; err != nil {
				return fmt.Errorf("insert market simulations: %w", err)
			}
		}
		if len(b.Events) > 0 {
			if err := tx.CreateInBatches(&b.Events, 100).Error; err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
		}
		if len(b.Transactions) > 0 {
			if err := tx.CreateInBatches(&b.Transactions, 100).Error; err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
		}
		if err := tx.Create(&b.Summary).Error; err != nil {
			return fmt.Errorf("insert daily simulation: %w", err)
		}
		return nil
	})
}

func (g *GormStore) SaveMarket(ctx context.Context, rows []model.MarketSimulation) error {
	if len(rows) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).CreateInBatches(&rows, 100).Error
}

func (g *GormStore) DailyExists(ctx context.Context, date time.Time) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&model.DailySimulation{}).Where("date = ?", model.Day(date)).Count(&n).Error
	return n > 0, err
}

func (g *GormStore) LatestDaily(ctx context.Context) (*model.DailySimulation, error) {
	var d model.DailySimulation
	err := g.db.WithContext(ctx).Order("date DESC").First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (g *GormStore) ListDaily(ctx context.Context, f DailyFilter) ([]model.DailySimulation, error) {
	query := dateRange(g.db.WithContext(ctx).Model(&model.DailySimulation{}), f.Start, f.End).Order("date DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var rows []model.DailySimulation
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *GormStore) ListMarket(ctx context.Context, f MarketFilter) ([]model.MarketSimulation, error) {
	query := dateRange(g.db.WithContext(ctx).Model(&model.MarketSimulation{}), f.Start, f.End)
	if f.Symbol != "" {
		query = query.Where("symbol = ?", f.Symbol)
	}
	var rows []model.MarketSimulation
	if err := query.Order("date ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *GormStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]model.SimulatedTransaction, error) {
	query := dateRange(g.db.WithContext(ctx).Model(&model.SimulatedTransaction{}), f.Start, f.End)
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	query = query.Order("date DESC").Order("user_id ASC").Order("seq ASC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var rows []model.SimulatedTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *GormStore) ListEvents(ctx context.Context, f EventFilter) ([]model.SimulatedEvent, error) {
	query := dateRange(g.db.WithContext(ctx).Model(&model.SimulatedEvent{}), f.Start, f.End)
	if f.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	query = query.Order("date DESC").Order("created_at DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var rows []model.SimulatedEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *GormStore) ExpireEvents(ctx context.Context, asOf time.Time) (int64, error) {
	var active []model.SimulatedEvent
	if err := g.db.WithContext(ctx).Where("is_active = ?", true).Find(&active).Error; err != nil {
		return 0, fmt.Errorf("load active events: %w", err)
	}
	day := model.Day(asOf)
	var ids []string
	for _, e := range active {
		if !day.Before(e.ExpiresAt()) {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := g.db.WithContext(ctx).Model(&model.SimulatedEvent{}).Where("id IN ?", ids).Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (g *GormStore) Cleanup(ctx context.Context, cutoff time.Time) (CleanupResult, error) {
	var out CleanupResult
	day := model.Day(cutoff)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("date < ?", day).Delete(&model.MarketSimulation{})
		if res.Error != nil {
			return fmt.Errorf("delete market simulations: %w", res.Error)
		}
		out.Markets = res.RowsAffected

		res = tx.Where("date < ?", day).Delete(&model.SimulatedTransaction{})
		if res.Error != nil {
			return fmt.Errorf("delete transactions: %w", res.Error)
		}
		out.Transactions = res.RowsAffected

		res = tx.Where("date < ? AND is_active = ?", day, false).Delete(&model.SimulatedEvent{})
		if res.Error != nil {
			return fmt.Errorf("delete events: %w", res.Error)
		}
		out.Events = res.RowsAffected

		res = tx.Where("date < ?", day).Delete(&model.DailySimulation{})
		if res.Error != nil {
			return fmt.Errorf("delete daily simulations: %w", res.Error)
		}
		out.Daily = res.RowsAffected
		return nil
	})
	return out, err
}

func (g *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormStore) Close() error {
	logger.Info("closing database")
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dateRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("date >= ?", model.Day(*start))
	}
	if end != nil {
		q = q.Where("date <= ?", model.Day(*end))
	}
	return q
}
