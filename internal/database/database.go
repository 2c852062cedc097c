package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"musicd/config"
	"musicd/internal/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB wraps the single sqlite connection the cache store is built on.
// There is exactly one writer process and one reader process (spec §5),
// so unlike the teacher's Postgres-backed DB there is no connection
// pool or cache tier to manage here.
type DB struct {
	SQL  *gorm.DB
	path string
	log  logger.Logger
}

func New(cfg config.Config) (DB, error) {
	log := logger.New("database").Function("New")

	log.Info("Initializing cache database", "path", cfg.CacheDatabasePath)
	db := &DB{log: log, path: cfg.CacheDatabasePath}

	if err := db.initializeDB(); err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	return *db, nil
}

// NewInMemory opens a process-local in-memory sqlite database and applies
// every migration, for cache-store and synchronizer integration tests.
// cache=shared keeps the single in-memory database visible across the
// connection pool instead of each connection getting its own private
// database, which is sqlite's default for ":memory:".
func NewInMemory() (DB, error) {
	log := logger.New("database").Function("NewInMemory")

	db := &DB{log: log, path: "file::memory:?cache=shared&_foreign_keys=on"}

	gdb, err := gorm.Open(sqlite.Open(db.path), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return DB{}, log.Err("failed to open in-memory sqlite database", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return DB{}, log.Err("failed to get database handle from GORM", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.SQL = gdb
	if err := db.Migrate(); err != nil {
		return DB{}, log.Err("failed to migrate in-memory database", err)
	}

	return *db, nil
}

func TXDefer(tx *gorm.DB, log logger.Logger) {
	if tx.Error != nil {
		log.Er("failed to commit transaction", tx.Error)
		tx.Rollback()
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Er("failed to commit transaction", err)
	}
}

func (db *DB) initializeDB() error {
	log := db.log.Function("initializeDB")

	if db.path == "" {
		return log.Error("cache database path is empty")
	}

	gLogger := gormLogger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
		gormLogger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  gormLogger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)

	gormConfig := &gorm.Config{
		Logger:                 gLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	// Single-writer discipline (spec §4.4/§5): WAL for concurrent
	// readers during a writer transaction, foreign_keys for cascading
	// deletes, and a busy timeout long enough that a sweep never trips
	// SQLITE_BUSY against the watcher's refreshes (or vice versa).
	dsn := fmt.Sprintf(
		"%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=15000&_txlock=immediate",
		db.path,
	)

	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return log.Err("failed to open sqlite database with GORM", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return log.Err("failed to get database handle from GORM", err)
	}

	// A single writer connection matches sqlite's single-writer model;
	// readers share it under WAL without blocking on the writer.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping sqlite database", err)
	}

	log.Info("Successfully connected to sqlite cache database")
	db.SQL = gdb
	return nil
}

func (db *DB) Close() error {
	if db.SQL == nil {
		return nil
	}

	sqlDB, err := db.SQL.DB()
	if err != nil {
		return db.log.Err("failed to get database handle for close", err)
	}

	if err := sqlDB.Close(); err != nil {
		return db.log.Err("failed to close database", err)
	}

	return nil
}

func (db *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return db.SQL.WithContext(ctx)
}

// Checkpoint truncates the WAL file back to nothing, bounding its growth
// after a full-library sweep's write burst (SPEC_FULL.md's WAL
// checkpointing addition, grounded in rose/cache/database.py's
// journal_mode=WAL pragma and general sqlite operational practice).
func (db *DB) Checkpoint(ctx context.Context) error {
	log := db.log.Function("Checkpoint")
	if err := db.SQL.WithContext(ctx).Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return log.Err("failed to checkpoint WAL", err)
	}
	return nil
}
