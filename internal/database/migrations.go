package database

import (
	"database/sql"
	"embed"

	"musicd/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDialect = "sqlite3"

// Migrate applies every pending up migration from migrations/ in order.
// Schema is file-based rather than GORM AutoMigrate because the cache
// store's conflict targets (composite primary keys on the join tables,
// ON CONFLICT DO NOTHING vs DO UPDATE) cannot be expressed through
// struct tags alone (spec §4.4, grounded in rose/cache/database.py).
func (db *DB) Migrate() error {
	log := logger.New("database").Function("Migrate")
	log.Info("Applying cache database migrations")

	sqlDB, err := db.SQL.DB()
	if err != nil {
		return log.Err("failed to get database handle for migration", err)
	}

	n, err := runMigrations(sqlDB, migrate.Up)
	if err != nil {
		return log.Err("failed to apply migrations", err)
	}

	if n == 0 {
		log.Info("No pending migrations")
	} else {
		log.Info("Applied migrations", "count", n)
	}

	return nil
}

// MigrateDown rolls back steps migrations, one at a time.
func (db *DB) MigrateDown(steps int) error {
	log := logger.New("database").Function("MigrateDown")

	sqlDB, err := db.SQL.DB()
	if err != nil {
		return log.Err("failed to get database handle for migration", err)
	}

	for range steps {
		n, err := runMigrations(sqlDB, migrate.Down)
		if err != nil {
			return log.Err("failed to roll back migration", err)
		}
		if n == 0 {
			log.Info("No migrations left to roll back")
			break
		}
	}

	return nil
}

func runMigrations(db *sql.DB, direction migrate.MigrationDirection) (int, error) {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	return migrate.Exec(db, migrationDialect, source, direction)
}
