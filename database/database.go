package database

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PathEnv names the required environment variable holding the absolute
// path of the SQLite database file.
const PathEnv = "TW_STOCK_DB_PATH"

// OpenFromEnv opens the database at the path named by PathEnv. The
// variable must be set and the file must already exist; both are
// startup-fatal configuration errors otherwise.
func OpenFromEnv() (*gorm.DB, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		return nil, fmt.Errorf("environment variable %s is not set; "+
			"set it to your tw_stock.db absolute path", PathEnv)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s points to a missing file: %s", PathEnv, path)
	}
	return Open(path)
}

// Open connects to the SQLite file at path and migrates the schema.
// The returned handle is owned by the caller and must be released with
// Close; every component receives it by reference, nothing holds a
// package-level connection.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection. Safe to defer immediately
// after a successful Open.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
