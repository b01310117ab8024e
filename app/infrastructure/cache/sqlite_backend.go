package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	_ "modernc.org/sqlite"
)

const sqliteFileName = "cache.db"

// DefaultSQLitePath is the cache file used when CACHE_SQLITE_PATH is unset:
// <user cache dir>/localscan/cache.db.
func DefaultSQLitePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate user cache dir: %w", err)
	}
	return filepath.Join(dir, "localscan", sqliteFileName), nil
}

// OpenSQLiteBackend opens (creating if needed) a file-backed cache so entries
// survive between runs of the CLI. It uses the pure Go modernc driver.
func OpenSQLiteBackend(path string) (*GormBackend, error) {
	if path == "" {
		var err error
		if path, err = DefaultSQLitePath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite cache %s: %w", path, err)
	}
	return NewGormBackend(db)
}
