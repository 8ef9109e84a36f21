package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/aerosense/aerosense/pkg/logger"
)

// Error is re-exported so storage call sites can build log fields
// without importing the logger package twice.
var Error = logger.Error

// Open opens (creating if necessary) the SQLite database at the given
// path and applies the pragmas the service relies on.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single-writer app; WAL keeps readers unblocked during snapshot writes
	pragmas := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	return db, nil
}
