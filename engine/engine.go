package engine

import (
	"database/sql"
	"net/url"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver. The
// vector functions are registered first so every connection sees them.
//
// For file-based databases, pass a path like "./movies.db". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterVectorFunctions(); err != nil {
		return nil, err
	}
	return sql.Open("sqlite", dsn)
}

// OpenReadOnly opens an existing database file in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open("file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro")
}
