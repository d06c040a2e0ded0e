package sqlstore

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported engines
type Dialect struct {
	Name       string
	DriverName string
	Schema     []string
	// FieldExpr compares a JSON field (bound as a path parameter) against a string parameter
	FieldExpr string
	// LockClause is appended to the read of a read-modify-write merge
	LockClause string
	// MaxOpenConns of zero leaves the database/sql default
	MaxOpenConns int
}

// SQLite stores documents in an embedded database file
var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (collection, id)
		)`,
	},
	FieldExpr: "json_extract(payload, ?) = ?",
	// SQLite only supports one writer
	MaxOpenConns: 1,
}

// MySQL stores documents in a JSON column
var MySQL = Dialect{
	Name:       "mysql",
	DriverName: "mysql",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			seq        BIGINT AUTO_INCREMENT PRIMARY KEY,
			collection VARCHAR(100) NOT NULL,
			id         VARCHAR(255) NOT NULL,
			payload    JSON NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			UNIQUE KEY documents_collection_id (collection, id)
		)`,
	},
	FieldExpr:    "JSON_UNQUOTE(JSON_EXTRACT(payload, ?)) = ?",
	LockClause:   " FOR UPDATE",
	MaxOpenConns: 10,
}

// DialectFor returns the dialect registered under name
func DialectFor(name string) (Dialect, error) {
	switch name {
	case SQLite.Name:
		return SQLite, nil
	case MySQL.Name:
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect: %s", name)
	}
}

// jsonPath addresses a top-level field, quoted so any key name is accepted
func jsonPath(field string) string {
	return fmt.Sprintf(`$."%s"`, field)
}
