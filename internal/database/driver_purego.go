//go:build !sqlite_cgo

package database

// Pure Go SQLite driver. Build with -tags sqlite_cgo to use mattn/go-sqlite3 instead.
import (
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriverName is the database/sql name of the SQLite driver in this build.
	SQLiteDriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
