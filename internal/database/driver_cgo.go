//go:build sqlite_cgo

package database

// CGO SQLite driver, enabled with:
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...
import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// SQLiteDriverName is the database/sql name of the SQLite driver in this build.
	SQLiteDriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
