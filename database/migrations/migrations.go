// Package migrations embeds the schema of the questions store, one directory per SQL dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql oracle/*.sql
var FS embed.FS
