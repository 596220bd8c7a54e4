// Package migrations embeds the versioned PostgreSQL schema of the package store.
package migrations

import "embed"

// FS holds the NNNNNN_name.{up,down}.sql files
//
//go:embed *.sql
var FS embed.FS
