// Package migrations holds the SQLite schema of the entry store.
package migrations

import "embed"

// FS contains embedded SQLite migrations, applied in file name order.
//
//go:embed *.sql
var FS embed.FS
