// Package migrations embeds the SQLite schema migrations for the cache tier.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
