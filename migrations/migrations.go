// Package migrations embeds the SQL migration files applied at startup.
package migrations

import "embed"

// FS holds the embedded .up.sql migration files.
//
//go:embed *.up.sql
var FS embed.FS
