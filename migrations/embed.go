// Package migrations embeds the schema migrations for every SQL backend.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per database type.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
