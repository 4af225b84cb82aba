// Package migrations embeds the goose migrations of the inventory schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
