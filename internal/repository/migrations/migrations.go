// Package migrations встраивает схему PostgreSQL, которую goose применяет при запуске.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
