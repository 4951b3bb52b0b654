package migrations

import "embed"

// FS contains the embedded dex schema.
//
//go:embed *.sql
var FS embed.FS
