package queries

import "embed"

// FS contains the dex query text, one statement per file.
//
//go:embed *.sql
var FS embed.FS
