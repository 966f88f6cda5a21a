// Package migrations embeds the document-request schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
