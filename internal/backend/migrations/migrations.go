// Package migrations embeds the goose migrations that provision the demo's
// tables, row level security policies, realtime publication and bucket.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
