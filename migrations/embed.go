package migrations

import "embed"

// Files holds the NNNN_name.sql schema files applied by db.OpenSQLite.
//
//go:embed *.sql
var Files embed.FS
