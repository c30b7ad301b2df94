package migrations

import "embed"

// MigrationFiles holds one goose directory per dialect: postgres and sqlite.
//
//go:embed postgres/*.sql sqlite/*.sql
var MigrationFiles embed.FS
