package db

import "embed"

// Migrations holds the SQL migrations for every supported driver, one
// directory per dialect (sqlite, postgres).
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS
