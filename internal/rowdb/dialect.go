package rowdb

import (
	_ "embed"
)

//go:embed schema.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

type dialect struct {
	name   string
	schema string
	list   string
	insert string
	// retryBusy enables the sqlite busy/locked retry loop.
	retryBusy bool
}

var sqliteDialect = dialect{
	name:      "sqlite",
	schema:    sqliteSchema,
	list:      `SELECT id, media_path, text, translation FROM "rows" ORDER BY id`,
	insert:    `INSERT INTO "rows" (media_path, text, translation) VALUES (?, ?, ?) RETURNING id`,
	retryBusy: true,
}

var postgresDialect = dialect{
	name:   "postgres",
	schema: postgresSchema,
	list:   `SELECT id, media_path, text, translation FROM "rows" ORDER BY id`,
	insert: `INSERT INTO "rows" (media_path, text, translation) VALUES ($1, $2, $3) RETURNING id`,
}
