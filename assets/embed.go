package assets

import "embed"

// Puzzles is the default puzzle set, one JSON record per line.
//
//go:embed puzzles.jsonl
var Puzzles []byte

// Migrations holds the SQLite schema, applied in lexical order.
//
//go:embed sql/*.sql
var Migrations embed.FS
