//go:build !cgo_sqlite

package store

import (
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	sqliteDriverName = "sqlite"
	sqliteDriverType = "purego"
)
