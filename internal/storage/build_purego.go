//go:build !cgo_sqlite
// +build !cgo_sqlite

package storage

// This file is compiled by default (no cgo_sqlite tag).
//
// Build command:
//   go build ./...
//
// The pure-Go driver needs no C toolchain, ships FTS5 built in, and keeps
// cross-compilation trivial. It is the default for development and tests.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
