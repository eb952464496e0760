//go:build !cgo

package repository

// Without cgo go-sqlite3 is a stub driver that never opens a connection, so no
// sqlite3.Error can reach this point.
func isSQLiteUniqueViolation(error) bool { return false }
