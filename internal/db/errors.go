package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrKeyExists   = errors.New("db: key already exists")
)

// Op constants name the failing command or statement for error context.
const (
	OpPing    = "PING"
	OpDel     = "DEL"
	OpGet     = "GET"
	OpSet     = "SET"
	OpMigrate = "MIGRATE"
	OpInsert  = "INSERT"
	OpSelect  = "SELECT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
