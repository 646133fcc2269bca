package library

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned by lookups that require a row to exist.
	ErrNotFound = errors.New("library: not found")
	// ErrDuplicateWork reports that a work with the same external id already
	// exists. The transaction that hit it has been rolled back.
	ErrDuplicateWork = errors.New("library: work already exists")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("library: schema version mismatch")
)

const pqUniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
