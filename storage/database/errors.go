package database

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint.
func isUniqueViolation(err error, constraint ...string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok || pqErr.Code != uniqueViolation {
		return false
	}
	if len(constraint) > 0 {
		return pqErr.Constraint == constraint[0]
	}
	return true
}
