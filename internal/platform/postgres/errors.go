package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// IsPermissionDenied reports whether err is a database authorization failure,
// as opposed to a transient or programming error. Covers both the SQLSTATE
// class (42501 insufficient_privilege) and the row-level security message
// shapes Postgres emits when a policy blocks a write.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "42501" || pqErr.Code.Name() == "insufficient_privilege" {
			return true
		}
		if strings.Contains(strings.ToLower(pqErr.Message), "row-level security") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "row-level security")
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
