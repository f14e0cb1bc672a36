package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation. Postgres names the violated constraint, so when constraintName
// is provided the helper requires it in the message; sqlite reports the
// column list instead and matches on its generic marker.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
