package util

import (
	"database/sql"
	"regexp"
)

// StringToNullString converts a string to sql.NullString.
// An empty string is treated as NULL.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{} // Valid is false, String is ""
	}
	return sql.NullString{String: s, Valid: true}
}

// NullStringToString returns "" for NULL.
func NullStringToString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// IsIdentifier reports whether s is safe to splice into SQL or a REST path as a table name.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
