package sqlutil

import (
	"database/sql"
	"time"
)

// NullString maps a nil pointer to NULL.
func NullString(val *string) sql.NullString {
	if val == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *val, Valid: true}
}

// StringPtr maps NULL back to a nil pointer.
func StringPtr(val sql.NullString) *string {
	if !val.Valid {
		return nil
	}
	s := val.String
	return &s
}

// UnixMilli stores timestamps as integer milliseconds in UTC.
func UnixMilli(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// FromUnixMilli is the inverse of UnixMilli.
func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
