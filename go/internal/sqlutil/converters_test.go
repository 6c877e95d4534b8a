package sqlutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNullString(t *testing.T) {
	assert.False(t, NullString(nil).Valid)

	s := "ann"
	ns := NullString(&s)
	assert.True(t, ns.Valid)
	assert.Equal(t, "ann", *StringPtr(ns))
	assert.Nil(t, StringPtr(sql.NullString{}))
}

func TestUnixMilliRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 123_000_000, time.UTC)
	assert.True(t, ts.Equal(FromUnixMilli(UnixMilli(ts))))
}
