package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
)

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the formatted string.
func nullableTimeToString(t *time.Time, layout string) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(d calendar.Date) string {
	return d.String()
}

func parseUnit(s string) (calendar.TimeUnit, error) {
	u, err := calendar.ParseTimeUnit(s)
	if err != nil {
		return 0, fmt.Errorf("parsing unit: %w", err)
	}
	return u, nil
}

// unitOrder sorts timeline rows finest first in SQL.
const unitOrder = `CASE unit WHEN 'day' THEN 0 WHEN 'week' THEN 1 ELSE 2 END`
