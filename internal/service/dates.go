package service

import (
	"strings"
	"time"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

// ParseDate parses a YYYY-MM-DD calendar date into a UTC midnight value.
func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Validation("invalid date, expected YYYY-MM-DD", map[string]string{"date": "must be YYYY-MM-DD"})
	}
	return parsed, nil
}

// DateOnly keeps the calendar date of t as seen in t's location, expressed as UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(time.Now().In(loc))
}
