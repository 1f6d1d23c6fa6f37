package services

import (
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func ParseDay(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	return time.ParseInLocation(DayLayout, strings.TrimSpace(raw), location)
}

func DayKey(value time.Time) string {
	return dateOnly(value).Format(DayLayout)
}

// DaysBetween counts calendar days from a to b. Both are reduced to their
// calendar date first, so DST shifts do not produce off-by-one results.
func DaysBetween(a, b time.Time) int {
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func addDays(value time.Time, days int) time.Time {
	return dateOnly(value).AddDate(0, 0, days)
}

func betweenInclusive(day, start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	key := DayKey(day)
	return key >= DayKey(start) && key <= DayKey(end)
}

func sameDay(a, b time.Time) bool {
	return a.Format(DayLayout) == b.Format(DayLayout)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
