package tle

import (
	"fmt"
	"strconv"
	"time"
)

// decodeEpochYear expands a two-digit TLE epoch year. Years 57-99 map to
// the 1900s and 00-56 to the 2000s (the Sputnik-era rollover).
func decodeEpochYear(year int) int {
	if year >= 57 {
		return 1900 + year
	}
	return 2000 + year
}

// EpochTime converts a two-digit year and fractional day-of-year to
// time.Time in UTC. Day 1 is January 1.
func EpochTime(yearStr, dayStr string) (time.Time, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", yearStr, err)
	}

	dayOfYear, err := strconv.ParseFloat(dayStr, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", dayStr, err)
	}

	t := time.Date(decodeEpochYear(year), 1, 1, 0, 0, 0, 0, time.UTC)
	dur := time.Duration((dayOfYear - 1) * float64(24*time.Hour))
	return t.Add(dur), nil
}
