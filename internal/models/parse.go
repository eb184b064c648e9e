package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RankNone is the literal the source emits for unranked clubs
const RankNone = "None"

// ParseFlexibleDate accepts the two date shapes the source emits:
// YYYY-MM-DD and M/D/YYYY (leading zeros optional). The slash separator
// selects the second form.
func ParseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	layout := "2006-01-02"
	if strings.Contains(s, "/") {
		layout = "1/2/2006"
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// parseRequiredFloat parses a mandatory numeric field. NaN is rejected: a
// value the source supplied but that carries no information is treated as
// corruption, not as absence.
func parseRequiredFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("invalid %s %q: not a number", field, s)
	}
	return f, nil
}

// parseRequiredInt parses a mandatory integer field
func parseRequiredInt(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return n, nil
}

// parseOptionalInt parses an integer field that may be absent. An empty
// string or the None sentinel maps to nil; anything else must parse, or the
// row carrying it is invalid.
func parseOptionalInt(field, s string) (*int, error) {
	if s == "" || s == RankNone {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return &n, nil
}

// parseOptionalFloat parses a numeric field that may be absent. A present
// but unparseable (or NaN) value invalidates the row rather than being
// stored as null, so upstream corruption stays visible.
func parseOptionalFloat(field, s string) (*float64, error) {
	if s == "" || s == RankNone {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	if math.IsNaN(f) {
		return nil, fmt.Errorf("invalid %s %q: not a number", field, s)
	}
	return &f, nil
}
