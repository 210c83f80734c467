package alphavantage

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errEmptyNumber = errors.New("empty numeric field")

// parseFloat strictly parses a required numeric string field. NaN and
// infinities are rejected so they can never reach the cache.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyNumber
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("non-finite numeric field")
	}
	return f, nil
}

// parsePercent parses a numeric field with an optional trailing percent sign.
func parsePercent(s string) (float64, error) {
	return parseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// parseInt parses a required integer string field.
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyNumber
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseOptionalFloat parses fields the provider may report as "None" or "-".
// Unparseable optional fields yield zero; absence of fundamentals data is a
// displayable state, not an error.
func parseOptionalFloat(s string) float64 {
	f, err := parseFloat(s)
	if err != nil {
		return 0
	}
	return f
}
