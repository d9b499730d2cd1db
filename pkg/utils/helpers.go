package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses duration string like "5m"
func ParseDuration(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return fallback
	}
	return duration
}

// ParseValue turns a raw field into an int, a finite float64 or the trimmed
// string. An empty field yields nil.
func ParseValue(s string) interface{} {
	// Trim whitespace first
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// try int
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// Round rounds f half away from zero to the given number of decimals.
func Round(f float64, decimals int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(f*pow) / pow
}

// CleanHeader trims whitespace and removes ALL quotes from a header cell
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff") // UTF-8 BOM written by spreadsheet tools
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}
