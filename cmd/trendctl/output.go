package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"trendscope-backend/dtos"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(w io.Writer, verb string, s dtos.BulkStats) {
	fmt.Fprintf(w, "%s: %d categories, %d trends, %d colors\n", verb, s.Categories, s.Trends, s.Colors)
}

func parseDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --timeout %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid --timeout %q: must be positive", raw)
	}
	return d, nil
}
