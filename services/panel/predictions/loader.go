// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package predictions loads model prediction CSVs and keeps them hot
// as the file changes on disk.
//
// # File Format
//
// One row per match with a header line. Recognized columns: id, home,
// away, league, date, 1x2_h, 1x2_d, 1x2_a and the goals markets
// o_1.5/o_2.5/o_3.5 and u_1.5/u_2.5/u_3.5. Unknown columns are
// ignored. Probabilities may be decimals (0.62) or percentages (62).
package predictions

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tireder/betting-tips/services/panel/merge"
)

// missingValues are cell contents treated as absent.
var missingValues = map[string]bool{
	"":        true,
	"na":      true,
	"n/a":     true,
	"nan":     true,
	"missing": true,
}

// Load reads prediction rows from a CSV file.
func Load(path string) ([]merge.PredictionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load predictions: %w", err)
	}
	defer f.Close()

	rows, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("load predictions %s: %w", path, err)
	}
	return rows, nil
}

// LoadReader parses prediction rows from CSV content. Rows without
// both team names are skipped rather than failing the whole file.
func LoadReader(r io.Reader) ([]merge.PredictionRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["home"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "home")
	}
	if _, ok := cols["away"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "away")
	}

	var rows []merge.PredictionRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		row := merge.PredictionRow{
			ID:     cell(record, cols, "id"),
			Home:   cell(record, cols, "home"),
			Away:   cell(record, cols, "away"),
			League: cell(record, cols, "league"),
			Date:   cell(record, cols, "date"),
		}
		if row.Home == "" || row.Away == "" {
			continue
		}
		if row.ID == "" {
			row.ID = fmt.Sprintf("row-%d", line)
		}

		row.Probs = merge.Probabilities{
			HomeWin: prob(record, cols, "1x2_h"),
			Draw:    prob(record, cols, "1x2_d"),
			AwayWin: prob(record, cols, "1x2_a"),
			Over15:  prob(record, cols, "o_1.5"),
			Over25:  prob(record, cols, "o_2.5"),
			Over35:  prob(record, cols, "o_3.5"),
			Under15: prob(record, cols, "u_1.5"),
			Under25: prob(record, cols, "u_2.5"),
			Under35: prob(record, cols, "u_3.5"),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[i])
	if missingValues[strings.ToLower(v)] {
		return ""
	}
	return v
}

// prob parses a probability cell, normalizing percentage inputs like
// "62" to 0.62.
func prob(record []string, cols map[string]int, name string) *float64 {
	v := cell(record, cols, name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil
	}
	if f > 1 {
		f /= 100
	}
	if f > 1 {
		return nil
	}
	return &f
}
