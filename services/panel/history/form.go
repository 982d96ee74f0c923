// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import "sort"

// Trend values for a form record.
const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
)

// CalculateForm derives a last-5 form record from a team's matches.
// Matches are considered newest first after sorting by date.
func CalculateForm(teamID int, teamName string, matches []MatchRecord) FormRecord {
	rec := FormRecord{
		TeamID:        teamID,
		TeamName:      teamName,
		Trend:         TrendStable,
		TrendStrength: 50,
	}
	if len(matches) == 0 {
		return rec
	}

	sorted := make([]MatchRecord, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	var results []byte
	for _, m := range sorted {
		gf, ga := teamGoals(m, teamID, teamName)
		rec.GoalsFor += gf
		rec.GoalsAgainst += ga
		if ga == 0 {
			rec.CleanSheets++
		}
		switch {
		case gf > ga:
			results = append(results, 'W')
			rec.Points += 3
		case gf == ga:
			results = append(results, 'D')
			rec.Points++
		default:
			results = append(results, 'L')
		}
	}
	rec.FormString = string(results)

	// Trend compares the three most recent results against the older two.
	recent := formPoints(results[:min(3, len(results))])
	older := formPoints(results[min(3, len(results)):])

	switch {
	case recent > older+2:
		rec.Trend = TrendUp
		rec.TrendStrength = min(80+float64(recent-older)*5, 100)
	case recent < older-2:
		rec.Trend = TrendDown
		rec.TrendStrength = max(20-float64(older-recent)*5, 0)
	}

	return rec
}

func formPoints(results []byte) int {
	pts := 0
	for _, r := range results {
		switch r {
		case 'W':
			pts += 3
		case 'D':
			pts++
		}
	}
	return pts
}

// teamGoals returns goals for and against from the team's perspective.
// The name fallback covers records cached before ids were known.
func teamGoals(m MatchRecord, teamID int, teamName string) (gf, ga int) {
	if isHomeMatch(m, teamID, teamName) {
		return m.HomeGoals, m.AwayGoals
	}
	return m.AwayGoals, m.HomeGoals
}
