// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// result builds a match where team 1 scored gf and conceded ga at home.
func homeMatch(date string, gf, ga int) MatchRecord {
	return MatchRecord{
		HomeTeamID: 1, AwayTeamID: 2,
		HomeTeamName: "Alpha", AwayTeamName: "Beta",
		Date: date, HomeGoals: gf, AwayGoals: ga,
	}
}

func awayMatch(date string, gf, ga int) MatchRecord {
	return MatchRecord{
		HomeTeamID: 2, AwayTeamID: 1,
		HomeTeamName: "Beta", AwayTeamName: "Alpha",
		Date: date, HomeGoals: ga, AwayGoals: gf,
	}
}

func TestCalculateForm_Empty(t *testing.T) {
	form := CalculateForm(1, "Alpha", nil)
	assert.Empty(t, form.FormString)
	assert.Equal(t, TrendStable, form.Trend)
	assert.Equal(t, 50.0, form.TrendStrength)
}

func TestCalculateForm_FormString(t *testing.T) {
	matches := []MatchRecord{
		homeMatch("2025-08-25", 2, 0), // W, newest
		awayMatch("2025-08-18", 1, 1), // D
		homeMatch("2025-08-11", 0, 1), // L
		awayMatch("2025-08-04", 3, 1), // W
		homeMatch("2025-07-28", 2, 2), // D
		homeMatch("2025-07-21", 5, 0), // dropped, only last 5 count
	}

	form := CalculateForm(1, "Alpha", matches)
	assert.Equal(t, "WDLWD", form.FormString)
	assert.Equal(t, 3+1+0+3+1, form.Points)
	assert.Equal(t, 8, form.GoalsFor)
	assert.Equal(t, 5, form.GoalsAgainst)
	assert.Equal(t, 1, form.CleanSheets)
}

func TestCalculateForm_TrendUp(t *testing.T) {
	// Recent three: WWW (9 pts), older two: LL (0 pts).
	matches := []MatchRecord{
		homeMatch("2025-08-25", 2, 0),
		homeMatch("2025-08-18", 1, 0),
		homeMatch("2025-08-11", 3, 1),
		homeMatch("2025-08-04", 0, 2),
		homeMatch("2025-07-28", 1, 3),
	}
	form := CalculateForm(1, "Alpha", matches)
	assert.Equal(t, TrendUp, form.Trend)
	assert.Equal(t, 100.0, form.TrendStrength)
}

func TestCalculateForm_TrendDown(t *testing.T) {
	// Recent three: LLL (0 pts), older two: WW (6 pts).
	matches := []MatchRecord{
		homeMatch("2025-08-25", 0, 1),
		homeMatch("2025-08-18", 1, 2),
		homeMatch("2025-08-11", 0, 3),
		homeMatch("2025-08-04", 2, 0),
		homeMatch("2025-07-28", 3, 1),
	}
	form := CalculateForm(1, "Alpha", matches)
	assert.Equal(t, TrendDown, form.Trend)
	assert.Equal(t, 0.0, form.TrendStrength)
}

func TestCalculateForm_MatchesByNameWhenIDUnknown(t *testing.T) {
	matches := []MatchRecord{{
		HomeTeamID: 0, AwayTeamID: 0,
		HomeTeamName: "Alpha United", AwayTeamName: "Beta",
		Date: "2025-08-25", HomeGoals: 2, AwayGoals: 0,
	}}
	form := CalculateForm(1, "Alpha", matches)
	assert.Equal(t, "W", form.FormString)
}

func TestCalculateRatings_Empty(t *testing.T) {
	r := CalculateRatings(1, "Alpha", nil)
	assert.Equal(t, defaultRatings(), r)
	assert.Equal(t, 50.0, r.Overall())
}

func TestCalculateRatings_AttackDefense(t *testing.T) {
	// Two goals scored per game saturates attack; zero conceded
	// saturates defense.
	matches := []MatchRecord{
		homeMatch("2025-08-25", 2, 0),
		awayMatch("2025-08-18", 2, 0),
	}
	r := CalculateRatings(1, "Alpha", matches)
	assert.Equal(t, 100.0, r.Attack)
	assert.Equal(t, 100.0, r.Defense)
	assert.Equal(t, 100.0, r.Home)
	assert.Equal(t, 100.0, r.Away)
	// Two wins in two games: 6/15 of a full 5-game form.
	assert.Equal(t, 40.0, r.Form)
}

func TestCalculateRatings_ConsistencyDropsWithVariance(t *testing.T) {
	steady := []MatchRecord{
		homeMatch("2025-08-25", 1, 1),
		homeMatch("2025-08-18", 1, 1),
		homeMatch("2025-08-11", 1, 1),
	}
	wild := []MatchRecord{
		homeMatch("2025-08-25", 5, 0),
		homeMatch("2025-08-18", 0, 4),
		homeMatch("2025-08-11", 3, 3),
	}
	rs := CalculateRatings(1, "Alpha", steady)
	rw := CalculateRatings(1, "Alpha", wild)
	assert.Equal(t, 100.0, rs.Consistency)
	assert.Less(t, rw.Consistency, rs.Consistency)
}

func TestCalculateRatings_NoAwayMatchesDefaultsAway(t *testing.T) {
	matches := []MatchRecord{homeMatch("2025-08-25", 1, 0)}
	r := CalculateRatings(1, "Alpha", matches)
	assert.Equal(t, 50.0, r.Away)
}
