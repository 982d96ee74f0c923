// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"fmt"

	"github.com/tireder/betting-tips/services/panel/value"
)

// PredictionAdjustments derives probability corrections for a pairing
// from cached form, head-to-head and venue data. It implements
// value.HistoryAdjuster. Missing cache entries contribute nothing; the
// confidence boost grows with how many data points were available.
func (s *Store) PredictionAdjustments(homeTeam, awayTeam string) value.Adjustments {
	var adj value.Adjustments
	dataPoints := 0

	homeForm, homeFormErr := s.FormByName(homeTeam)
	if homeFormErr == nil {
		dataPoints++
		switch homeForm.Trend {
		case TrendUp:
			// Up to +5 percentage points for a strong upward trend.
			adj.HomeAdj += homeForm.TrendStrength / 100 * 0.05
			adj.Insights = append(adj.Insights,
				fmt.Sprintf("%s trending UP (%s)", homeTeam, homeForm.FormString))
		case TrendDown:
			adj.HomeAdj -= (100 - homeForm.TrendStrength) / 100 * 0.05
			adj.Insights = append(adj.Insights,
				fmt.Sprintf("%s trending DOWN (%s)", homeTeam, homeForm.FormString))
		}
	}

	awayForm, awayFormErr := s.FormByName(awayTeam)
	if awayFormErr == nil {
		dataPoints++
		switch awayForm.Trend {
		case TrendUp:
			adj.AwayAdj += awayForm.TrendStrength / 100 * 0.05
			adj.Insights = append(adj.Insights,
				fmt.Sprintf("%s trending UP (%s)", awayTeam, awayForm.FormString))
		case TrendDown:
			adj.AwayAdj -= (100 - awayForm.TrendStrength) / 100 * 0.05
			adj.Insights = append(adj.Insights,
				fmt.Sprintf("%s trending DOWN (%s)", awayTeam, awayForm.FormString))
		}
	}

	if h2h, err := s.H2HByNames(homeTeam, awayTeam); err == nil {
		dataPoints++
		if h2h.TotalMatches >= 3 {
			homeWins, awayWins := h2h.Team1Wins, h2h.Team2Wins
			if !containsFold(h2h.Team1Name, homeTeam) {
				homeWins, awayWins = awayWins, homeWins
			}
			total := float64(h2h.TotalMatches)
			homePct := float64(homeWins) / total
			awayPct := float64(awayWins) / total

			// Up to +5 percentage points for total H2H dominance.
			if homePct > 0.6 {
				adj.HomeAdj += (homePct - 0.5) * 0.10
				adj.Insights = append(adj.Insights, fmt.Sprintf(
					"%s dominates H2H: %d-%d-%d", homeTeam, homeWins, h2h.Draws, awayWins))
			} else if awayPct > 0.6 {
				adj.AwayAdj += (awayPct - 0.5) * 0.10
				adj.Insights = append(adj.Insights, fmt.Sprintf(
					"%s dominates H2H: %d-%d-%d", awayTeam, awayWins, h2h.Draws, homeWins))
			}
		}
	}

	if team, err := s.TeamByName(homeTeam); err == nil {
		dataPoints++
		if team.Ratings.Home > 60 {
			// Up to +3 percentage points for a fortress home record.
			adj.HomeAdj += (team.Ratings.Home - 50) / 50 * 0.03
			adj.Insights = append(adj.Insights, fmt.Sprintf(
				"%s strong at home (%.0f%%)", homeTeam, team.Ratings.Home))
		}
	}
	if team, err := s.TeamByName(awayTeam); err == nil {
		dataPoints++
		if team.Ratings.Away > 60 {
			adj.AwayAdj += (team.Ratings.Away - 50) / 50 * 0.03
			adj.Insights = append(adj.Insights, fmt.Sprintf(
				"%s strong away (%.0f%%)", awayTeam, team.Ratings.Away))
		}
	}

	// Two points of confidence per populated data source, up to +10%.
	adj.ConfidenceBoost = float64(dataPoints) * 0.02

	return adj
}
