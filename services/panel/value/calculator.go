// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package value turns merged prediction records into ranked betting
// recommendations.
//
// # Description
//
// The calculator compares model probabilities against bookmaker implied
// probabilities, flags value when the edge clears the threshold, sizes
// stakes with fractional Kelly, and grades confidence after injury and
// head-to-head adjustments. The analyzer applies it across all quoted
// markets of a match; the accumulator builder combines the strongest
// legs into multi-bet suggestions.
package value

import (
	"github.com/tireder/betting-tips/services/panel/apifootball"
)

const (
	// EdgeThreshold is the minimum edge for calling a bet a value bet.
	EdgeThreshold = 0.05

	// kellyFraction scales the full Kelly stake down for variance safety.
	kellyFraction = 0.25

	// maxStake caps any single recommendation's bankroll share.
	maxStake = 0.05

	confidenceHighMin   = 0.70
	confidenceMediumMin = 0.60
)

// Confidence levels for a recommendation.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// OddsToProbability converts decimal odds to the implied probability.
// Returns 0 for non-positive odds.
func OddsToProbability(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return 1 / odds
}

// ProbabilityToOdds converts a probability to fair decimal odds.
// Returns 0 outside (0, 1].
func ProbabilityToOdds(prob float64) float64 {
	if prob <= 0 || prob > 1 {
		return 0
	}
	return 1 / prob
}

// Edge is the model's probability advantage over the bookmaker's
// implied probability.
func Edge(modelProb, impliedProb float64) float64 {
	if modelProb <= 0 || impliedProb <= 0 {
		return 0
	}
	return modelProb - impliedProb
}

// IsValueBet reports whether the edge clears EdgeThreshold, and returns
// the edge.
func IsValueBet(modelProb, impliedProb float64) (bool, float64) {
	edge := Edge(modelProb, impliedProb)
	return edge >= EdgeThreshold, edge
}

// KellyStake sizes a bet with fractional Kelly, capped at maxStake.
// Returns the stake as a bankroll fraction in [0, 0.05].
func KellyStake(probability, odds float64) float64 {
	if probability <= 0 || odds <= 1 {
		return 0
	}

	b := odds - 1
	q := 1 - probability
	kelly := (b*probability - q) / b

	stake := kelly * kellyFraction
	if stake < 0 {
		return 0
	}
	if stake > maxStake {
		return maxStake
	}
	return stake
}

// ConfidenceLevel grades a probability after applying the injury factor
// and returns the level with the adjusted probability.
func ConfidenceLevel(probability, injuryFactor float64) (string, float64) {
	adjusted := probability * injuryFactor
	switch {
	case adjusted >= confidenceHighMin:
		return ConfidenceHigh, adjusted
	case adjusted >= confidenceMediumMin:
		return ConfidenceMedium, adjusted
	default:
		return ConfidenceLow, adjusted
	}
}

// RiskRating grades a bet's risk from its adjusted probability.
func RiskRating(probability float64) string {
	switch {
	case probability >= 0.70:
		return "Low"
	case probability >= 0.55:
		return "Medium"
	default:
		return "High"
	}
}

// InjuryImpact maps an injury list to a confidence multiplier in
// [0.80, 1.0]. More absentees mean a larger haircut.
func InjuryImpact(injuries []apifootball.Injury) float64 {
	switch n := len(injuries); {
	case n >= 4:
		return 0.80
	case n >= 2:
		return 0.90
	case n >= 1:
		return 0.95
	default:
		return 1.0
	}
}

// H2HBoost returns a confidence multiplier in [1.0, 1.12] from a
// head-to-head record. forHome selects which side's win rate applies.
// Fewer than three finished meetings give no boost.
func H2HBoost(h2h *apifootball.H2HStats, forHome bool) float64 {
	if h2h == nil {
		return 1.0
	}
	total := h2h.Team1Wins + h2h.Team2Wins + h2h.Draws
	if total < 3 {
		return 1.0
	}

	var winRate float64
	if forHome {
		winRate = float64(h2h.Team1Wins) / float64(total)
	} else {
		winRate = float64(h2h.Team2Wins) / float64(total)
	}

	switch {
	case winRate >= 0.7:
		return 1.12
	case winRate >= 0.5:
		return 1.07
	case winRate >= 0.3:
		return 1.03
	default:
		return 1.0
	}
}
