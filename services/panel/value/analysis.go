// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package value

import (
	"fmt"
	"sort"

	"github.com/tireder/betting-tips/services/panel/merge"
)

// minRecommendProb is the adjusted-probability floor below which a
// market is only recommended when it carries value.
const minRecommendProb = 0.55

// Recommendation is one market-level betting suggestion.
type Recommendation struct {
	Market               string   `json:"market"`
	MarketKey            string   `json:"market_key"`
	ModelProbability     float64  `json:"model_probability"`
	AdjustedProbability  float64  `json:"adjusted_probability"`
	Odds                 *float64 `json:"bookmaker_odds"`
	ImpliedProbability   float64  `json:"implied_probability"`
	Edge                 float64  `json:"edge"`
	IsValueBet           bool     `json:"is_value_bet"`
	Confidence           string   `json:"confidence"`
	Risk                 string   `json:"risk"`
	KellyStake           float64  `json:"kelly_stake"`
	InjuryFactor         float64  `json:"injury_factor"`
	HistoricalAdjustment float64  `json:"historical_adjustment"`
}

// Analysis is the full recommendation set for one match.
type Analysis struct {
	Match           string              `json:"match"`
	League          string              `json:"league"`
	Date            string              `json:"date"`
	HasAPIData      bool                `json:"has_api_data"`
	Probs           merge.Probabilities `json:"model_probs"`
	Odds            merge.MarketOdds    `json:"bookmaker_odds"`
	Recommendations []Recommendation    `json:"recommendations"`

	// Insights are human-readable notes from the team history cache.
	Insights []string `json:"historical_insights,omitempty"`
}

// Adjustments carries probability corrections derived from cached team
// history. Values are decimals, not percentages.
type Adjustments struct {
	HomeAdj         float64
	AwayAdj         float64
	ConfidenceBoost float64
	Insights        []string
}

// HistoryAdjuster supplies historical adjustments for a pairing. The
// team history cache implements it; a nil adjuster disables the step.
type HistoryAdjuster interface {
	PredictionAdjustments(homeTeam, awayTeam string) Adjustments
}

// Analyzer produces match analyses, optionally enriched with team
// history adjustments.
type Analyzer struct {
	History HistoryAdjuster
}

// market pairs a display name with the probability/odds lookup key.
type market struct {
	key  string
	name string
}

var markets = []market{
	{"home_win", "Home Win"},
	{"draw", "Draw"},
	{"away_win", "Away Win"},
	{"over_1.5", "Over 1.5 Goals"},
	{"under_1.5", "Under 1.5 Goals"},
	{"over_2.5", "Over 2.5 Goals"},
	{"under_2.5", "Under 2.5 Goals"},
	{"over_3.5", "Over 3.5 Goals"},
	{"under_3.5", "Under 3.5 Goals"},
}

// AnalyzeMatch grades every priced market of a merged record and returns
// the recommendations sorted by edge, then adjusted probability.
func (a *Analyzer) AnalyzeMatch(rec merge.Record) Analysis {
	an := Analysis{
		Match:      fmt.Sprintf("%s vs %s", orUnknown(rec.CSVHome), orUnknown(rec.CSVAway)),
		League:     firstNonEmpty(rec.CSVLeague, rec.APILeague, "Unknown"),
		Date:       firstNonEmpty(rec.APIDate, rec.CSVDate, "TBD"),
		HasAPIData: rec.HasAPIData,
		Probs:      rec.Probs,
		Odds:       rec.Odds,
	}

	homeInjuryFactor := InjuryImpact(rec.HomeInjuries)
	awayInjuryFactor := InjuryImpact(rec.AwayInjuries)

	var adj Adjustments
	if a.History != nil {
		adj = a.History.PredictionAdjustments(rec.CSVHome, rec.CSVAway)
		an.Insights = adj.Insights
	}

	for _, mk := range markets {
		modelProb := rec.Probs.Market(mk.key)
		if modelProb == nil {
			continue
		}

		injuryFactor := 1.0
		histAdj := 0.0
		switch mk.key {
		case "home_win":
			injuryFactor = homeInjuryFactor
			histAdj = adj.HomeAdj
		case "away_win":
			injuryFactor = awayInjuryFactor
			histAdj = adj.AwayAdj
		}

		adjustedModel := clampProb(*modelProb + histAdj)

		odds := rec.Odds.Market(mk.key)
		var impliedProb, edge float64
		isValue := false
		if odds != nil {
			impliedProb = OddsToProbability(*odds)
			isValue, edge = IsValueBet(adjustedModel, impliedProb)
		}

		confidence, adjustedProb := ConfidenceLevel(adjustedModel, injuryFactor)
		adjustedProb = clampProb(adjustedProb + adj.ConfidenceBoost)

		var stake float64
		if odds != nil {
			stake = KellyStake(adjustedProb, *odds)
		} else {
			stake = KellyStake(adjustedProb, ProbabilityToOdds(*modelProb))
		}

		if adjustedProb < minRecommendProb && !isValue {
			continue
		}

		an.Recommendations = append(an.Recommendations, Recommendation{
			Market:               mk.name,
			MarketKey:            mk.key,
			ModelProbability:     *modelProb,
			AdjustedProbability:  adjustedProb,
			Odds:                 odds,
			ImpliedProbability:   impliedProb,
			Edge:                 edge,
			IsValueBet:           isValue,
			Confidence:           confidence,
			Risk:                 RiskRating(adjustedProb),
			KellyStake:           stake,
			InjuryFactor:         injuryFactor,
			HistoricalAdjustment: histAdj,
		})
	}

	sort.SliceStable(an.Recommendations, func(i, j int) bool {
		ri, rj := an.Recommendations[i], an.Recommendations[j]
		if ri.Edge != rj.Edge {
			return ri.Edge > rj.Edge
		}
		return ri.AdjustedProbability > rj.AdjustedProbability
	})

	return an
}

func clampProb(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.99 {
		return 0.99
	}
	return p
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
