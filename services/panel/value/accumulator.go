// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package value

import (
	"sort"

	"github.com/tireder/betting-tips/services/panel/merge"
)

// DefaultMinOdds filters out bets too short to be worth a slip line.
const DefaultMinOdds = 1.3

// DefaultAccumulatorLegs is the standard leg count for suggestions.
const DefaultAccumulatorLegs = 4

// accumulatorMinProb is the per-leg adjusted-probability floor.
const accumulatorMinProb = 0.65

// Accumulator types.
const (
	AccumulatorSafe  = "SAFE ACCUMULATOR"
	AccumulatorValue = "VALUE ACCUMULATOR"
)

// RankedBet is a recommendation tagged with its match context so it can
// stand alone in a top-bets list or an accumulator leg.
type RankedBet struct {
	Match  string  `json:"match"`
	League string  `json:"league"`
	Date   string  `json:"date"`
	Odds   float64 `json:"odds"`
	Recommendation
}

// Accumulator is a multi-leg bet suggestion.
type Accumulator struct {
	Type                string      `json:"type"`
	Legs                []RankedBet `json:"legs"`
	CombinedProbability float64     `json:"combined_probability"`
	CombinedOdds        float64     `json:"combined_odds"`
	ExpectedValue       float64     `json:"expected_value"`
}

// TopBets ranks all priced recommendations across records by edge, then
// adjusted probability, and returns at most topN. Bets without odds or
// below minOdds are skipped.
func (a *Analyzer) TopBets(records []merge.Record, topN int, minOdds float64) []RankedBet {
	bets := a.collectBets(records, minOdds, 0)

	sort.SliceStable(bets, func(i, j int) bool {
		if bets[i].Edge != bets[j].Edge {
			return bets[i].Edge > bets[j].Edge
		}
		return bets[i].AdjustedProbability > bets[j].AdjustedProbability
	})

	if len(bets) > topN {
		bets = bets[:topN]
	}
	return bets
}

// Accumulators builds a safe accumulator from the highest-probability
// legs and a value accumulator from the highest-edge legs. Each needs at
// least legs qualifying bets; otherwise it is omitted.
func (a *Analyzer) Accumulators(records []merge.Record, legs int, minOdds float64) []Accumulator {
	if legs <= 0 {
		legs = DefaultAccumulatorLegs
	}
	bets := a.collectBets(records, minOdds, accumulatorMinProb)

	var out []Accumulator

	byProb := make([]RankedBet, len(bets))
	copy(byProb, bets)
	sort.SliceStable(byProb, func(i, j int) bool {
		return byProb[i].AdjustedProbability > byProb[j].AdjustedProbability
	})
	if len(byProb) >= legs {
		out = append(out, buildAccumulator(AccumulatorSafe, byProb[:legs]))
	}

	byEdge := make([]RankedBet, len(bets))
	copy(byEdge, bets)
	sort.SliceStable(byEdge, func(i, j int) bool {
		return byEdge[i].Edge > byEdge[j].Edge
	})
	if len(byEdge) >= legs {
		out = append(out, buildAccumulator(AccumulatorValue, byEdge[:legs]))
	}

	return out
}

// collectBets flattens analyses into priced bets, filtered by minimum
// odds and, when minProb > 0, by adjusted probability.
func (a *Analyzer) collectBets(records []merge.Record, minOdds, minProb float64) []RankedBet {
	var bets []RankedBet
	for _, rec := range records {
		an := a.AnalyzeMatch(rec)
		for _, r := range an.Recommendations {
			if r.Odds == nil || *r.Odds < minOdds {
				continue
			}
			if minProb > 0 && r.AdjustedProbability < minProb {
				continue
			}
			bets = append(bets, RankedBet{
				Match:          an.Match,
				League:         an.League,
				Date:           an.Date,
				Odds:           *r.Odds,
				Recommendation: r,
			})
		}
	}
	return bets
}

func buildAccumulator(kind string, legs []RankedBet) Accumulator {
	prob := 1.0
	odds := 1.0
	for _, leg := range legs {
		prob *= leg.AdjustedProbability
		odds *= leg.Odds
	}
	return Accumulator{
		Type:                kind,
		Legs:                legs,
		CombinedProbability: prob,
		CombinedOdds:        odds,
		ExpectedValue:       prob * odds,
	}
}
