// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/merge"
)

func fp(v float64) *float64 { return &v }

// fixedAdjuster returns the same adjustments for any pairing.
type fixedAdjuster struct {
	adj Adjustments
}

func (f fixedAdjuster) PredictionAdjustments(home, away string) Adjustments {
	return f.adj
}

func baseRecord() merge.Record {
	return merge.Record{
		CSVHome:    "Man Utd",
		CSVAway:    "Liverpool",
		CSVLeague:  "Premier League",
		CSVDate:    "2025-08-29",
		HasAPIData: true,
		Probs: merge.Probabilities{
			HomeWin: fp(0.62),
			Draw:    fp(0.22),
			AwayWin: fp(0.16),
			Over25:  fp(0.58),
		},
		Odds: merge.MarketOdds{
			HomeWin:   fp(2.10), // implied 0.476
			Draw:      fp(3.40),
			AwayWin:   fp(5.50),
			Over25:    fp(1.95), // implied 0.513
			Bookmaker: "Bet365",
		},
	}
}

func TestAnalyzeMatch_FlagsValueBets(t *testing.T) {
	a := &Analyzer{}
	an := a.AnalyzeMatch(baseRecord())

	assert.Equal(t, "Man Utd vs Liverpool", an.Match)
	assert.Equal(t, "Premier League", an.League)
	require.NotEmpty(t, an.Recommendations)

	// home_win: model 0.62 vs implied ~0.476, edge ~0.144 is value.
	top := an.Recommendations[0]
	assert.Equal(t, "home_win", top.MarketKey)
	assert.True(t, top.IsValueBet)
	assert.InDelta(t, 0.144, top.Edge, 0.01)
	assert.Equal(t, ConfidenceMedium, top.Confidence)
	assert.Greater(t, top.KellyStake, 0.0)

	// Low-probability, no-value markets are not recommended.
	for _, r := range an.Recommendations {
		assert.NotEqual(t, "away_win", r.MarketKey)
	}
}

func TestAnalyzeMatch_SortsByEdge(t *testing.T) {
	a := &Analyzer{}
	an := a.AnalyzeMatch(baseRecord())

	for i := 1; i < len(an.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			an.Recommendations[i-1].Edge, an.Recommendations[i].Edge)
	}
}

func TestAnalyzeMatch_InjuriesReduceConfidence(t *testing.T) {
	a := &Analyzer{}

	rec := baseRecord()
	rec.Probs = merge.Probabilities{HomeWin: fp(0.72)}
	rec.Odds = merge.MarketOdds{HomeWin: fp(1.60)}

	healthy := a.AnalyzeMatch(rec)
	require.NotEmpty(t, healthy.Recommendations)
	assert.Equal(t, ConfidenceHigh, healthy.Recommendations[0].Confidence)

	rec.HomeInjuries = make([]apifootball.Injury, 4)
	injured := a.AnalyzeMatch(rec)
	require.NotEmpty(t, injured.Recommendations)
	assert.Equal(t, ConfidenceLow, injured.Recommendations[0].Confidence)
	assert.Equal(t, 0.80, injured.Recommendations[0].InjuryFactor)
}

func TestAnalyzeMatch_HistoryAdjustments(t *testing.T) {
	a := &Analyzer{History: fixedAdjuster{Adjustments{
		HomeAdj:         0.05,
		ConfidenceBoost: 0.02,
		Insights:        []string{"Man Utd strong at home recently"},
	}}}

	rec := baseRecord()
	an := a.AnalyzeMatch(rec)

	require.NotEmpty(t, an.Recommendations)
	home := an.Recommendations[0]
	assert.Equal(t, "home_win", home.MarketKey)
	assert.Equal(t, 0.05, home.HistoricalAdjustment)
	// 0.62 + 0.05 adjustment, then +0.02 boost.
	assert.InDelta(t, 0.69, home.AdjustedProbability, 1e-9)
	assert.Equal(t, an.Insights, []string{"Man Utd strong at home recently"})
}

func TestAnalyzeMatch_MissingProbabilitiesSkipped(t *testing.T) {
	a := &Analyzer{}
	rec := merge.Record{CSVHome: "A", CSVAway: "B"}
	an := a.AnalyzeMatch(rec)
	assert.Empty(t, an.Recommendations)
}

func TestTopBets_FiltersAndRanks(t *testing.T) {
	a := &Analyzer{}

	short := baseRecord()
	short.Probs = merge.Probabilities{HomeWin: fp(0.85)}
	short.Odds = merge.MarketOdds{HomeWin: fp(1.10)} // below min odds

	records := []merge.Record{baseRecord(), short}
	bets := a.TopBets(records, 10, DefaultMinOdds)

	require.NotEmpty(t, bets)
	for _, b := range bets {
		assert.GreaterOrEqual(t, b.Odds, DefaultMinOdds)
	}
	for i := 1; i < len(bets); i++ {
		assert.GreaterOrEqual(t, bets[i-1].Edge, bets[i].Edge)
	}
}

func TestTopBets_Limit(t *testing.T) {
	a := &Analyzer{}
	records := []merge.Record{baseRecord(), baseRecord(), baseRecord()}
	bets := a.TopBets(records, 2, DefaultMinOdds)
	assert.LessOrEqual(t, len(bets), 2)
}

func TestAccumulators(t *testing.T) {
	a := &Analyzer{}

	rec := func(home string, prob, odds float64) merge.Record {
		r := baseRecord()
		r.CSVHome = home
		r.Probs = merge.Probabilities{HomeWin: fp(prob)}
		r.Odds = merge.MarketOdds{HomeWin: fp(odds)}
		return r
	}

	records := []merge.Record{
		rec("Team A", 0.80, 1.40),
		rec("Team B", 0.75, 1.50),
		rec("Team C", 0.72, 1.55),
		rec("Team D", 0.70, 1.60),
		rec("Team E", 0.68, 1.65),
	}

	accs := a.Accumulators(records, 4, DefaultMinOdds)
	require.Len(t, accs, 2)

	safe := accs[0]
	assert.Equal(t, AccumulatorSafe, safe.Type)
	require.Len(t, safe.Legs, 4)
	assert.InDelta(t, 0.80*0.75*0.72*0.70, safe.CombinedProbability, 1e-9)
	assert.InDelta(t, 1.40*1.50*1.55*1.60, safe.CombinedOdds, 1e-9)
	assert.InDelta(t, safe.CombinedProbability*safe.CombinedOdds, safe.ExpectedValue, 1e-9)

	assert.Equal(t, AccumulatorValue, accs[1].Type)
}

func TestAccumulators_NotEnoughLegs(t *testing.T) {
	a := &Analyzer{}
	accs := a.Accumulators([]merge.Record{baseRecord()}, 4, DefaultMinOdds)
	assert.Empty(t, accs)
}
