// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/value"
)

func fp(v float64) *float64 { return &v }

func sampleAnalysis() (merge.Record, value.Analysis) {
	rec := merge.Record{
		CSVHome: "Arsenal",
		CSVAway: "Chelsea",
		H2H: &apifootball.H2HStats{
			TotalMatches: 8,
			Team1Wins:    4,
			Team2Wins:    2,
			Draws:        2,
			AvgGoals:     2.5,
		},
	}
	rec.HomeInjuries = []apifootball.Injury{{}}
	rec.HomeInjuries[0].Player.Name = "Saka"

	analysis := value.Analysis{
		Match:  "Arsenal vs Chelsea",
		League: "Premier League",
		Date:   "2025-08-30T15:00:00+00:00",
		Probs:  merge.Probabilities{HomeWin: fp(0.62), Draw: fp(0.22), AwayWin: fp(0.16)},
		Odds:   merge.MarketOdds{HomeWin: fp(2.10), Draw: fp(3.40), Bookmaker: "Bet365"},
		Recommendations: []value.Recommendation{
			{
				Market:              "Home Win",
				AdjustedProbability: 0.64,
				Edge:                0.144,
				Confidence:          value.ConfidenceMedium,
				Risk:                "Medium",
				KellyStake:          0.05,
			},
			{
				Market:              "Over 2.5 Goals",
				AdjustedProbability: 0.58,
				Edge:                0.067,
			},
		},
		Insights: []string{"Arsenal trending UP (WWWDL)"},
	}
	return rec, analysis
}

func TestPanelFullMatch(t *testing.T) {
	rec, analysis := sampleAnalysis()
	panel := Panel(rec, analysis)

	assert.Contains(t, panel, "Sat 30 Aug 2025, 15:00 — Premier League")
	assert.Contains(t, panel, "### Arsenal vs Chelsea")
	assert.Contains(t, panel, "- Home Win: 62.0%")
	assert.Contains(t, panel, "| Home Win | 2.10 |")
	assert.Contains(t, panel, "*via Bet365*")
	assert.Contains(t, panel, "- Home missing: Saka")
	assert.Contains(t, panel, "- Away missing: None reported")
	assert.Contains(t, panel, "- Home Wins: 4")
	assert.Contains(t, panel, "Arsenal trending UP")
	assert.Contains(t, panel, "Value Rating: 14.4% edge")
	assert.Contains(t, panel, "Suggested Stake: 5.0%")
	assert.Contains(t, panel, "- Over 2.5 Goals: 58.0% (+6.7%)")
}

func TestPanelNoOddsNoRecommendation(t *testing.T) {
	rec := merge.Record{CSVHome: "A", CSVAway: "B"}
	analysis := value.Analysis{Match: "A vs B", Date: "2025-08-30"}

	panel := Panel(rec, analysis)
	assert.Contains(t, panel, "*No live odds available*")
	assert.Contains(t, panel, "No strong recommendations")
	assert.Contains(t, panel, "Unknown League")
}

func TestTopBetsTable(t *testing.T) {
	bets := []value.RankedBet{
		{
			Match: "Arsenal vs Chelsea", League: "Premier League",
			Date: "2025-08-30T15:00:00+00:00", Odds: 2.10,
			Recommendation: value.Recommendation{
				Market: "Home Win", AdjustedProbability: 0.64,
				Edge: 0.144, KellyStake: 0.05, Confidence: value.ConfidenceHigh,
			},
		},
	}
	table := TopBetsTable(bets)
	assert.Contains(t, table, "| 1 | Arsenal vs Chelsea | Premier League | 30 Aug 15:00 | Home Win | 64.0% | 2.10 | +14.4% | 5.0% | HIGH |")

	assert.Equal(t, "*No bets available*", TopBetsTable(nil))
}

func TestAccumulatorBlock(t *testing.T) {
	acc := value.Accumulator{
		Type: value.AccumulatorSafe,
		Legs: []value.RankedBet{
			{Match: "A vs B", Recommendation: value.Recommendation{Market: "Home Win", AdjustedProbability: 0.80}},
			{Match: "C vs D", Recommendation: value.Recommendation{Market: "Over 1.5 Goals", AdjustedProbability: 0.75}},
		},
		CombinedProbability: 0.60,
		CombinedOdds:        2.50,
		ExpectedValue:       1.50,
	}
	out := AccumulatorBlock(acc)
	assert.Contains(t, out, "### SAFE ACCUMULATOR")
	assert.Contains(t, out, "| 1 | A vs B | Home Win | 80.0% |")
	assert.Contains(t, out, "**Combined Probability:** 60.0%")
	assert.Contains(t, out, "**Expected Value:** 1.50 +EV")
}

func TestBetSlip(t *testing.T) {
	bets := []SlipBet{
		{Match: "A vs B", Market: "Home Win", Probability: 0.60, Odds: 2.0},
		{Match: "C vs D", Market: "Over 2.5", Probability: 0.50},
	}
	slip := BetSlip(bets)

	assert.Contains(t, slip, "## Bet Slip ")
	assert.Contains(t, slip, "**1. A vs B**")
	// The unquoted leg falls back to fair odds 1/0.50 = 2.00.
	assert.Contains(t, slip, "**Combined Odds:** 4.00")
	assert.Contains(t, slip, "**Combined Probability:** 30.00%")

	// Slip ids are unique per render.
	other := BetSlip(bets)
	assert.NotEqual(t, slipID(slip), slipID(other))

	assert.Equal(t, "*No bets selected*", BetSlip(nil))
}

func slipID(slip string) string {
	line := strings.SplitN(slip, "\n", 2)[0]
	return strings.TrimPrefix(line, "## Bet Slip ")
}

func TestFullReport(t *testing.T) {
	rec, analysis := sampleAnalysis()
	topBets := []value.RankedBet{
		{
			Match: "Arsenal vs Chelsea", League: "Premier League", Date: "2025-08-30",
			Recommendation: value.Recommendation{
				Market: "Home Win", AdjustedProbability: 0.64,
				Edge: 0.144, IsValueBet: true, Confidence: value.ConfidenceHigh,
			},
		},
	}
	now := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)

	out := FullReport([]merge.Record{rec}, []value.Analysis{analysis}, topBets, nil, now)
	assert.Contains(t, out, "# Sports Betting Intelligence Report")
	assert.Contains(t, out, "*Generated: 2025-08-29 10:00*")
	assert.Contains(t, out, "- **Matches Analyzed:** 1")
	assert.Contains(t, out, "- **Value Bets Found:** 1")
	assert.Contains(t, out, "- **High Confidence Picks:** 1")
	// The detailed panel section pulls the record back in by match name.
	assert.Contains(t, out, "- Home missing: Saka")
	assert.Contains(t, out, "Bet responsibly")
}

func TestHTMLReport(t *testing.T) {
	now := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	html, err := HTMLReport("Daily Report", "# Hello & welcome", now)
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Daily Report</title>")
	assert.Contains(t, html, "Generated 2025-08-29 10:00")
	assert.Contains(t, html, "&amp; welcome")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Sat 30 Aug 2025, 15:00", FormatDate("2025-08-30T15:00:00+00:00"))
	assert.Equal(t, "2025-08-30", FormatDate("2025-08-30"))
	assert.Equal(t, "TBD", FormatDate("TBD"))
}
