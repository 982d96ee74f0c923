// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report renders analyzed matches into the betting panel
// output formats: per-match markdown panels, top-bets tables,
// accumulator blocks, bet slips and the full daily report.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/value"
)

// maxPanelInjuries caps how many missing players a panel lists per side.
const maxPanelInjuries = 5

// maxPanelInsights caps the historical insight lines per panel.
const maxPanelInsights = 4

// FormatProb renders a probability pointer as a percentage, "N/A" when
// absent.
func FormatProb(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *p*100)
}

// FormatOdds renders decimal odds, "N/A" when absent.
func FormatOdds(odds *float64) string {
	if odds == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *odds)
}

// FormatDate renders a match date for panel headers. RFC3339 input
// becomes "Sat 30 Nov 2024, 15:00"; anything unparseable passes
// through unchanged.
func FormatDate(s string) string {
	if t, ok := merge.ParseDate(s); ok && strings.Contains(s, "T") {
		return t.Format("Mon 02 Jan 2006, 15:04")
	}
	return s
}

// Panel formats a single analyzed match as the classic betting panel:
// header, model probabilities, odds table, injuries, head-to-head and
// the recommended bet block.
func Panel(rec merge.Record, analysis value.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s — %s\n", FormatDate(analysis.Date), orUnknown(analysis.League, "Unknown League"))
	fmt.Fprintf(&b, "### %s\n\n", orUnknown(analysis.Match, "Unknown Match"))

	b.WriteString("**Model Probabilities**\n")
	fmt.Fprintf(&b, "- Home Win: %s\n", FormatProb(analysis.Probs.HomeWin))
	fmt.Fprintf(&b, "- Draw: %s\n", FormatProb(analysis.Probs.Draw))
	fmt.Fprintf(&b, "- Away Win: %s\n\n", FormatProb(analysis.Probs.AwayWin))

	writeOddsTable(&b, analysis.Odds)
	writeInjuryLines(&b, rec)
	writeH2H(&b, rec.H2H)

	if len(analysis.Insights) > 0 {
		b.WriteString("**Historical Insights**\n")
		insights := analysis.Insights
		if len(insights) > maxPanelInsights {
			insights = insights[:maxPanelInsights]
		}
		for _, ins := range insights {
			fmt.Fprintf(&b, "- %s\n", ins)
		}
		b.WriteString("\n")
	}

	writeRecommendation(&b, analysis.Recommendations)

	b.WriteString("\n---\n")
	return b.String()
}

func writeOddsTable(b *strings.Builder, odds merge.MarketOdds) {
	rows := []struct {
		label string
		odd   *float64
	}{
		{"Home Win", odds.HomeWin},
		{"Draw", odds.Draw},
		{"Away Win", odds.AwayWin},
		{"Over 1.5", odds.Over15},
		{"Under 1.5", odds.Under15},
		{"Over 2.5", odds.Over25},
		{"Under 2.5", odds.Under25},
		{"Over 3.5", odds.Over35},
		{"Under 3.5", odds.Under35},
		{"BTTS Yes", odds.BTTSYes},
		{"BTTS No", odds.BTTSNo},
	}

	any := false
	for _, r := range rows {
		if r.odd != nil {
			any = true
			break
		}
	}

	b.WriteString("**Bookmaker Odds**\n")
	if !any {
		b.WriteString("- *No live odds available*\n\n")
		return
	}

	b.WriteString("| Market | Odds |\n|--------|------|\n")
	for _, r := range rows {
		if r.odd != nil {
			fmt.Fprintf(b, "| %s | %s |\n", r.label, FormatOdds(r.odd))
		}
	}
	if odds.Bookmaker != "" {
		fmt.Fprintf(b, "\n*via %s*\n", odds.Bookmaker)
	}
	b.WriteString("\n")
}

func writeInjuryLines(b *strings.Builder, rec merge.Record) {
	b.WriteString("**Injuries**\n")
	fmt.Fprintf(b, "- Home missing: %s\n", injuryNames(rec.HomeInjuries))
	fmt.Fprintf(b, "- Away missing: %s\n\n", injuryNames(rec.AwayInjuries))
}

func injuryNames(injuries []apifootball.Injury) string {
	if len(injuries) == 0 {
		return "None reported"
	}
	if len(injuries) > maxPanelInjuries {
		injuries = injuries[:maxPanelInjuries]
	}
	names := make([]string, 0, len(injuries))
	for _, inj := range injuries {
		names = append(names, inj.Player.Name)
	}
	return strings.Join(names, ", ")
}

func writeH2H(b *strings.Builder, h2h *apifootball.H2HStats) {
	if h2h == nil || h2h.TotalMatches == 0 {
		return
	}
	b.WriteString("**Head-to-Head (Last 10)**\n")
	fmt.Fprintf(b, "- Home Wins: %d\n", h2h.Team1Wins)
	fmt.Fprintf(b, "- Draws: %d\n", h2h.Draws)
	fmt.Fprintf(b, "- Away Wins: %d\n", h2h.Team2Wins)
	fmt.Fprintf(b, "- Avg Goals: %.1f\n\n", h2h.AvgGoals)
}

func writeRecommendation(b *strings.Builder, recs []value.Recommendation) {
	b.WriteString("**Recommended Bet**\n")
	if len(recs) == 0 {
		b.WriteString("- No strong recommendations for this match\n")
		return
	}

	best := recs[0]
	fmt.Fprintf(b, "%s\n", best.Market)
	fmt.Fprintf(b, "Confidence: %s\n", best.Confidence)
	fmt.Fprintf(b, "Probability: %.1f%%\n", best.AdjustedProbability*100)
	if best.Edge > 0 {
		fmt.Fprintf(b, "Value Rating: %.1f%% edge\n", best.Edge*100)
	} else {
		b.WriteString("Value Rating: No edge detected\n")
	}
	fmt.Fprintf(b, "Suggested Stake: %.1f%%\n", best.KellyStake*100)
	fmt.Fprintf(b, "Risk: %s\n", best.Risk)
	if best.HistoricalAdjustment != 0 {
		fmt.Fprintf(b, "Historical Adj: %+.1f%%\n", best.HistoricalAdjustment*100)
	}

	if len(recs) > 1 {
		b.WriteString("\n**Alternative Picks:**\n")
		alts := recs[1:]
		if len(alts) > 2 {
			alts = alts[:2]
		}
		for _, alt := range alts {
			line := fmt.Sprintf("- %s: %.1f%%", alt.Market, alt.AdjustedProbability*100)
			if alt.Edge > 0 {
				line += fmt.Sprintf(" (+%.1f%%)", alt.Edge*100)
			}
			b.WriteString(line + "\n")
		}
	}
}

// TopBetsTable renders ranked bets as a markdown table.
func TopBetsTable(bets []value.RankedBet) string {
	if len(bets) == 0 {
		return "*No bets available*"
	}

	var b strings.Builder
	b.WriteString("| # | Match | League | Date | Bet | Prob | Odds | Edge | Stake | Conf |\n")
	b.WriteString("|---|-------|--------|------|-----|------|------|------|-------|------|\n")

	for i, bet := range bets {
		edge := "—"
		if bet.Edge > 0 {
			edge = fmt.Sprintf("+%.1f%%", bet.Edge*100)
		}
		odds := "—"
		if bet.Odds > 0 {
			odds = fmt.Sprintf("%.2f", bet.Odds)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %.1f%% | %s | %s | %.1f%% | %s |\n",
			i+1, truncate(bet.Match, 25), truncate(bet.League, 15), shortDate(bet.Date),
			bet.Market, bet.AdjustedProbability*100, odds, edge,
			bet.KellyStake*100, bet.Confidence)
	}
	return strings.TrimRight(b.String(), "\n")
}

// AccumulatorBlock renders one accumulator suggestion.
func AccumulatorBlock(acc value.Accumulator) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s\n\n", acc.Type)
	b.WriteString("| # | Match | Pick | Probability |\n")
	b.WriteString("|---|-------|------|-------------|\n")
	for i, leg := range acc.Legs {
		fmt.Fprintf(&b, "| %d | %s | %s | %.1f%% |\n",
			i+1, truncate(leg.Match, 30), leg.Market, leg.AdjustedProbability*100)
	}

	fmt.Fprintf(&b, "\n**Combined Probability:** %.1f%%\n", acc.CombinedProbability*100)
	if acc.CombinedOdds > 0 {
		fmt.Fprintf(&b, "**Estimated Odds:** %.2f\n", acc.CombinedOdds)
	}
	if acc.ExpectedValue > 0 {
		tag := "-EV"
		if acc.ExpectedValue > 1 {
			tag = "+EV"
		}
		fmt.Fprintf(&b, "**Expected Value:** %.2f %s\n", acc.ExpectedValue, tag)
	}
	return b.String()
}

// SlipBet is one leg of a user-assembled bet slip.
type SlipBet struct {
	Match       string  `json:"match"`
	Market      string  `json:"market"`
	Probability float64 `json:"probability"`
	Odds        float64 `json:"odds"`
}

// BetSlip renders selected bets as a slip with a fresh slip id and the
// combined Kelly stake. Legs without quoted odds fall back to fair
// odds from their probability.
func BetSlip(bets []SlipBet) string {
	if len(bets) == 0 {
		return "*No bets selected*"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Bet Slip %s\n\n", uuid.NewString()[:8])

	totalProb, totalOdds := 1.0, 1.0
	for i, bet := range bets {
		odds := bet.Odds
		if odds <= 0 && bet.Probability > 0 {
			odds = value.ProbabilityToOdds(bet.Probability)
		}
		totalProb *= bet.Probability
		totalOdds *= odds

		fmt.Fprintf(&b, "**%d. %s**\n", i+1, bet.Match)
		fmt.Fprintf(&b, "   - Pick: %s\n", bet.Market)
		fmt.Fprintf(&b, "   - Probability: %.1f%%\n", bet.Probability*100)
		fmt.Fprintf(&b, "   - Odds: %.2f\n\n", odds)
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "**Combined Probability:** %.2f%%\n", totalProb*100)
	fmt.Fprintf(&b, "**Combined Odds:** %.2f\n", totalOdds)
	fmt.Fprintf(&b, "**Suggested Stake:** %.1f%%\n", value.KellyStake(totalProb, totalOdds)*100)
	return b.String()
}

// FullReport assembles the complete daily report: summary, top bets,
// accumulators and detailed panels for the strongest picks.
func FullReport(records []merge.Record, analyses []value.Analysis, topBets []value.RankedBet, accumulators []value.Accumulator, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Sports Betting Intelligence Report\n")
	fmt.Fprintf(&b, "*Generated: %s*\n\n---\n\n", now.Format("2006-01-02 15:04"))

	valueBets, highConf := 0, 0
	for _, bet := range topBets {
		if bet.IsValueBet {
			valueBets++
		}
		if bet.Confidence == value.ConfidenceHigh {
			highConf++
		}
	}
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Matches Analyzed:** %d\n", len(analyses))
	fmt.Fprintf(&b, "- **Value Bets Found:** %d\n", valueBets)
	fmt.Fprintf(&b, "- **High Confidence Picks:** %d\n\n", highConf)

	b.WriteString("## Top 10 Best Bets\n\n")
	top := topBets
	if len(top) > 10 {
		top = top[:10]
	}
	b.WriteString(TopBetsTable(top))
	b.WriteString("\n\n")

	if len(accumulators) > 0 {
		b.WriteString("## Accumulator Suggestions\n\n")
		for _, acc := range accumulators {
			b.WriteString(AccumulatorBlock(acc))
			b.WriteString("\n")
		}
	}

	b.WriteString("## Match Analysis (Top Picks)\n\n")
	for _, idx := range topPanelIndices(analyses, 10) {
		b.WriteString(Panel(recordFor(records, analyses[idx]), analyses[idx]))
		b.WriteString("\n")
	}

	b.WriteString("\n---\n")
	b.WriteString("*Disclaimer: This analysis is for informational purposes only. Bet responsibly.*\n")
	return b.String()
}

// topPanelIndices orders analyses that carry recommendations by edge
// then probability, strongest first, capped at n.
func topPanelIndices(analyses []value.Analysis, n int) []int {
	idx := make([]int, 0, len(analyses))
	for i, a := range analyses {
		if len(a.Recommendations) > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := analyses[idx[a]].Recommendations[0], analyses[idx[b]].Recommendations[0]
		if ra.Edge != rb.Edge {
			return ra.Edge > rb.Edge
		}
		return ra.AdjustedProbability > rb.AdjustedProbability
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

func recordFor(records []merge.Record, analysis value.Analysis) merge.Record {
	for _, rec := range records {
		if fmt.Sprintf("%s vs %s", rec.CSVHome, rec.CSVAway) == analysis.Match {
			return rec
		}
	}
	return merge.Record{}
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func shortDate(s string) string {
	if t, ok := merge.ParseDate(s); ok {
		if strings.Contains(s, "T") {
			return t.Format("02 Jan 15:04")
		}
		return t.Format("02 Jan")
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
