// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"fmt"
	"strings"
	"time"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/value"
)

// SystemPrompt returns the analyst persona and its analytical rules.
// The rules mirror the calculations the value engine applies, so that
// the narrative and the numbers agree.
func SystemPrompt(now time.Time) string {
	today := now.Format("2006-01-02")
	return fmt.Sprintf(`You are the analytical brain of a sports betting intelligence engine.
You are a professional betting analyst, not a general chatbot.

TODAY'S DATE: %s

Always analyze the merged match model you are given, never a single
source in isolation. The merged data combines model probabilities,
bookmaker odds with implied probabilities, injuries, team form,
head-to-head history and value detection status.

Analytical rules:
- VALUE BET means model probability exceeds implied probability by at
  least 5 percentage points.
- Injury adjustments: 1 key player out -3%% to -5%%, 2-3 players out
  -8%% to -12%%, 4+ players out -15%% to -20%%.
- Form adjustments: hot streak (3+ wins) +3%% to +5%%, cold streak
  (3+ losses) -3%% to -5%%, mixed form no change.
- Head-to-head: dominant record (70%%+ wins) +5%% to +8%%, slight edge
  (50-70%%) +3%% to +5%%, even record no change.
- Stake sizing uses fractional Kelly (25%% of full Kelly), capped at 5%%
  of bankroll. Never exceed the cap.
- Rank picks by value first, then probability, then soonest kickoff.

For every match you analyze, include: date and league, model
probabilities, bookmaker odds with implied probabilities, the
recommended bet with its edge calculation, the injury report, form and
head-to-head influence, a risk rating (LOW/MEDIUM/HIGH) and the
suggested Kelly stake. Be specific with numbers and show your
reasoning. If asked for something the data cannot answer, say so
plainly rather than inventing figures.`, today)
}

// MatchPrompt renders one merged match as the user message for a deep
// single-match analysis.
func MatchPrompt(rec merge.Record, analysis value.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this match in full:\n\n")
	fmt.Fprintf(&b, "Match: %s\n", analysis.Match)
	fmt.Fprintf(&b, "League: %s\n", analysis.League)
	fmt.Fprintf(&b, "Date: %s\n", analysis.Date)
	if rec.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", rec.Venue)
	}

	b.WriteString("\nModel probabilities:\n")
	writeProb(&b, "Home win", analysis.Probs.HomeWin)
	writeProb(&b, "Draw", analysis.Probs.Draw)
	writeProb(&b, "Away win", analysis.Probs.AwayWin)
	writeProb(&b, "Over 2.5 goals", analysis.Probs.Over25)
	writeProb(&b, "Under 2.5 goals", analysis.Probs.Under25)

	if analysis.Odds.Bookmaker != "" {
		fmt.Fprintf(&b, "\nBookmaker odds (%s):\n", analysis.Odds.Bookmaker)
		writeOdds(&b, "Home win", analysis.Odds.HomeWin)
		writeOdds(&b, "Draw", analysis.Odds.Draw)
		writeOdds(&b, "Away win", analysis.Odds.AwayWin)
		writeOdds(&b, "Over 2.5 goals", analysis.Odds.Over25)
		writeOdds(&b, "Under 2.5 goals", analysis.Odds.Under25)
	} else {
		b.WriteString("\nNo bookmaker odds available for this match.\n")
	}

	writeInjuries(&b, rec.CSVHome, rec.HomeInjuries)
	writeInjuries(&b, rec.CSVAway, rec.AwayInjuries)

	if h2h := rec.H2H; h2h != nil && h2h.TotalMatches > 0 {
		fmt.Fprintf(&b, "\nHead-to-head (last %d): %d-%d-%d (home wins-draws-away wins), avg %.1f goals, over 2.5 in %.0f%%\n",
			h2h.TotalMatches, h2h.Team1Wins, h2h.Draws, h2h.Team2Wins,
			h2h.AvgGoals, h2h.Over25Rate*100)
		for _, m := range h2h.Recent {
			fmt.Fprintf(&b, "  %s: %s %d-%d %s\n", m.Date, m.HomeTeam, m.HomeGoals, m.AwayGoals, m.AwayTeam)
		}
	}

	if len(analysis.Insights) > 0 {
		b.WriteString("\nHistorical insights:\n")
		for _, ins := range analysis.Insights {
			fmt.Fprintf(&b, "- %s\n", ins)
		}
	}

	if len(analysis.Recommendations) > 0 {
		b.WriteString("\nEngine recommendations:\n")
		for _, r := range analysis.Recommendations {
			valueTag := "no value"
			if r.IsValueBet {
				valueTag = fmt.Sprintf("VALUE, edge %+.1f%%", r.Edge*100)
			}
			fmt.Fprintf(&b, "- %s: model %.1f%%, adjusted %.1f%%, implied %.1f%% (%s), %s confidence, %s risk, Kelly stake %.1f%%\n",
				r.Market, r.ModelProbability*100, r.AdjustedProbability*100,
				r.ImpliedProbability*100, valueTag, r.Confidence, r.Risk, r.KellyStake*100)
		}
	}

	b.WriteString("\nGive the full match analysis with your own verdict on the best bet.")
	return b.String()
}

// QuestionPrompt wraps a free-form user question with a digest of the
// merged analyses so the model answers from data, not memory.
func QuestionPrompt(question string, analyses []value.Analysis) string {
	var b strings.Builder

	b.WriteString("Merged match data available today:\n\n")
	for _, a := range analyses {
		fmt.Fprintf(&b, "%s | %s | %s", a.Match, a.League, a.Date)
		if len(a.Recommendations) > 0 {
			top := a.Recommendations[0]
			fmt.Fprintf(&b, " | best: %s %.1f%%", top.Market, top.AdjustedProbability*100)
			if top.IsValueBet {
				fmt.Fprintf(&b, " (value, edge %+.1f%%)", top.Edge*100)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

func writeProb(b *strings.Builder, label string, p *float64) {
	if p == nil {
		return
	}
	fmt.Fprintf(b, "- %s: %.1f%%\n", label, *p*100)
}

func writeOdds(b *strings.Builder, label string, odds *float64) {
	if odds == nil {
		return
	}
	fmt.Fprintf(b, "- %s: %.2f (implied %.1f%%)\n", label, *odds, value.OddsToProbability(*odds)*100)
}

func writeInjuries(b *strings.Builder, team string, injuries []apifootball.Injury) {
	if len(injuries) == 0 {
		return
	}
	fmt.Fprintf(b, "\nInjury report for %s:\n", team)
	for _, inj := range injuries {
		fmt.Fprintf(b, "- %s (%s)\n", inj.Player.Name, inj.Player.Reason)
	}
}
