// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package merge

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tireder/betting-tips/services/panel/apifootball"
)

const (
	// teamMatchThreshold is the minimum per-team similarity for a CSV row
	// to pair with an API fixture.
	teamMatchThreshold = 0.45

	// pairAcceptThreshold is the minimum combined score for accepting a
	// pairing.
	pairAcceptThreshold = 0.55

	// maxDateDriftDays tolerates feeds that disagree on kickoff dates
	// around midnight and rescheduled fixtures.
	maxDateDriftDays = 3

	teamWeight = 0.85
	dateWeight = 0.15
)

// Probabilities are the model's outcome probabilities for one match.
// Nil means the model did not price the market.
type Probabilities struct {
	HomeWin *float64 `json:"home_win"`
	Draw    *float64 `json:"draw"`
	AwayWin *float64 `json:"away_win"`
	Over15  *float64 `json:"over_1_5"`
	Over25  *float64 `json:"over_2_5"`
	Over35  *float64 `json:"over_3_5"`
	Under15 *float64 `json:"under_1_5"`
	Under25 *float64 `json:"under_2_5"`
	Under35 *float64 `json:"under_3_5"`
}

// Market returns the model probability for a market key, or nil.
func (p Probabilities) Market(key string) *float64 {
	switch key {
	case "home_win":
		return p.HomeWin
	case "draw":
		return p.Draw
	case "away_win":
		return p.AwayWin
	case "over_1.5":
		return p.Over15
	case "over_2.5":
		return p.Over25
	case "over_3.5":
		return p.Over35
	case "under_1.5":
		return p.Under15
	case "under_2.5":
		return p.Under25
	case "under_3.5":
		return p.Under35
	}
	return nil
}

// PredictionRow is one model prediction loaded from the CSV feed.
type PredictionRow struct {
	ID     string        `json:"id"`
	Home   string        `json:"home"`
	Away   string        `json:"away"`
	League string        `json:"league"`
	Date   string        `json:"date"`
	Probs  Probabilities `json:"probs"`
}

// Record is one CSV prediction joined with its API fixture context. When
// HasAPIData is false only the CSV side is populated.
type Record struct {
	CSVID     string        `json:"csv_id"`
	CSVHome   string        `json:"csv_home"`
	CSVAway   string        `json:"csv_away"`
	CSVLeague string        `json:"csv_league"`
	CSVDate   string        `json:"csv_date"`
	Probs     Probabilities `json:"model_probs"`

	HasAPIData   bool                    `json:"has_api_data"`
	Match        *apifootball.MatchData  `json:"-"`
	FixtureID    int                     `json:"fixture_id,omitempty"`
	APIHome      string                  `json:"api_home,omitempty"`
	APIAway      string                  `json:"api_away,omitempty"`
	APILeague    string                  `json:"api_league,omitempty"`
	APIDate      string                  `json:"api_date,omitempty"`
	Venue        string                  `json:"venue,omitempty"`
	Odds         MarketOdds              `json:"bookmaker_odds"`
	H2H          *apifootball.H2HStats   `json:"h2h,omitempty"`
	Prediction   *apifootball.Prediction `json:"api_prediction,omitempty"`
	HomeInjuries []apifootball.Injury    `json:"home_injuries,omitempty"`
	AwayInjuries []apifootball.Injury    `json:"away_injuries,omitempty"`
}

// Unmatched describes a CSV row no API fixture paired with.
type Unmatched struct {
	Home   string `json:"home"`
	Away   string `json:"away"`
	League string `json:"league"`
	Date   string `json:"date"`
}

// Merger joins prediction rows with fixture data.
type Merger struct {
	matcher *Matcher

	// Unmatched collects rows the last Merge call could not pair, for
	// diagnostics.
	Unmatched []Unmatched
}

// NewMerger creates a Merger with a fresh team name matcher.
func NewMerger() *Merger {
	return &Merger{matcher: NewMatcher()}
}

// Matcher exposes the underlying team name matcher.
func (m *Merger) Matcher() *Matcher {
	return m.matcher
}

// Merge pairs each prediction row with its best-scoring API fixture and
// returns one record per row. Rows that pair with nothing are still
// returned, carrying only the CSV side, and noted in m.Unmatched.
func (m *Merger) Merge(rows []PredictionRow, matches []*apifootball.MatchData) []Record {
	m.Unmatched = m.Unmatched[:0]
	records := make([]Record, 0, len(rows))

	for _, row := range rows {
		rec := Record{
			CSVID:     row.ID,
			CSVHome:   row.Home,
			CSVAway:   row.Away,
			CSVLeague: row.League,
			CSVDate:   row.Date,
			Probs:     row.Probs,
		}

		if md := m.matchFixture(row, matches); md != nil {
			rec.HasAPIData = true
			rec.Match = md
			rec.FixtureID = md.Fixture.Info.ID
			rec.APIHome = md.Fixture.Teams.Home.Name
			rec.APIAway = md.Fixture.Teams.Away.Name
			rec.APILeague = md.Fixture.League.Name
			rec.APIDate = md.Fixture.Info.Date
			rec.Venue = md.Fixture.Info.Venue.Name
			rec.Odds = ExtractOdds(md.Odds)
			rec.Prediction = md.Predictions
			if len(md.HeadToHead) > 0 {
				h2h := apifootball.AnalyzeH2H(md.HeadToHead, md.Fixture.Teams.Home.ID)
				rec.H2H = &h2h
			}
		} else {
			m.Unmatched = append(m.Unmatched, Unmatched{
				Home:   row.Home,
				Away:   row.Away,
				League: row.League,
				Date:   row.Date,
			})
		}

		records = append(records, rec)
	}

	if len(m.Unmatched) > 0 {
		slog.Debug("predictions without fixture match",
			"unmatched", len(m.Unmatched), "total", len(rows))
	}
	return records
}

// matchFixture finds the best API fixture for one CSV row. Both team
// names must clear the per-team threshold; the combined score weights
// team similarity against date proximity.
func (m *Merger) matchFixture(row PredictionRow, matches []*apifootball.MatchData) *apifootball.MatchData {
	csvHome := strings.TrimSpace(row.Home)
	csvAway := strings.TrimSpace(row.Away)
	csvDate, hasCSVDate := ParseDate(row.Date)

	var best *apifootball.MatchData
	bestScore := 0.0

	for _, md := range matches {
		apiHome := md.Fixture.Teams.Home.Name
		apiAway := md.Fixture.Teams.Away.Name
		if apiHome == "" || apiAway == "" {
			continue
		}

		homeScore := m.matcher.Similarity(csvHome, apiHome)
		awayScore := m.matcher.Similarity(csvAway, apiAway)
		if homeScore < teamMatchThreshold || awayScore < teamMatchThreshold {
			continue
		}
		teamScore := (homeScore + awayScore) / 2

		dateScore := 1.0
		if hasCSVDate {
			if apiDate, ok := ParseDate(md.Fixture.Info.Date); ok {
				drift := daysApart(csvDate, apiDate)
				if drift > maxDateDriftDays {
					continue
				}
				switch drift {
				case 0:
					dateScore = 1.0
				case 1:
					dateScore = 0.9
				case 2:
					dateScore = 0.8
				default:
					dateScore = 0.7
				}
			}
		}

		total := teamScore*teamWeight + dateScore*dateWeight
		if total > bestScore && total > pairAcceptThreshold {
			bestScore = total
			best = md
		}
	}
	return best
}

// dateLayouts are tried in order when parsing feed dates.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
}

// ParseDate parses the date formats seen across prediction feeds and the
// API. RFC3339 timestamps are handled first; "Unknown" and empty values
// report false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unknown") || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}

	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// daysApart returns the absolute calendar-day difference.
func daysApart(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}
