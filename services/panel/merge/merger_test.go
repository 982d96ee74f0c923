// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tireder/betting-tips/services/panel/apifootball"
)

func fp(v float64) *float64 { return &v }

func matchData(id int, home, away, date string) *apifootball.MatchData {
	md := &apifootball.MatchData{}
	md.Fixture.Info.ID = id
	md.Fixture.Info.Date = date
	md.Fixture.Teams.Home = apifootball.Team{ID: id * 10, Name: home}
	md.Fixture.Teams.Away = apifootball.Team{ID: id*10 + 1, Name: away}
	return md
}

func TestMerge_PairsByNameAndDate(t *testing.T) {
	m := NewMerger()

	rows := []PredictionRow{
		{ID: "1", Home: "Man Utd", Away: "Liverpool", Date: "2025-08-29",
			Probs: Probabilities{HomeWin: fp(0.48)}},
	}
	matches := []*apifootball.MatchData{
		matchData(100, "Arsenal", "Chelsea", "2025-08-29T15:00:00+00:00"),
		matchData(200, "Manchester United", "Liverpool FC", "2025-08-29T19:00:00+00:00"),
	}

	records := m.Merge(rows, matches)
	require.Len(t, records, 1)
	rec := records[0]
	assert.True(t, rec.HasAPIData)
	assert.Equal(t, 200, rec.FixtureID)
	assert.Equal(t, "Manchester United", rec.APIHome)
	assert.Empty(t, m.Unmatched)
}

func TestMerge_UnmatchedRowKeepsCSVSide(t *testing.T) {
	m := NewMerger()

	rows := []PredictionRow{
		{ID: "7", Home: "Real Madrid", Away: "Barcelona", Date: "2025-08-29"},
	}
	matches := []*apifootball.MatchData{
		matchData(100, "Ajax", "PSV Eindhoven", "2025-08-29T15:00:00+00:00"),
	}

	records := m.Merge(rows, matches)
	require.Len(t, records, 1)
	assert.False(t, records[0].HasAPIData)
	assert.Equal(t, "Real Madrid", records[0].CSVHome)
	require.Len(t, m.Unmatched, 1)
	assert.Equal(t, "Barcelona", m.Unmatched[0].Away)
}

func TestMerge_RejectsLargeDateDrift(t *testing.T) {
	m := NewMerger()

	rows := []PredictionRow{
		{Home: "Man Utd", Away: "Liverpool", Date: "2025-08-20"},
	}
	matches := []*apifootball.MatchData{
		matchData(200, "Manchester United", "Liverpool FC", "2025-08-29T19:00:00+00:00"),
	}

	records := m.Merge(rows, matches)
	assert.False(t, records[0].HasAPIData)
}

func TestMerge_SmallDateDriftAccepted(t *testing.T) {
	m := NewMerger()

	rows := []PredictionRow{
		{Home: "Man Utd", Away: "Liverpool", Date: "2025-08-28"},
	}
	matches := []*apifootball.MatchData{
		matchData(200, "Manchester United", "Liverpool FC", "2025-08-29T19:00:00+00:00"),
	}

	records := m.Merge(rows, matches)
	assert.True(t, records[0].HasAPIData)
}

func TestMerge_ComputesH2HFromHomePerspective(t *testing.T) {
	m := NewMerger()
	g := func(n int) *int { return &n }

	md := matchData(200, "Manchester United", "Liverpool FC", "2025-08-29T19:00:00+00:00")
	md.HeadToHead = []apifootball.Fixture{
		{
			Info:  apifootball.FixtureInfo{Date: "2025-01-10T15:00:00+00:00"},
			Teams: apifootball.Teams{Home: apifootball.Team{ID: 2000}, Away: apifootball.Team{ID: 2001}},
			Goals: apifootball.Goals{Home: g(2), Away: g(0)},
		},
	}

	rows := []PredictionRow{{Home: "Man Utd", Away: "Liverpool", Date: "2025-08-29"}}
	records := m.Merge(rows, []*apifootball.MatchData{md})

	require.NotNil(t, records[0].H2H)
	assert.Equal(t, 1, records[0].H2H.Team1Wins)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2025-08-29", true},
		{"2025-08-29 19:00:00", true},
		{"29/08/2025", true},
		{"2025-08-29T19:00:00+00:00", true},
		{"2025-08-29T19:00:00Z", true},
		{"Unknown", false},
		{"nan", false},
		{"", false},
		{"not a date", false},
	}
	for _, tt := range tests {
		_, ok := ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
	}
}

func TestExtractOdds(t *testing.T) {
	entries := []apifootball.OddsEntry{{
		Bookmakers: []apifootball.Bookmaker{{
			Name: "Bet365",
			Bets: []apifootball.Bet{
				{
					Name: "Match Winner",
					Values: []apifootball.BetValue{
						{Value: "Home", Odd: "2.10"},
						{Value: "Draw", Odd: "3.40"},
						{Value: "Away", Odd: "3.60"},
					},
				},
				{
					Name: "Goals Over/Under",
					Values: []apifootball.BetValue{
						{Value: "Over 2.5", Odd: "1.95"},
						{Value: "Under 2.5", Odd: "1.90"},
					},
				},
				{
					Name: "Both Teams Score",
					Values: []apifootball.BetValue{
						{Value: "Yes", Odd: "1.72"},
						{Value: "No", Odd: "2.05"},
					},
				},
			},
		}},
	}}

	odds := ExtractOdds(entries)
	assert.Equal(t, "Bet365", odds.Bookmaker)
	require.NotNil(t, odds.HomeWin)
	assert.Equal(t, 2.10, *odds.HomeWin)
	require.NotNil(t, odds.Under25)
	assert.Equal(t, 1.90, *odds.Under25)
	require.NotNil(t, odds.BTTSYes)
	assert.Equal(t, 1.72, *odds.BTTSYes)
	assert.Nil(t, odds.Over15)
	assert.Nil(t, odds.Market("over_1.5"))
	assert.Equal(t, odds.HomeWin, odds.Market("home_win"))
}

func TestExtractOdds_Empty(t *testing.T) {
	odds := ExtractOdds(nil)
	assert.Empty(t, odds.Bookmaker)
	assert.Nil(t, odds.HomeWin)
}

func TestExtractOdds_MalformedOddIgnored(t *testing.T) {
	entries := []apifootball.OddsEntry{{
		Bookmakers: []apifootball.Bookmaker{{
			Name: "Bet365",
			Bets: []apifootball.Bet{{
				Name:   "Match Winner",
				Values: []apifootball.BetValue{{Value: "Home", Odd: "n/a"}},
			}},
		}},
	}}
	odds := ExtractOdds(entries)
	assert.Nil(t, odds.HomeWin)
}
