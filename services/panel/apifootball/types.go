// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package apifootball

// envelope is the common API-Football V3 response wrapper. Every endpoint
// returns results inside "response"; errors arrive as either a list or an
// object, so the field is left as raw JSON-decoded any.
type envelope[T any] struct {
	Get        string         `json:"get"`
	Parameters map[string]any `json:"parameters"`
	Errors     any            `json:"errors"`
	Results    int            `json:"results"`
	Response   []T            `json:"response"`
}

// --- Fixtures ---

// Fixture is one entry from the fixtures endpoint.
type Fixture struct {
	Info   FixtureInfo `json:"fixture"`
	League League      `json:"league"`
	Teams  Teams       `json:"teams"`
	Goals  Goals       `json:"goals"`
	Score  struct {
		Halftime Goals `json:"halftime"`
		Fulltime Goals `json:"fulltime"`
	} `json:"score"`
}

type FixtureInfo struct {
	ID        int    `json:"id"`
	Date      string `json:"date"` // RFC3339
	Timestamp int64  `json:"timestamp"`
	Status    struct {
		Long    string `json:"long"`
		Short   string `json:"short"` // NS, 1H, HT, 2H, FT, LIVE, PST, ...
		Elapsed int    `json:"elapsed"`
	} `json:"status"`
	Venue struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		City string `json:"city"`
	} `json:"venue"`
}

type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Winner *bool  `json:"winner"`
}

// Goals uses pointers because the API sends null before kickoff.
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// --- Odds ---

// OddsEntry is one entry from the odds endpoint: a fixture with the odds
// each bookmaker offers per market.
type OddsEntry struct {
	Fixture    FixtureInfo `json:"fixture"`
	League     League      `json:"league"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

type Bookmaker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

type Bet struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"` // "Match Winner", "Goals Over/Under", ...
	Values []BetValue `json:"values"`
}

type BetValue struct {
	Value string `json:"value"` // "Home", "Over 2.5", ...
	Odd   string `json:"odd"`   // decimal odds as string
}

// --- Injuries ---

type Injury struct {
	Player struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Type   string `json:"type"`   // "Missing Fixture", ...
		Reason string `json:"reason"` // "Knee Injury", "Suspended", ...
	} `json:"player"`
	Team    Team        `json:"team"`
	Fixture FixtureInfo `json:"fixture"`
	League  League      `json:"league"`
}

// --- Predictions ---

// Prediction is the API's own model output for a fixture.
type Prediction struct {
	Predictions struct {
		Winner struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Comment string `json:"comment"`
		} `json:"winner"`
		WinOrDraw bool   `json:"win_or_draw"`
		UnderOver string `json:"under_over"`
		Advice    string `json:"advice"`
		Percent   struct {
			Home string `json:"home"`
			Draw string `json:"draw"`
			Away string `json:"away"`
		} `json:"percent"`
	} `json:"predictions"`
	Teams struct {
		Home PredictionTeam `json:"home"`
		Away PredictionTeam `json:"away"`
	} `json:"teams"`
	Comparison struct {
		Form  Percentages `json:"form"`
		Att   Percentages `json:"att"`
		Def   Percentages `json:"def"`
		Total Percentages `json:"total"`
	} `json:"comparison"`
}

type PredictionTeam struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Last5  any    `json:"last_5"`
	League any    `json:"league"`
}

type Percentages struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// --- Standings ---

// StandingsGroup is one entry from the standings endpoint: a league with
// one or more ranked tables (groups).
type StandingsGroup struct {
	League struct {
		ID        int          `json:"id"`
		Name      string       `json:"name"`
		Country   string       `json:"country"`
		Season    int          `json:"season"`
		Standings [][]Standing `json:"standings"`
	} `json:"league"`
}

type Standing struct {
	Rank   int    `json:"rank"`
	Team   Team   `json:"team"`
	Points int    `json:"points"`
	Form   string `json:"form"`
	All    struct {
		Played int `json:"played"`
		Win    int `json:"win"`
		Draw   int `json:"draw"`
		Lose   int `json:"lose"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}

// --- Lineups / events / statistics ---

type Lineup struct {
	Team      Team   `json:"team"`
	Formation string `json:"formation"`
	StartXI   []struct {
		Player LineupPlayer `json:"player"`
	} `json:"startXI"`
	Substitutes []struct {
		Player LineupPlayer `json:"player"`
	} `json:"substitutes"`
	Coach struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"coach"`
}

type LineupPlayer struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Pos    string `json:"pos"`
}

type FixtureEvent struct {
	Time struct {
		Elapsed int `json:"elapsed"`
		Extra   int `json:"extra"`
	} `json:"time"`
	Team   Team `json:"team"`
	Player struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Type   string `json:"type"`   // Goal, Card, subst, Var
	Detail string `json:"detail"` // "Normal Goal", "Yellow Card", ...
}

type FixtureStatistics struct {
	Team       Team `json:"team"`
	Statistics []struct {
		Type  string `json:"type"` // "Shots on Goal", "Ball Possession", ...
		Value any    `json:"value"`
	} `json:"statistics"`
}

// --- Team statistics (season aggregate) ---

type TeamStatistics struct {
	League League `json:"league"`
	Team   Team   `json:"team"`
	Form   string `json:"form"`
	Goals  struct {
		For     TeamGoalStats `json:"for"`
		Against TeamGoalStats `json:"against"`
	} `json:"goals"`
	CleanSheet struct {
		Home  int `json:"home"`
		Away  int `json:"away"`
		Total int `json:"total"`
	} `json:"clean_sheet"`
}

type TeamGoalStats struct {
	Total struct {
		Home  int `json:"home"`
		Away  int `json:"away"`
		Total int `json:"total"`
	} `json:"total"`
	Average struct {
		Home  string `json:"home"`
		Away  string `json:"away"`
		Total string `json:"total"`
	} `json:"average"`
}

// --- Players ---

// TopPlayer is one entry from the topscorers/topassists/cards endpoints.
type TopPlayer struct {
	Player struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Statistics []struct {
		Team  Team `json:"team"`
		Goals struct {
			Total   *int `json:"total"`
			Assists *int `json:"assists"`
		} `json:"goals"`
		Cards struct {
			Yellow *int `json:"yellow"`
			Red    *int `json:"red"`
		} `json:"cards"`
	} `json:"statistics"`
}

// --- Status ---

// AccountStatus is the status endpoint's payload: the subscription and
// request quota for the configured key.
type AccountStatus struct {
	Account struct {
		Email string `json:"email"`
	} `json:"account"`
	Subscription struct {
		Plan   string `json:"plan"`
		Active bool   `json:"active"`
	} `json:"subscription"`
	Requests struct {
		Current  int `json:"current"`
		LimitDay int `json:"limit_day"`
	} `json:"requests"`
}

// --- Aggregates ---

// MatchData bundles everything the analyzer wants for one fixture.
// Individual sections stay empty when their endpoint failed or the plan
// does not cover it.
type MatchData struct {
	Fixture     Fixture             `json:"fixture"`
	Lineups     []Lineup            `json:"lineups"`
	Statistics  []FixtureStatistics `json:"statistics"`
	Events      []FixtureEvent      `json:"events"`
	Predictions *Prediction         `json:"predictions,omitempty"`
	Odds        []OddsEntry         `json:"odds"`
	HeadToHead  []Fixture           `json:"h2h"`
}

// H2HStats summarizes a head-to-head record from team1's perspective.
// Rates are fractions of the finished matches counted.
type H2HStats struct {
	TotalMatches int     `json:"total_matches"`
	Team1Wins    int     `json:"team1_wins"`
	Team2Wins    int     `json:"team2_wins"`
	Draws        int     `json:"draws"`
	GoalsFor     int     `json:"goals_for"`
	GoalsAgainst int     `json:"goals_against"`
	Over25Count  int     `json:"over25_count"`
	BTTSCount    int     `json:"btts_count"`
	Team1WinRate float64 `json:"team1_win_rate"`
	Team2WinRate float64 `json:"team2_win_rate"`
	DrawRate     float64 `json:"draw_rate"`
	Over25Rate   float64 `json:"over25_rate"`
	BTTSRate     float64 `json:"btts_rate"`
	AvgGoals     float64 `json:"avg_goals"`

	// Recent holds up to five meetings, newest first.
	Recent []H2HMatch `json:"recent"`
}

// H2HMatch is one past meeting in an H2HStats summary.
type H2HMatch struct {
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
}
