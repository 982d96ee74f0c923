// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package apifootball

import "time"

// WinnerLeagues maps league ids to names for the leagues covered by the
// panel: the ones the Winner bookmaker actually takes bets on.
var WinnerLeagues = map[int]string{
	// Top European leagues
	39:  "England - Premier League",
	40:  "England - Championship",
	41:  "England - League One",
	42:  "England - League Two",
	140: "Spain - La Liga",
	141: "Spain - La Liga 2",
	78:  "Germany - Bundesliga",
	79:  "Germany - 2. Bundesliga",
	135: "Italy - Serie A",
	136: "Italy - Serie B",
	61:  "France - Ligue 1",
	62:  "France - Ligue 2",
	94:  "Portugal - Primeira Liga",
	88:  "Netherlands - Eredivisie",
	89:  "Netherlands - Eerste Divisie",
	144: "Belgium - Jupiler Pro League",
	145: "Belgium - First Division B",
	203: "Turkey - Süper Lig",

	// UEFA competitions
	2:   "UEFA - Champions League",
	3:   "UEFA - Europa League",
	848: "UEFA - Conference League",
	4:   "UEFA - Euro Championship",
	1:   "FIFA - World Cup",

	// South American
	71:  "Brazil - Serie A",
	72:  "Brazil - Serie B",
	128: "Argentina - Liga Profesional Argentina",
	129: "Argentina - Primera Nacional",

	// Other European
	179: "Scotland - Premiership",
	180: "Scotland - Championship",
	197: "Greece - Super League",
	283: "Romania - Liga I",
	207: "Switzerland - Super League",
	208: "Switzerland - Challenge League",
	218: "Austria - Bundesliga",
	219: "Austria - 2. Liga",
	235: "Russia - Premier League",
	253: "USA - MLS",

	// Scandinavian
	103: "Norway - Eliteserien",
	104: "Norway - 1. Division",
	119: "Denmark - Superliga",
	120: "Denmark - 1st Division",
	113: "Sweden - Allsvenskan",

	// Eastern European
	106: "Poland - Ekstraklasa",
	107: "Poland - I Liga",
	345: "Czech Republic - First League",
	332: "Slovakia - Super Liga",
	333: "Ukraine - Premier League",

	// Asian leagues
	292: "South Korea - K League 1",
	98:  "Japan - J1 League",
	99:  "Japan - J2 League",
	307: "Saudi Arabia - Pro League",

	// Israel
	383: "Israel - Ligat Ha'al",
	382: "Israel - Leumit",
	384: "Israel - State Cup",
	385: "Israel - Toto Cup Ligat Al",
}

// CurrentSeason returns the football season year for now: European
// seasons start in August, so January-July belongs to the previous year.
func CurrentSeason() int {
	return SeasonFor(time.Now())
}

// SeasonFor returns the season year a given date falls in.
func SeasonFor(t time.Time) int {
	if t.Month() >= time.August {
		return t.Year()
	}
	return t.Year() - 1
}

// seasonsToTry returns the candidate season years for fixtures on a date.
// August-December needs only the current year; January-July must also try
// the current calendar year for calendar-year leagues (MLS and others).
func seasonsToTry(t time.Time) []int {
	if t.Month() >= time.August {
		return []int{t.Year()}
	}
	return []int{t.Year() - 1, t.Year()}
}
