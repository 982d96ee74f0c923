// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package merge

import (
	"strconv"
	"strings"

	"github.com/tireder/betting-tips/services/panel/apifootball"
)

// MarketOdds holds decimal odds for the markets the panel analyzes. Nil
// means the bookmaker did not quote the market.
type MarketOdds struct {
	HomeWin *float64 `json:"home_win"`
	Draw    *float64 `json:"draw"`
	AwayWin *float64 `json:"away_win"`
	Over15  *float64 `json:"over_1_5"`
	Under15 *float64 `json:"under_1_5"`
	Over25  *float64 `json:"over_2_5"`
	Under25 *float64 `json:"under_2_5"`
	Over35  *float64 `json:"over_3_5"`
	Under35 *float64 `json:"under_3_5"`
	BTTSYes *float64 `json:"btts_yes"`
	BTTSNo  *float64 `json:"btts_no"`

	// Bookmaker is the source of the quotes above.
	Bookmaker string `json:"bookmaker"`
}

// ExtractOdds flattens the API's bookmakers/bets/values nesting into one
// MarketOdds. Only the first bookmaker with quotes is used so all
// extracted prices come from a single book.
func ExtractOdds(entries []apifootball.OddsEntry) MarketOdds {
	var out MarketOdds

	for _, entry := range entries {
		for _, bm := range entry.Bookmakers {
			if out.Bookmaker == "" {
				out.Bookmaker = bm.Name
			}
			for _, bet := range bm.Bets {
				switch bet.Name {
				case "Match Winner":
					for _, v := range bet.Values {
						odd := parseOdd(v.Odd)
						switch v.Value {
						case "Home":
							out.HomeWin = odd
						case "Draw":
							out.Draw = odd
						case "Away":
							out.AwayWin = odd
						}
					}
				case "Goals Over/Under":
					for _, v := range bet.Values {
						odd := parseOdd(v.Odd)
						switch {
						case strings.Contains(v.Value, "Over 1.5"):
							out.Over15 = odd
						case strings.Contains(v.Value, "Under 1.5"):
							out.Under15 = odd
						case strings.Contains(v.Value, "Over 2.5"):
							out.Over25 = odd
						case strings.Contains(v.Value, "Under 2.5"):
							out.Under25 = odd
						case strings.Contains(v.Value, "Over 3.5"):
							out.Over35 = odd
						case strings.Contains(v.Value, "Under 3.5"):
							out.Under35 = odd
						}
					}
				case "Both Teams Score":
					for _, v := range bet.Values {
						odd := parseOdd(v.Odd)
						switch v.Value {
						case "Yes":
							out.BTTSYes = odd
						case "No":
							out.BTTSNo = odd
						}
					}
				}
			}
			// Only the first book per entry keeps prices consistent.
			break
		}
	}
	return out
}

// Market returns the odds for a market key, or nil when unquoted.
func (o MarketOdds) Market(key string) *float64 {
	switch key {
	case "home_win":
		return o.HomeWin
	case "draw":
		return o.Draw
	case "away_win":
		return o.AwayWin
	case "over_1.5":
		return o.Over15
	case "under_1.5":
		return o.Under15
	case "over_2.5":
		return o.Over25
	case "under_2.5":
		return o.Under25
	case "over_3.5":
		return o.Over35
	case "under_3.5":
		return o.Under35
	case "btts_yes":
		return o.BTTSYes
	case "btts_no":
		return o.BTTSNo
	}
	return nil
}

func parseOdd(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return nil
	}
	return &f
}
