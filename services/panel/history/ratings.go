// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import "math"

// CalculateRatings grades a team 0-100 across attack, defense, form,
// home, away and consistency from its recent matches. Teams with no
// history get neutral 50s.
func CalculateRatings(teamID int, teamName string, matches []MatchRecord) Ratings {
	if len(matches) == 0 {
		return defaultRatings()
	}
	if len(matches) > MaxMatchesPerTeam {
		matches = matches[:MaxMatchesPerTeam]
	}

	var homeResults, awayResults []byte
	var scored, conceded []float64

	for _, m := range matches {
		gf, ga := teamGoals(m, teamID, teamName)
		scored = append(scored, float64(gf))
		conceded = append(conceded, float64(ga))

		var result byte
		switch {
		case gf > ga:
			result = 'W'
		case gf == ga:
			result = 'D'
		default:
			result = 'L'
		}
		if isHomeMatch(m, teamID, teamName) {
			homeResults = append(homeResults, result)
		} else {
			awayResults = append(awayResults, result)
		}
	}

	avgScored := mean(scored)
	avgConceded := mean(conceded)

	r := Ratings{
		// Two goals per game scores a full attack rating.
		Attack: min(avgScored/2.0*100, 100),
		// Conceding three per game zeroes the defense rating.
		Defense: max(100-avgConceded/3.0*100, 0),
	}

	all := append(append([]byte{}, homeResults...), awayResults...)
	r.Form = float64(formPoints(all[:min(5, len(all))])) / 15 * 100

	r.Home = venueRating(homeResults)
	r.Away = venueRating(awayResults)

	if len(scored) > 1 {
		spread := variance(scored) + variance(conceded)
		r.Consistency = max(100-spread*20, 0)
	} else {
		r.Consistency = 50
	}

	return Ratings{
		Attack:      round1(r.Attack),
		Defense:     round1(r.Defense),
		Form:        round1(r.Form),
		Home:        round1(r.Home),
		Away:        round1(r.Away),
		Consistency: round1(r.Consistency),
	}
}

func venueRating(results []byte) float64 {
	if len(results) == 0 {
		return 50
	}
	n := min(5, len(results))
	return float64(formPoints(results[:n])) / float64(n*3) * 100
}

func isHomeMatch(m MatchRecord, teamID int, teamName string) bool {
	return m.HomeTeamID == teamID ||
		(teamName != "" && containsFold(m.HomeTeamName, teamName))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the sample variance, matching the statistics used when
// these ratings were first tuned.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
