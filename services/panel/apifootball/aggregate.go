// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package apifootball

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxLeagueFetchers bounds concurrent league fixture requests so a full
// sweep of the curated table stays inside the API pacing budget.
const maxLeagueFetchers = 5

// minCuratedFixtures is the threshold below which a winner-league sweep
// falls back to an unfiltered date fetch.
const minCuratedFixtures = 20

// FullMatchData gathers everything the analysis pipeline wants for one
// fixture. Individual endpoint failures are logged and leave the
// corresponding field empty rather than failing the whole fetch; odds
// availability varies wildly between leagues and a missing lineup must
// not sink a value-bet scan.
func (c *Client) FullMatchData(ctx context.Context, fixture Fixture) *MatchData {
	md := &MatchData{Fixture: fixture}
	id := fixture.Info.ID

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				slog.Debug("match data endpoint failed",
					"fixture", id, "endpoint", name, "error", err)
			}
		}()
	}

	run("lineups", func() error {
		v, err := c.Lineups(ctx, id)
		md.Lineups = v
		return err
	})
	run("statistics", func() error {
		v, err := c.FixtureStatistics(ctx, id)
		md.Statistics = v
		return err
	})
	run("events", func() error {
		v, err := c.FixtureEvents(ctx, id)
		md.Events = v
		return err
	})
	run("predictions", func() error {
		v, err := c.Predictions(ctx, id)
		md.Predictions = v
		return err
	})
	run("odds", func() error {
		v, err := c.Odds(ctx, OddsQuery{Fixture: id})
		md.Odds = v
		return err
	})
	run("h2h", func() error {
		home, away := fixture.Teams.Home.ID, fixture.Teams.Away.ID
		if home == 0 || away == 0 {
			return nil
		}
		v, err := c.HeadToHead(ctx, home, away, 10)
		md.HeadToHead = v
		return err
	})

	wg.Wait()
	return md
}

// FetchWinnerFixtures returns the fixtures scheduled on date across the
// curated winner leagues. Leagues are fetched concurrently; when a league
// has no fixtures for the current season the previous season is tried,
// which papers over calendars that straddle the new-year rollover.
//
// When the curated sweep comes back nearly empty the whole date is
// re-fetched without a league filter so the panel still has material on
// international breaks and cup weekends.
func (c *Client) FetchWinnerFixtures(ctx context.Context, date time.Time) ([]Fixture, error) {
	day := date.Format("2006-01-02")
	seasons := seasonsToTry(date)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLeagueFetchers)

	var mu sync.Mutex
	var all []Fixture

	for leagueID := range WinnerLeagues {
		g.Go(func() error {
			for _, season := range seasons {
				fixtures, err := c.Fixtures(gctx, FixtureQuery{
					Date:   day,
					League: leagueID,
					Season: season,
				})
				if err != nil {
					return err
				}
				if len(fixtures) == 0 {
					continue
				}
				mu.Lock()
				all = append(all, fixtures...)
				mu.Unlock()
				break
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(all) < minCuratedFixtures {
		slog.Info("few curated fixtures, fetching full day",
			"date", day, "curated", len(all))
		extra, err := c.Fixtures(ctx, FixtureQuery{Date: day})
		if err == nil {
			all = append(all, extra...)
		} else {
			slog.Warn("full-day fixture fetch failed", "date", day, "error", err)
		}
	}

	return dedupFixtures(all), nil
}

// dedupFixtures drops duplicate fixture ids, keeping first occurrence,
// and orders the result by kickoff time.
func dedupFixtures(in []Fixture) []Fixture {
	seen := make(map[int]struct{}, len(in))
	out := make([]Fixture, 0, len(in))
	for _, f := range in {
		if _, ok := seen[f.Info.ID]; ok {
			continue
		}
		seen[f.Info.ID] = struct{}{}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Info.Date < out[j].Info.Date
	})
	return out
}

// AnalyzeH2H summarizes past meetings from team1's perspective. Matches
// without a final score are skipped.
func AnalyzeH2H(matches []Fixture, team1ID int) H2HStats {
	stats := H2HStats{TotalMatches: len(matches)}

	for _, m := range matches {
		if m.Goals.Home == nil || m.Goals.Away == nil {
			stats.TotalMatches--
			continue
		}
		home, away := *m.Goals.Home, *m.Goals.Away

		var gf, ga int
		if m.Teams.Home.ID == team1ID {
			gf, ga = home, away
		} else {
			gf, ga = away, home
		}
		stats.GoalsFor += gf
		stats.GoalsAgainst += ga

		switch {
		case gf > ga:
			stats.Team1Wins++
		case gf < ga:
			stats.Team2Wins++
		default:
			stats.Draws++
		}

		if home+away > 2 {
			stats.Over25Count++
		}
		if home > 0 && away > 0 {
			stats.BTTSCount++
		}

		stats.Recent = append(stats.Recent, H2HMatch{
			Date:      m.Info.Date,
			HomeTeam:  m.Teams.Home.Name,
			AwayTeam:  m.Teams.Away.Name,
			HomeGoals: home,
			AwayGoals: away,
		})
	}

	if stats.TotalMatches > 0 {
		n := float64(stats.TotalMatches)
		stats.Team1WinRate = float64(stats.Team1Wins) / n
		stats.Team2WinRate = float64(stats.Team2Wins) / n
		stats.DrawRate = float64(stats.Draws) / n
		stats.Over25Rate = float64(stats.Over25Count) / n
		stats.BTTSRate = float64(stats.BTTSCount) / n
		stats.AvgGoals = float64(stats.GoalsFor+stats.GoalsAgainst) / n
	}

	// Recent meetings newest-first, capped at five for display.
	sort.Slice(stats.Recent, func(i, j int) bool {
		return stats.Recent[i].Date > stats.Recent[j].Date
	})
	if len(stats.Recent) > 5 {
		stats.Recent = stats.Recent[:5]
	}

	return stats
}
