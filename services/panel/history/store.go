// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package history caches team statistics, recent matches, head-to-head
// records and form trends in an embedded BadgerDB.
//
// # Description
//
// The cache survives restarts and feeds the value analyzer with
// historical prediction adjustments without burning API quota. Entries
// expire after 24 hours; the fetcher re-pulls stale teams on demand.
//
// # Layout
//
// Keys are namespaced by record kind:
//
//	team:<id>        TeamRecord (stats and ratings)
//	matches:<id>     []MatchRecord (last 10, newest first)
//	form:<id>        FormRecord
//	h2h:<id1>:<id2>  H2HRecord (ids ordered ascending)
//
// Thread Safety: Store is safe for concurrent use.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// CacheExpiry is how long cached team data stays fresh.
const CacheExpiry = 24 * time.Hour

// MaxMatchesPerTeam caps the per-team match history.
const MaxMatchesPerTeam = 10

// ErrNotFound is returned when a record is not in the cache.
var ErrNotFound = errors.New("history: not found")

// Ratings grade a team 0-100 across the dimensions the analyzer uses.
type Ratings struct {
	Attack      float64 `json:"attack"`
	Defense     float64 `json:"defense"`
	Form        float64 `json:"form"`
	Home        float64 `json:"home"`
	Away        float64 `json:"away"`
	Consistency float64 `json:"consistency"`
}

// Overall is the mean of all rating dimensions.
func (r Ratings) Overall() float64 {
	return (r.Attack + r.Defense + r.Form + r.Home + r.Away + r.Consistency) / 6
}

// defaultRatings is the neutral grade for teams without history.
func defaultRatings() Ratings {
	return Ratings{Attack: 50, Defense: 50, Form: 50, Home: 50, Away: 50, Consistency: 50}
}

// TeamRecord is a cached team with aggregated stats and ratings.
type TeamRecord struct {
	TeamID     int       `json:"team_id"`
	TeamName   string    `json:"team_name"`
	LeagueID   int       `json:"league_id"`
	LeagueName string    `json:"league_name"`
	Ratings    Ratings   `json:"ratings"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MatchRecord is one cached match result.
type MatchRecord struct {
	FixtureID    int    `json:"fixture_id"`
	HomeTeamID   int    `json:"home_team_id"`
	AwayTeamID   int    `json:"away_team_id"`
	HomeTeamName string `json:"home_team_name"`
	AwayTeamName string `json:"away_team_name"`
	LeagueID     int    `json:"league_id"`
	LeagueName   string `json:"league_name"`
	Date         string `json:"date"` // YYYY-MM-DD
	HomeGoals    int    `json:"home_goals"`
	AwayGoals    int    `json:"away_goals"`
	Status       string `json:"status"`
	Venue        string `json:"venue"`
}

// H2HRecord is a cached head-to-head summary. Team1ID is always the
// smaller id so both orderings hit the same key.
type H2HRecord struct {
	Team1ID      int       `json:"team1_id"`
	Team2ID      int       `json:"team2_id"`
	Team1Name    string    `json:"team1_name"`
	Team2Name    string    `json:"team2_name"`
	TotalMatches int       `json:"total_matches"`
	Team1Wins    int       `json:"team1_wins"`
	Draws        int       `json:"draws"`
	Team2Wins    int       `json:"team2_wins"`
	Team1Goals   int       `json:"team1_goals"`
	Team2Goals   int       `json:"team2_goals"`
	LastMatches  []string  `json:"last_matches"` // "YYYY-MM-DD Home 2-1 Away"
	UpdatedAt    time.Time `json:"updated_at"`
}

// FormRecord is a team's rolling last-5 form.
type FormRecord struct {
	TeamID        int       `json:"team_id"`
	TeamName      string    `json:"team_name"`
	FormString    string    `json:"form_string"` // e.g. "WWDLW", newest first
	Points        int       `json:"last_5_points"`
	GoalsFor      int       `json:"last_5_goals_for"`
	GoalsAgainst  int       `json:"last_5_goals_against"`
	CleanSheets   int       `json:"last_5_clean_sheets"`
	Trend         string    `json:"trend"` // UP, DOWN, STABLE
	TrendStrength float64   `json:"trend_strength"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Stats summarize cache contents.
type Stats struct {
	Teams       int    `json:"teams"`
	MatchSets   int    `json:"match_sets"`
	H2HRecords  int    `json:"h2h_records"`
	FormRecords int    `json:"form_records"`
	Path        string `json:"path"`
}

// Store is the BadgerDB-backed team history cache.
type Store struct {
	db   *badger.DB
	path string
}

// badgerLogger adapts slog to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens a persistent cache at dir, creating it when missing.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("history: cache directory required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}

	opts := badger.DefaultOptions(dir).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history cache: %w", err)
	}
	return &Store{db: db, path: dir}, nil
}

// OpenInMemory opens a throwaway cache for tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory history cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fresh reports whether a timestamp is inside the cache expiry window.
func Fresh(updatedAt time.Time) bool {
	if updatedAt.IsZero() {
		return false
	}
	return time.Since(updatedAt) < CacheExpiry
}

func teamKey(id int) []byte    { return fmt.Appendf(nil, "team:%d", id) }
func matchesKey(id int) []byte { return fmt.Appendf(nil, "matches:%d", id) }
func formKey(id int) []byte    { return fmt.Appendf(nil, "form:%d", id) }

func h2hKey(id1, id2 int) []byte {
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	return fmt.Appendf(nil, "h2h:%d:%d", id1, id2)
}

func (s *Store) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *Store) get(key []byte, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// SaveTeam stores a team record, stamping UpdatedAt.
func (s *Store) SaveTeam(rec TeamRecord) error {
	rec.UpdatedAt = time.Now()
	return s.put(teamKey(rec.TeamID), rec)
}

// Team returns a cached team by id.
func (s *Store) Team(teamID int) (TeamRecord, error) {
	var rec TeamRecord
	err := s.get(teamKey(teamID), &rec)
	return rec, err
}

// TeamByName returns the first cached team whose name contains name,
// case-insensitively.
func (s *Store) TeamByName(name string) (TeamRecord, error) {
	var out TeamRecord
	found := false
	err := s.scanPrefix([]byte("team:"), func(val []byte) (bool, error) {
		var rec TeamRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return false, err
		}
		if containsFold(rec.TeamName, name) {
			out = rec
			found = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return out, err
	}
	if !found {
		return out, ErrNotFound
	}
	return out, nil
}

// SaveMatches stores a team's recent matches, newest first, capped at
// MaxMatchesPerTeam.
func (s *Store) SaveMatches(teamID int, matches []MatchRecord) error {
	if len(matches) > MaxMatchesPerTeam {
		matches = matches[:MaxMatchesPerTeam]
	}
	return s.put(matchesKey(teamID), matches)
}

// Matches returns a team's cached recent matches.
func (s *Store) Matches(teamID int) ([]MatchRecord, error) {
	var recs []MatchRecord
	err := s.get(matchesKey(teamID), &recs)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return recs, err
}

// SaveH2H stores a head-to-head record under the order-independent key,
// swapping the sides when needed so Team1 is always the smaller id.
func (s *Store) SaveH2H(rec H2HRecord) error {
	if rec.Team1ID > rec.Team2ID {
		rec.Team1ID, rec.Team2ID = rec.Team2ID, rec.Team1ID
		rec.Team1Name, rec.Team2Name = rec.Team2Name, rec.Team1Name
		rec.Team1Wins, rec.Team2Wins = rec.Team2Wins, rec.Team1Wins
		rec.Team1Goals, rec.Team2Goals = rec.Team2Goals, rec.Team1Goals
	}
	rec.UpdatedAt = time.Now()
	return s.put(h2hKey(rec.Team1ID, rec.Team2ID), rec)
}

// H2H returns the cached head-to-head record for a pairing, in either
// order.
func (s *Store) H2H(team1ID, team2ID int) (H2HRecord, error) {
	var rec H2HRecord
	err := s.get(h2hKey(team1ID, team2ID), &rec)
	return rec, err
}

// H2HByNames returns the cached head-to-head record whose team names
// contain the given names, in either order.
func (s *Store) H2HByNames(name1, name2 string) (H2HRecord, error) {
	var out H2HRecord
	found := false
	err := s.scanPrefix([]byte("h2h:"), func(val []byte) (bool, error) {
		var rec H2HRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return false, err
		}
		direct := containsFold(rec.Team1Name, name1) && containsFold(rec.Team2Name, name2)
		flipped := containsFold(rec.Team1Name, name2) && containsFold(rec.Team2Name, name1)
		if direct || flipped {
			out = rec
			found = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return out, err
	}
	if !found {
		return out, ErrNotFound
	}
	return out, nil
}

// SaveForm stores a team's form record, stamping UpdatedAt.
func (s *Store) SaveForm(rec FormRecord) error {
	rec.UpdatedAt = time.Now()
	return s.put(formKey(rec.TeamID), rec)
}

// Form returns a team's cached form by id.
func (s *Store) Form(teamID int) (FormRecord, error) {
	var rec FormRecord
	err := s.get(formKey(teamID), &rec)
	return rec, err
}

// FormByName returns the first cached form whose team name contains
// name, case-insensitively.
func (s *Store) FormByName(name string) (FormRecord, error) {
	var out FormRecord
	found := false
	err := s.scanPrefix([]byte("form:"), func(val []byte) (bool, error) {
		var rec FormRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return false, err
		}
		if containsFold(rec.TeamName, name) {
			out = rec
			found = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return out, err
	}
	if !found {
		return out, ErrNotFound
	}
	return out, nil
}

// Clear drops every cached record.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Stats counts the cached record kinds.
func (s *Store) Stats() (Stats, error) {
	st := Stats{Path: s.path}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, "team:"):
				st.Teams++
			case strings.HasPrefix(key, "matches:"):
				st.MatchSets++
			case strings.HasPrefix(key, "h2h:"):
				st.H2HRecords++
			case strings.HasPrefix(key, "form:"):
				st.FormRecords++
			}
		}
		return nil
	})
	return st, err
}

// scanPrefix iterates values under a key prefix until fn reports done.
func (s *Store) scanPrefix(prefix []byte, fn func(val []byte) (bool, error)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var done bool
			err := it.Item().Value(func(val []byte) error {
				var ferr error
				done, ferr = fn(val)
				return ferr
			})
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
		return nil
	})
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
