// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tireder/betting-tips/pkg/secrets"
	"github.com/tireder/betting-tips/pkg/validation"
	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/predictions"
	"github.com/tireder/betting-tips/services/panel/report"
	"github.com/tireder/betting-tips/services/panel/value"
)

var (
	reportHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	reportValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CE38B"))
)

// runReport generates a betting report offline: load the predictions
// CSV, fetch the day's fixtures, merge, analyze and print.
func runReport(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("csv")
	dateStr, _ := cmd.Flags().GetString("date")
	asHTML, _ := cmd.Flags().GetBool("html")
	archive, _ := cmd.Flags().GetBool("archive")

	if csvPath == "" {
		return fmt.Errorf("--csv is required")
	}
	date := time.Now()
	if dateStr != "" {
		if err := validation.ValidateDate(dateStr); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date, _ = time.Parse("2006-01-02", dateStr)
	}

	rows, err := predictions.Load(csvPath)
	if err != nil {
		return fmt.Errorf("load predictions: %w", err)
	}

	store := secrets.NewStore()
	if err := store.Resolve("FOOTBALL_API_KEY", secrets.FootballKey); err != nil {
		return fmt.Errorf("football API key: %w", err)
	}
	key, err := store.Open(secrets.FootballKey)
	if err != nil {
		return err
	}
	api := apifootball.NewClient(key)

	ctx := context.Background()
	fixtures, err := api.FetchWinnerFixtures(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch fixtures: %w", err)
	}

	var mu sync.Mutex
	matches := make([]*apifootball.MatchData, 0, len(fixtures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, fixture := range fixtures {
		g.Go(func() error {
			if md := api.FullMatchData(gctx, fixture); md != nil {
				mu.Lock()
				matches = append(matches, md)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	records := merge.NewMerger().Merge(rows, matches)
	analyzer := &value.Analyzer{}
	analyses := make([]value.Analysis, 0, len(records))
	for _, rec := range records {
		analyses = append(analyses, analyzer.AnalyzeMatch(rec))
	}

	now := time.Now()
	topBets := analyzer.TopBets(records, 10, 1.5)
	accumulators := analyzer.Accumulators(records, 3, 1.5)
	body := report.FullReport(records, analyses, topBets, accumulators, now)

	if asHTML || archive {
		html, err := report.HTMLReport("Betting Tips Report", body, now)
		if err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		if archive {
			archiver, err := report.NewArchiver(ctx)
			if err != nil {
				return fmt.Errorf("archiver: %w", err)
			}
			if archiver == nil {
				return fmt.Errorf("archival requested but %s is unset", report.BucketEnvVar)
			}
			defer archiver.Close()
			path, err := archiver.Archive(ctx, "report-"+now.Format("150405"), html, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "archived %s\n", path)
		}
		if asHTML {
			fmt.Print(html)
			return nil
		}
	}

	printStyled(body)
	return nil
}

// printStyled prints markdown with light styling on a TTY and verbatim
// otherwise.
func printStyled(body string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Print(body)
		return
	}
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "#"):
			fmt.Println(reportHeadingStyle.Render(line))
		case strings.HasPrefix(line, "**"):
			fmt.Println(reportValueStyle.Render(line))
		default:
			fmt.Println(line)
		}
	}
}
