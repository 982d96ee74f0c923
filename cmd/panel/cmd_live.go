// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tireder/betting-tips/services/panel/apifootball"
)

const livePollInterval = 30 * time.Second

var (
	liveTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	liveScoreStyle  = lipgloss.NewStyle().Bold(true)
	liveLeagueStyle = lipgloss.NewStyle().Faint(true)
	liveErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type liveResponse struct {
	Count    int                   `json:"count"`
	Fixtures []apifootball.Fixture `json:"fixtures"`
}

type liveFetchedMsg struct {
	fixtures []apifootball.Fixture
	err      error
}

type liveTickMsg struct{}

type liveModel struct {
	url      string
	spinner  spinner.Model
	fixtures []apifootball.Fixture
	fetched  bool
	err      error
}

// runLive renders a terminal scoreboard over a running panel's live
// endpoint, refreshing on a fixed interval.
func runLive(cmd *cobra.Command, args []string) error {
	url := serverAddr + "/v1/live"
	if len(args) > 0 {
		url += "?leagues=" + strings.Join(args, ",")
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := liveModel{url: url, spinner: sp}

	_, err := tea.NewProgram(m).Run()
	return err
}

func fetchLive(url string) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 15 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			return liveFetchedMsg{err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return liveFetchedMsg{err: fmt.Errorf("panel returned %s", resp.Status)}
		}
		var lr liveResponse
		if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
			return liveFetchedMsg{err: err}
		}
		return liveFetchedMsg{fixtures: lr.Fixtures}
	}
}

func (m liveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchLive(m.url))
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case liveFetchedMsg:
		m.fetched = true
		m.err = msg.err
		if msg.err == nil {
			m.fixtures = msg.fixtures
		}
		return m, tea.Tick(livePollInterval, func(time.Time) tea.Msg { return liveTickMsg{} })

	case liveTickMsg:
		return m, fetchLive(m.url)

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m liveModel) View() string {
	var b strings.Builder
	b.WriteString(liveTitleStyle.Render("Live Scores"))
	b.WriteString("\n\n")

	if !m.fetched {
		b.WriteString(m.spinner.View() + " loading...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(liveErrorStyle.Render("error: "+m.err.Error()) + "\n")
		b.WriteString("\npress q to quit\n")
		return b.String()
	}
	if len(m.fixtures) == 0 {
		b.WriteString("No matches in play.\n\npress q to quit\n")
		return b.String()
	}

	for _, f := range m.fixtures {
		score := "- : -"
		if f.Goals.Home != nil && f.Goals.Away != nil {
			score = fmt.Sprintf("%d : %d", *f.Goals.Home, *f.Goals.Away)
		}
		b.WriteString(fmt.Sprintf("%s  %s %s %s  (%s %d')\n",
			liveLeagueStyle.Render(fmt.Sprintf("%-24s", f.League.Name)),
			f.Teams.Home.Name,
			liveScoreStyle.Render(score),
			f.Teams.Away.Name,
			f.Info.Status.Short,
			f.Info.Status.Elapsed))
	}
	b.WriteString("\npress q to quit\n")
	return b.String()
}
