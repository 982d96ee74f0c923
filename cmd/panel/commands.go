// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/tireder/betting-tips/services/panel/config"
)

var (
	configPath string // target for config write/show
	serverAddr string // base URL of a running panel, for client commands

	rootCmd = &cobra.Command{
		Use:   "panel",
		Short: "A betting tips dashboard over model predictions and live odds",
		Long: `Panel serves a betting analysis dashboard: it merges model
prediction CSVs with API-Football fixtures and odds, scores every
market for value, and publishes tips, accumulators and reports.`,
	}

	// --- Server ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the panel HTTP server",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a locally running panel and exit 0 when healthy",
		RunE:  runHealthcheck, // Defined in cmd_healthcheck.go
	}

	// --- Configuration ---
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the panel runtime configuration file",
	}
	configWriteCmd = &cobra.Command{
		Use:   "write",
		Short: "Resolve settings from the environment and write the config file",
		RunE:  runConfigWrite, // Defined in cmd_config.go
	}
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings as YAML",
		RunE:  runConfigShow, // Defined in cmd_config.go
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Interactively create a panel configuration file",
		RunE:  runInit, // Defined in cmd_init.go
	}

	// --- Client utilities ---
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Generate a betting report offline from a predictions CSV",
		RunE:  runReport, // Defined in cmd_report.go
	}
	liveCmd = &cobra.Command{
		Use:   "live [league_ids]",
		Short: "Watch live scores from a running panel in the terminal",
		RunE:  runLive, // Defined in cmd_live.go
	}
)

func init() {
	configCmd.PersistentFlags().StringVar(&configPath, "path",
		config.DefaultConfigPath, "config file location")
	initCmd.Flags().StringVar(&configPath, "path",
		config.DefaultConfigPath, "config file location")

	initCmd.Flags().String("env-file", "panel.env", "where to write the collected secrets")

	liveCmd.Flags().StringVar(&serverAddr, "addr",
		"http://127.0.0.1:"+config.DefaultPort, "base URL of the running panel")

	reportCmd.Flags().String("csv", "", "model predictions CSV to analyze")
	reportCmd.Flags().String("date", "", "fixture date, YYYY-MM-DD (default today)")
	reportCmd.Flags().Bool("html", false, "emit the HTML rendering")
	reportCmd.Flags().Bool("archive", false, "upload the HTML report to the configured bucket")

	configCmd.AddCommand(configWriteCmd, configShowCmd)
	rootCmd.AddCommand(serveCmd, healthcheckCmd, configCmd, initCmd, reportCmd, liveCmd)
}
