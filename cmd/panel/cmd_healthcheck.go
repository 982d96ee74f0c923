// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tireder/betting-tips/services/panel/config"
)

const (
	probeTimeout  = 5 * time.Second
	probeAttempts = 3
	probeInterval = 2 * time.Second
)

// runHealthcheck probes the local panel's health endpoint. Intended as
// the container HEALTHCHECK command, so it exits rather than returning
// errors through cobra.
func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := config.Resolve().HealthURL()
	client := &http.Client{Timeout: probeTimeout}

	var lastErr error
	for attempt := 1; attempt <= probeAttempts; attempt++ {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Println("healthy")
				return nil
			}
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
		} else {
			lastErr = err
		}
		if attempt < probeAttempts {
			time.Sleep(probeInterval)
		}
	}

	fmt.Fprintf(os.Stderr, "unhealthy: %v\n", lastErr)
	os.Exit(1)
	return nil
}
