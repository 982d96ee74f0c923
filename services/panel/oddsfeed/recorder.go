// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package oddsfeed records bookmaker odds snapshots to InfluxDB so
// line movement can be charted over time. Recording is optional; the
// panel runs fine without an InfluxDB instance.
package oddsfeed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/value"
)

const oddsMeasurement = "bookmaker_odds"

// marketKeys are the odds markets snapshotted per match.
var marketKeys = []string{
	"home_win", "draw", "away_win",
	"over_1.5", "under_1.5",
	"over_2.5", "under_2.5",
	"over_3.5", "under_3.5",
	"btts_yes", "btts_no",
}

// Recorder writes odds snapshots to InfluxDB.
type Recorder struct {
	writeAPI api.WriteAPIBlocking
	close    func()
}

// NewRecorder builds a Recorder from INFLUXDB_URL, INFLUXDB_TOKEN,
// INFLUXDB_ORG and INFLUXDB_BUCKET. When the token is unset, odds
// recording is disabled and (nil, nil) is returned.
func NewRecorder() (*Recorder, error) {
	token := os.Getenv("INFLUXDB_TOKEN")
	if token == "" {
		slog.Debug("odds recording disabled", "env", "INFLUXDB_TOKEN")
		return nil, nil
	}

	url := envOr("INFLUXDB_URL", "http://influxdb:8086")
	org := envOr("INFLUXDB_ORG", "betting-tips")
	bucket := envOr("INFLUXDB_BUCKET", "odds-data")

	client := influxdb2.NewClient(url, token)
	slog.Info("odds recording enabled", "influx_url", url, "influx_org", org, "influx_bucket", bucket)

	return &Recorder{
		writeAPI: client.WriteAPIBlocking(org, bucket),
		close:    client.Close,
	}, nil
}

// NewRecorderWithWriteAPI wires an existing write API; used in tests.
func NewRecorderWithWriteAPI(writeAPI api.WriteAPIBlocking) *Recorder {
	return &Recorder{writeAPI: writeAPI, close: func() {}}
}

// RecordOdds writes one point per quoted market of every merged
// record. Records without API data or odds are skipped.
func (r *Recorder) RecordOdds(ctx context.Context, records []merge.Record, now time.Time) error {
	var points []*write.Point

	for _, rec := range records {
		if !rec.HasAPIData {
			continue
		}
		match := fmt.Sprintf("%s vs %s", rec.CSVHome, rec.CSVAway)
		for _, key := range marketKeys {
			odds := rec.Odds.Market(key)
			if odds == nil {
				continue
			}
			points = append(points, influxdb2.NewPoint(
				oddsMeasurement,
				map[string]string{
					"match":     match,
					"league":    rec.CSVLeague,
					"bookmaker": rec.Odds.Bookmaker,
					"market":    key,
				},
				map[string]interface{}{
					"odds":         *odds,
					"implied_prob": value.OddsToProbability(*odds),
				},
				now,
			))
		}
	}

	if len(points) == 0 {
		return nil
	}
	if err := r.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("record odds: %w", err)
	}
	slog.Debug("odds snapshot recorded", "points", len(points))
	return nil
}

// Close releases the InfluxDB client.
func (r *Recorder) Close() {
	r.close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
