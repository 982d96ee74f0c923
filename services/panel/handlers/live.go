// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// liveRefreshInterval is how often the websocket pushes a fresh
// scoreboard. API-Football updates live data roughly every 15 seconds.
const liveRefreshInterval = 30 * time.Second

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The panel serves its own UI; cross-origin tools are fine.
		return true
	},
}

// LiveScores returns the current in-play fixtures once.
// GET /v1/live?leagues=39,140
func LiveScores(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		leagues, err := parseLeagues(c.Query("leagues"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leagues parameter", "details": err.Error()})
			return
		}

		fixtures, err := state.API.LiveScores(c.Request.Context(), leagues)
		if err != nil {
			state.countError(c.Request.Context(), "apifootball")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Live score fetch failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": len(fixtures), "fixtures": fixtures})
	}
}

// LiveScoresWS upgrades to a websocket and pushes the scoreboard at a
// fixed interval until the client disconnects.
// GET /v1/live/ws?leagues=39,140
func LiveScoresWS(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		leagues, err := parseLeagues(c.Query("leagues"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leagues parameter", "details": err.Error()})
			return
		}

		conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ctx := c.Request.Context()
		if state.Metrics != nil {
			state.Metrics.LiveClientsActive.Add(ctx, 1)
			defer state.Metrics.LiveClientsActive.Add(ctx, -1)
		}

		// Reader goroutine: we never expect client messages, but reading
		// is how gorilla surfaces close frames.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(liveRefreshInterval)
		defer ticker.Stop()

		for {
			fixtures, err := state.API.LiveScores(ctx, leagues)
			payload := gin.H{
				"at":       time.Now().UTC().Format(time.RFC3339),
				"count":    len(fixtures),
				"fixtures": fixtures,
			}
			if err != nil {
				payload = gin.H{"error": err.Error()}
			}
			if err := conn.WriteJSON(payload); err != nil {
				return
			}

			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}

func parseLeagues(q string) ([]int, error) {
	if q == "" {
		return nil, nil
	}
	parts := strings.Split(q, ",")
	leagues := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id <= 0 {
			return nil, strconv.ErrSyntax
		}
		leagues = append(leagues, id)
	}
	return leagues, nil
}
