// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tireder/betting-tips/pkg/validation"
)

// TeamForm returns a team's cached form record and strength ratings,
// fetching from the API when the cache is stale.
// GET /v1/teams/:id/form?name=Arsenal&league=39
func TeamForm(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, err := strconv.Atoi(c.Param("id"))
		if err != nil || teamID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team id"})
			return
		}

		name := c.Query("name")
		if name != "" {
			sanitized, err := validation.SanitizeTeamName(name)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team name", "details": err.Error()})
				return
			}
			name = sanitized
		}

		leagueID := 0
		if q := c.Query("league"); q != "" {
			leagueID, err = strconv.Atoi(q)
			if err != nil || validation.ValidateLeagueID(leagueID) != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid league id"})
				return
			}
		}

		ratings := state.Fetcher.TeamRatings(c.Request.Context(), teamID, name, leagueID)

		resp := gin.H{"team_id": teamID, "ratings": ratings}
		if form, err := state.Store.Form(teamID); err == nil {
			resp["form"] = form
		}
		c.JSON(http.StatusOK, resp)
	}
}
