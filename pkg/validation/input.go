// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-supplied query
// parameters.
//
// Team names, dates and league identifiers arrive from HTTP requests and
// CSV uploads and end up in API query strings and cache keys. Validating
// them here keeps malformed input out of the data path.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// teamNamePattern matches plausible team names: letters (any script via
// the \p classes), digits, spaces and the punctuation that actually occurs
// in club names (apostrophes, dots, hyphens, ampersands, parentheses).
var teamNamePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} '&.\-()]{0,79}$`)

// dateFormat is the API's fixture-date format.
const dateFormat = "2006-01-02"

// ValidateTeamName checks a team name from user input.
//
// Valid names are 1-80 characters, start with a letter or digit, and use
// only club-name punctuation. Returns an error describing the failure.
func ValidateTeamName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("team name cannot be empty")
	}
	if !teamNamePattern.MatchString(name) {
		return fmt.Errorf("invalid team name: %q", name)
	}
	return nil
}

// SanitizeTeamName trims and validates a team name, returning the cleaned
// value.
func SanitizeTeamName(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	if err := ValidateTeamName(cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}

// ValidateDate checks a YYYY-MM-DD fixture date string.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}
	if _, err := time.Parse(dateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return nil
}

// ValidateLeagueID checks an API-Football league identifier.
func ValidateLeagueID(id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid league id %d", id)
	}
	return nil
}

// ValidateSeason checks a season year. The API's earliest data is 2008.
func ValidateSeason(season int) error {
	if season < 2008 || season > time.Now().Year()+1 {
		return fmt.Errorf("invalid season %d", season)
	}
	return nil
}
