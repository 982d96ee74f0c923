// Copyright (C) 2025 Betting Tips Authors
// Tests for input validation.

package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTeamName_Valid(t *testing.T) {
	names := []string{
		"Manchester United",
		"Brighton & Hove Albion",
		"Nott'm Forest",
		"1. FC Köln",
		"Beşiktaş",
		"Hapoel Be'er Sheva",
		"Athletico-PR",
		"Como 1907",
	}
	for _, name := range names {
		assert.NoError(t, ValidateTeamName(name), name)
	}
}

func TestValidateTeamName_Invalid(t *testing.T) {
	names := []string{
		"",
		"   ",
		"'; DROP TABLE teams;--",
		"<script>alert(1)</script>",
		"&starts-with-punct",
	}
	for _, name := range names {
		assert.Error(t, ValidateTeamName(name), "%q", name)
	}
}

func TestValidateTeamName_TooLong(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateTeamName(string(long)))
}

func TestSanitizeTeamName(t *testing.T) {
	got, err := SanitizeTeamName("  Real Madrid  ")
	require.NoError(t, err)
	assert.Equal(t, "Real Madrid", got)
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2025-11-30"))
	assert.Error(t, ValidateDate(""))
	assert.Error(t, ValidateDate("30/11/2025"))
	assert.Error(t, ValidateDate("2025-13-01"))
}

func TestValidateLeagueID(t *testing.T) {
	assert.NoError(t, ValidateLeagueID(39))
	assert.Error(t, ValidateLeagueID(0))
	assert.Error(t, ValidateLeagueID(-5))
}

func TestValidateSeason(t *testing.T) {
	assert.NoError(t, ValidateSeason(2024))
	assert.NoError(t, ValidateSeason(time.Now().Year()))
	assert.Error(t, ValidateSeason(1999))
	assert.Error(t, ValidateSeason(time.Now().Year()+5))
}
