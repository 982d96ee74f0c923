// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tireder/betting-tips/services/panel/config"
)

func TestRunHealthcheck_Healthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	t.Setenv("PORT", u.Port())

	assert.NoError(t, runHealthcheck(healthcheckCmd, nil))
}

func TestRunConfigWrite(t *testing.T) {
	t.Setenv("PORT", "9100")
	path := filepath.Join(t.TempDir(), "panel.yaml")

	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })

	require.NoError(t, runConfigWrite(configWriteCmd, nil))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", loaded.Server.Port)
	assert.Equal(t, config.BindAddress, loaded.Server.Address)
}
