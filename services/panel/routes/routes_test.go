// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/config"
	"github.com/tireder/betting-tips/services/panel/handlers"
	"github.com/tireder/betting-tips/services/panel/history"
)

type stubHTTPClient struct{}

func (stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(`{"errors":[],"results":0,"response":[]}`)),
	}, nil
}

func newTestRouter(t *testing.T, settings *config.Settings) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := history.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	api := apifootball.NewClient("test-key")
	api.HTTPClient = stubHTTPClient{}

	router := gin.New()
	SetupRoutes(router, handlers.NewState(api, store), settings)
	return router
}

func defaultSettings() *config.Settings {
	s := &config.Settings{}
	s.Server.EnableCORS = true
	return s
}

func TestSetupRoutes_Health(t *testing.T) {
	router := newTestRouter(t, defaultSettings())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestSetupRoutes_V1Wired(t *testing.T) {
	router := newTestRouter(t, defaultSettings())

	// Endpoints that depend on prior state answer 409, not 404: the
	// route exists and rejected the call.
	for _, target := range []string{"/v1/tips", "/v1/accumulators", "/v1/report"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusConflict, w.Code, target)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_UnknownRoute404(t *testing.T) {
	router := newTestRouter(t, defaultSettings())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRoutes_CORSFlag(t *testing.T) {
	router := newTestRouter(t, defaultSettings())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	disabled := &config.Settings{}
	router = newTestRouter(t, disabled)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutes_RequestIDAlwaysSet(t *testing.T) {
	router := newTestRouter(t, defaultSettings())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
