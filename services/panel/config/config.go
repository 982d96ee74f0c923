// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config implements the panel's startup configuration contract.
//
// # Description
//
// The hosting platform injects a single PORT variable at container start.
// Everything else is derived from fixed defaults or optional overrides:
//
//   - bind address is always 0.0.0.0 (the platform routes to the container)
//   - headless mode is always on (no local browser to open)
//   - CORS is permissive by default (the platform terminates TLS on a
//     different origin than the app sees)
//   - usage telemetry is off by default
//
// Resolve reads the environment once; the resolved Settings are written to
// a YAML file at a fixed path before the server starts, so the running
// container carries a durable record of the configuration it booted with.
//
// # Failure Semantics
//
// There is no validation of the port's numeric range. An unparseable value
// is passed through to the listener and surfaces as a bind failure, which
// is fatal. Recovery is a human editing the deployment and redeploying.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is used when the platform does not inject PORT.
	DefaultPort = "8501"

	// DefaultConfigPath is where the resolved runtime config is written
	// before the server starts.
	DefaultConfigPath = "/app/config/panel.yaml"

	// BindAddress is fixed regardless of environment input.
	BindAddress = "0.0.0.0"
)

// Settings is the resolved runtime configuration of the panel service.
//
// The YAML layout mirrors the sections the dashboard used to read from its
// framework config file: a server section and a browser/security section.
type Settings struct {
	Server struct {
		// Address the HTTP listener binds to. Always BindAddress.
		Address string `yaml:"address"`
		// Port the HTTP listener binds to. From PORT, or DefaultPort.
		Port string `yaml:"port"`
		// Headless is always true in a container.
		Headless bool `yaml:"headless"`
		// EnableCORS controls the permissive CORS middleware.
		EnableCORS bool `yaml:"enableCORS"`
		// EnableXSRFProtection is forced off whenever CORS is on; the two
		// interact badly behind the platform's proxy.
		EnableXSRFProtection bool `yaml:"enableXsrfProtection"`
	} `yaml:"server"`

	Browser struct {
		// GatherUsageStats toggles anonymous telemetry. Off by default.
		GatherUsageStats bool `yaml:"gatherUsageStats"`
	} `yaml:"browser"`

	// PredictionsPath is the model-predictions CSV the server preloads and
	// watches for changes. Empty disables preloading.
	PredictionsPath string `yaml:"predictionsPath,omitempty"`

	// CacheDir is the on-disk team history cache location.
	CacheDir string `yaml:"cacheDir,omitempty"`
}

// Resolve builds Settings from the process environment.
//
// PORT is the only platform-injected variable; absent or empty means
// DefaultPort. The value is not range-checked. The toggles read:
//
//	PANEL_ENABLE_CORS   default true
//	PANEL_USAGE_STATS   default false
//	PANEL_PREDICTIONS   default "" (no preload)
//	PANEL_CACHE_DIR     default "/app/data/history"
func Resolve() Settings {
	var s Settings

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = DefaultPort
	}

	s.Server.Address = BindAddress
	s.Server.Port = port
	s.Server.Headless = true
	s.Server.EnableCORS = envBool("PANEL_ENABLE_CORS", true)
	s.Server.EnableXSRFProtection = !s.Server.EnableCORS
	s.Browser.GatherUsageStats = envBool("PANEL_USAGE_STATS", false)

	s.PredictionsPath = os.Getenv("PANEL_PREDICTIONS")
	s.CacheDir = os.Getenv("PANEL_CACHE_DIR")
	if s.CacheDir == "" {
		s.CacheDir = "/app/data/history"
	}

	return s
}

// ListenAddr returns the address:port string for the HTTP listener.
func (s Settings) ListenAddr() string {
	return s.Server.Address + ":" + s.Server.Port
}

// HealthURL returns the local URL the health probe should hit.
func (s Settings) HealthURL() string {
	return "http://127.0.0.1:" + s.Server.Port + "/health"
}

// WriteFile emits the settings as YAML at path, creating parent
// directories. The file is written before the server starts so a crashed
// container still documents the configuration it attempted to boot with.
func (s Settings) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load reads settings back from a YAML file written by WriteFile.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config: %w", err)
	}
	return s, nil
}

// envBool reads a boolean toggle with a default. Accepted true values:
// "1", "true", "yes", "on" (case-insensitive); the complements are false.
// Anything else keeps the default.
func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
