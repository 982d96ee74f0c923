// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package secrets resolves and holds the two API credentials the panel
// depends on.
//
// # Description
//
// Each secret is resolved environment-first, then from the container
// secrets directory (/run/secrets/<name>), matching how the deployment
// injects them. Once resolved, values are sealed in memguard enclaves so
// the plaintext is not left sitting in ordinary heap memory between uses.
//
// # Security
//
// Enclave storage needs a workable mlock limit; when the limit is too low
// memguard falls back to unlocked memory and we log a warning rather than
// refuse to start. Callers must not log the value returned by Open.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/sys/unix"
)

// Names of the secrets the panel requires.
const (
	OpenAIKey   = "openai_api_key"
	FootballKey = "football_api_key"
)

// secretsDir is where the container runtime mounts secret files.
// Overridable for tests.
var secretsDir = "/run/secrets"

// minMlockKB is the mlock limit below which we warn that enclaves may not
// actually be locked.
const minMlockKB = 64

var mlockCheckOnce sync.Once

// Store holds resolved secrets in memguard enclaves, keyed by name.
//
// # Thread Safety
//
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	enclaves map[string]*memguard.Enclave
}

// NewStore creates an empty Store and verifies the process mlock limit
// once, logging a warning if locked memory is likely unavailable.
func NewStore() *Store {
	mlockCheckOnce.Do(checkMlockLimit)
	return &Store{enclaves: make(map[string]*memguard.Enclave)}
}

// Resolve looks up a secret by name: first the given environment variable,
// then the secrets directory. The resolved value is sealed and retained;
// an empty result is an error.
func (s *Store) Resolve(envVar, name string) error {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		path := filepath.Join(secretsDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("secret %s: %s not set and %s unreadable: %w", name, envVar, path, err)
		}
		value = strings.TrimSpace(string(data))
		slog.Info("read secret from container secrets", "secret", name)
	}
	if value == "" {
		return fmt.Errorf("secret %s: resolved to empty value", name)
	}

	s.mu.Lock()
	s.enclaves[name] = memguard.NewEnclave([]byte(value))
	s.mu.Unlock()
	return nil
}

// Has reports whether a secret with the given name has been resolved.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.enclaves[name]
	return ok
}

// Open returns the plaintext of a resolved secret. The caller receives a
// copy; the enclave stays sealed for the next use.
func (s *Store) Open(name string) (string, error) {
	s.mu.RLock()
	enclave, ok := s.enclaves[name]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("secret %s: not resolved", name)
	}

	buf, err := enclave.Open()
	if err != nil {
		return "", fmt.Errorf("secret %s: open enclave: %w", name, err)
	}
	defer buf.Destroy()
	return strings.Clone(buf.String()), nil
}

// checkMlockLimit reads RLIMIT_MEMLOCK and warns when it is too small for
// enclaves to be backed by locked pages.
func checkMlockLimit() {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &limit); err != nil {
		slog.Warn("could not read mlock limit; secrets may be swappable", "error", err)
		return
	}
	if limit.Cur != unix.RLIM_INFINITY && limit.Cur < minMlockKB*1024 {
		slog.Warn("mlock limit too low for locked secret storage",
			"limit_kb", limit.Cur/1024,
			"wanted_kb", minMlockKB)
	}
}
