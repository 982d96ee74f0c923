// Copyright (C) 2025 Betting Tips Authors
// Tests for secret resolution and enclave storage.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "sk-live-123")

	s := NewStore()
	require.NoError(t, s.Resolve("TEST_SECRET_ENV", "test_secret"))

	got, err := s.Open("test_secret")
	require.NoError(t, err)
	assert.Equal(t, "sk-live-123", got)
}

func TestResolve_FromSecretsFile(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "")

	dir := t.TempDir()
	orig := secretsDir
	secretsDir = dir
	t.Cleanup(func() { secretsDir = orig })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_secret"), []byte("file-value\n"), 0600))

	s := NewStore()
	require.NoError(t, s.Resolve("TEST_SECRET_ENV", "test_secret"))

	got, err := s.Open("test_secret")
	require.NoError(t, err)
	assert.Equal(t, "file-value", got)
}

func TestResolve_MissingEverywhere(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "")

	orig := secretsDir
	secretsDir = t.TempDir()
	t.Cleanup(func() { secretsDir = orig })

	s := NewStore()
	err := s.Resolve("TEST_SECRET_ENV", "absent")
	assert.Error(t, err)
	assert.False(t, s.Has("absent"))
}

func TestResolve_EmptyValueRejected(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "   ")

	orig := secretsDir
	dir := t.TempDir()
	secretsDir = dir
	t.Cleanup(func() { secretsDir = orig })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank"), []byte("  \n"), 0600))

	s := NewStore()
	assert.Error(t, s.Resolve("TEST_SECRET_ENV", "blank"))
}

func TestOpen_Unresolved(t *testing.T) {
	s := NewStore()
	_, err := s.Open("never_set")
	assert.Error(t, err)
}

func TestOpen_RepeatedReads(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "repeatable")

	s := NewStore()
	require.NoError(t, s.Resolve("TEST_SECRET_ENV", "test_secret"))

	for i := 0; i < 3; i++ {
		got, err := s.Open("test_secret")
		require.NoError(t, err)
		assert.Equal(t, "repeatable", got)
	}
}
