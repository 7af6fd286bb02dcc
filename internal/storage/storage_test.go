// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv interface {
	Get(key string) (string, error)
	Set(key, value string) error
	SetMany(pairs map[string]string) error
	Delete(keys ...string) error
	Keys() ([]string, error)
	Close() error
}

func stores(t *testing.T) map[string]kv {
	t.Helper()
	sq, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]kv{
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("token")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.SetMany(map[string]string{"token": "abc", "userId": "7"}))
			tok, err := s.Get("token")
			require.NoError(t, err)
			assert.Equal(t, "abc", tok)

			require.NoError(t, s.Set("token", "def"))
			tok, _ = s.Get("token")
			assert.Equal(t, "def", tok)

			keys, err := s.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"token", "userId"}, keys)

			require.NoError(t, s.Delete("token", "userId", "missing"))
			keys, _ = s.Keys()
			assert.Empty(t, keys)
		})
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("userId", "42"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v, err := s2.Get("userId")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.Equal(t, path, s2.Path())
}
