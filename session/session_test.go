package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, s.URL, "missing file is an empty state")

	saved := &State{URL: "https://x.test/a", Title: "A", SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, Save(path, saved))

	s, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, saved.URL, s.URL)
	assert.Equal(t, saved.Title, s.Title)
	assert.True(t, saved.SavedAt.Equal(s.SavedAt))

	require.NoError(t, Clear(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, Clear(path), "clearing twice is fine")
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
