package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("course_tables/s1_20240513.csv", []byte("Day,Course\n"))
	require.NoError(t, err)
	assert.Equal(t, "course_tables/s1_20240513.csv", name)

	file, err := store.Open(name)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "Day,Course\n", string(content))
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	require.Error(t, err)
	_, err = store.Open(filepath.Join(string(filepath.Separator), "etc", "passwd"))
	require.Error(t, err)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("course_tables/stale.csv", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("course_tables/fresh.csv", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "course_tables", "stale.csv"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("course_tables", "stale.csv")}, deleted)

	_, err = store.Open("course_tables/fresh.csv")
	assert.NoError(t, err)
	_, err = store.Open("course_tables/stale.csv")
	assert.Error(t, err)
}
