package hdri

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte{0}, 0644))
	}
}

func TestResolveOverrideWins(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.hdr", "override.exr")

	got, err := Resolve(dir, filepath.Join(dir, "override.exr"), false, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "override.exr"), got)
}

func TestResolveMissingOverrideFails(t *testing.T) {
	_, err := Resolve(t.TempDir(), "/nope/missing.hdr", false, 0)
	require.Error(t, err)
}

func TestResolvePicksFirstSorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "zebra.hdr", "alpine.exr", "notes.txt")

	got, err := Resolve(dir, "", false, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "alpine.exr"), got)
}

func TestResolveRandomizeIsSeeded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.hdr", "b.hdr", "c.hdr", "d.exr", "e.exr")

	first, err := Resolve(dir, "", true, 42)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Resolve(dir, "", true, 42)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveNone(t *testing.T) {
	got, err := Resolve("", "", false, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Resolve(filepath.Join(t.TempDir(), "missing"), "", false, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	dir := t.TempDir()
	writeFiles(t, dir, "readme.md")
	got, err = Resolve(dir, "", false, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
