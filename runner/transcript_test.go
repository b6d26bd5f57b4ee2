package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTranscript_CreatesAliasSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "install.log")
	alias := filepath.Join(dir, "vasup.log")

	tr, err := OpenTranscript(context.Background(), path, alias)
	require.NoError(t, err)
	defer tr.Close() //nolint:errcheck

	target, err := os.Readlink(alias)
	require.NoError(t, err)
	assert.Equal(t, path, target)
}

func TestOpenTranscript_RotatesRegularFileAtAlias(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "install.log")
	alias := filepath.Join(dir, "vasup.log")
	require.NoError(t, os.WriteFile(alias, []byte("old transcript\n"), 0o644))

	tr, err := OpenTranscript(context.Background(), path, alias)
	require.NoError(t, err)
	defer tr.Close() //nolint:errcheck

	backup, err := os.ReadFile(alias + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "old transcript\n", string(backup))

	target, err := os.Readlink(alias)
	require.NoError(t, err)
	assert.Equal(t, path, target)
}

func TestOpenTranscript_KeepsExistingCorrectSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "install.log")
	alias := filepath.Join(dir, "vasup.log")

	for i := 0; i < 2; i++ {
		tr, err := OpenTranscript(context.Background(), path, alias)
		require.NoError(t, err)
		require.NoError(t, tr.Close())
	}

	target, err := os.Readlink(alias)
	require.NoError(t, err)
	assert.Equal(t, path, target)
}

func TestTranscript_AppendsAcrossReopens(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "install.log")

	tr, err := OpenTranscript(context.Background(), path, "")
	require.NoError(t, err)
	tr.Printf("before reboot")
	require.NoError(t, tr.Close())

	tr, err = OpenTranscript(context.Background(), path, "")
	require.NoError(t, err)
	tr.Printf("after reboot")

	text, err := tr.Contents()
	require.NoError(t, err)
	assert.Contains(t, text, "before reboot")
	assert.Contains(t, text, "after reboot")
	require.NoError(t, tr.Close())
}
