package pgpass

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePassfile(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".pgpass")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	defer f.Close()
	for _, l := range lines {
		_, err := f.WriteString(l + "\n")
		require.NoError(t, err)
	}
	return path
}

func TestLookupExactMatch(t *testing.T) {
	path := writePassfile(t,
		"#comment",
		"",
		"test1:5432:larrydb:larry:whatstheidea",
		"test1:5432:moedb:moe:imbecile",
	)

	pw, found := Lookup(path, "test1", 5432, "moedb", "moe")
	require.True(t, found)
	require.Equal(t, "imbecile", pw)
}

func TestLookupWildcards(t *testing.T) {
	path := writePassfile(t, "test2:5432:*:*:heymoe")

	pw, found := Lookup(path, "test2", 5432, "anydb", "anyone")
	require.True(t, found)
	require.Equal(t, "heymoe", pw)
}

func TestLookupDefaultPortZeroMeans5432(t *testing.T) {
	path := writePassfile(t, "localhost:5432:*:*:sesam")

	pw, found := Lookup(path, "localhost", 0, "db", "user")
	require.True(t, found)
	require.Equal(t, "sesam", pw)
}

func TestLookupEscapedColon(t *testing.T) {
	path := writePassfile(t, `test2:5432:*:*:test\\ing\:`)

	pw, found := Lookup(path, "test2", 5432, "db", "user")
	require.True(t, found)
	require.Equal(t, `test\ing:`, pw)
}

func TestLookupNoMatch(t *testing.T) {
	path := writePassfile(t, "other:5432:db:user:secret")

	_, found := Lookup(path, "test1", 5432, "db", "user")
	require.False(t, found)
}

func TestLookupMissingFile(t *testing.T) {
	_, found := Lookup(filepath.Join(t.TempDir(), "nope"), "h", 5432, "d", "u")
	require.False(t, found)
}
