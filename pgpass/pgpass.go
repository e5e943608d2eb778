// Package pgpass looks up a password in a ~/.pgpass-formatted file, the
// precedence the original C client consulted via its connection-params
// layer before falling back to an interactive prompt. The core Connection
// never reads this file itself — the caller decides whether to consult it
// before invoking the password callback.
package pgpass

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgpassfile"
)

// Lookup scans path (typically "~/.pgpass" expanded by the caller) for a
// line matching host, port, database, and user, returning the password
// field of the first match. A zero port is treated as the default 5432,
// matching how callers of Config.port() would otherwise have to resolve it
// themselves before calling Lookup.
func Lookup(path, host string, port uint16, database, user string) (password string, found bool) {
	passfile, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return "", false
	}
	if port == 0 {
		port = 5432
	}
	pw := passfile.FindPassword(host, strconv.Itoa(int(port)), database, user)
	if pw == "" {
		return "", false
	}
	return pw, true
}

// DefaultPath returns the conventional ~/.pgpass location for the current
// user, or "" if the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}
