package libpx

import (
	"os/user"
	"time"

	"github.com/drjokepu/libpx/libpxstat"
	"github.com/drjokepu/libpx/tracelog"
)

// DefaultApplicationName is sent when Config.ApplicationName is empty.
const DefaultApplicationName = "libpx"

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 5432

// PasswordCallback supplies a password once the server has challenged the
// connection for MD5 authentication. It returns false if the caller cannot
// provide one, in which case authentication surfaces ErrAuthenticationNeeded
// to the original caller rather than failing outright.
type PasswordCallback func(cfg *Config) (password string, ok bool)

// Config bundles everything needed to open one Connection. It corresponds
// to ConnectionParams: owned by the caller on creation, cloned into a
// Connection on construction so later mutation of the original has no
// effect on an in-flight connection.
type Config struct {
	Host            string
	Port            uint16
	Database        string
	User            string
	Password        string
	ApplicationName string

	// PasswordCallback is consulted at most once per authentication attempt
	// when an MD5 challenge arrives and Password is empty.
	PasswordCallback PasswordCallback

	// Tracer receives structured log events for every stage the connection
	// passes through. A nil Tracer disables logging, matching pgconn's
	// Config.Tracer == nil default.
	Tracer tracelog.Logger

	// Metrics receives connection and query counters. A nil Metrics
	// disables instrumentation.
	Metrics *libpxstat.Metrics

	// AuthTimeout bounds each frame read during authentication (default 5s
	// per spec).
	AuthTimeout time.Duration

	// StartupTimeout bounds each frame read while waiting for
	// ReadyForQuery after authentication succeeds (default 15s per spec).
	StartupTimeout time.Duration
}

// Copy returns a defensive copy, used both when a Connection latches its
// own params and by Connection.Params for read-only access — grounded on
// the original's px_connection_params_copy, which exists precisely so a
// Connection never aliases the caller's struct.
func (c *Config) Copy() *Config {
	cp := *c
	return &cp
}

func (c *Config) applicationName() string {
	if c.ApplicationName == "" {
		return DefaultApplicationName
	}
	return c.ApplicationName
}

// username falls back to the OS user per spec, matching pgconn.Config's own
// use of os/user.Current for the same default.
func (c *Config) username() string {
	if c.User != "" {
		return c.User
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func (c *Config) port() uint16 {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

func (c *Config) authTimeout() time.Duration {
	if c.AuthTimeout == 0 {
		return 5 * time.Second
	}
	return c.AuthTimeout
}

func (c *Config) startupTimeout() time.Duration {
	if c.StartupTimeout == 0 {
		return 15 * time.Second
	}
	return c.StartupTimeout
}
