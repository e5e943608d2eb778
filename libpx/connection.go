package libpx

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/drjokepu/libpx/tracelog"
	"github.com/drjokepu/libpx/wire"
)

// Status is the Connection's protocol state.
type Status int

const (
	StatusClosed Status = iota
	StatusOpening
	StatusAuthenticationPending
	StatusOpen
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "closed"
	case StatusOpening:
		return "opening"
	case StatusAuthenticationPending:
		return "authentication_pending"
	case StatusOpen:
		return "open"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Connection owns one TCP socket and the protocol state machine running
// over it. It is not safe for concurrent use — at most one caller may issue
// operations against it at a time (§5).
type Connection struct {
	config *Config
	conn   net.Conn
	reader *wire.FrameReader
	status Status

	authMethod uint32
	md5Salt    [4]byte

	backendProcessID int32
	backendSecretKey int32

	runtimeParams      map[string]string
	runtimeParamsOrder []string

	lastError error
}

// NewConnection clones cfg (never aliasing the caller's struct, per
// px_connection_params_copy) into a fresh, closed Connection.
func NewConnection(cfg *Config) *Connection {
	return &Connection{
		config:        cfg.Copy(),
		status:        StatusClosed,
		runtimeParams: make(map[string]string),
	}
}

// Params returns a defensive copy of the connection's parameters —
// px_connection_get_connection_params's read-only accessor.
func (c *Connection) Params() Config {
	return *c.config.Copy()
}

// Status reports the connection's current protocol state.
func (c *Connection) Status() Status { return c.status }

// LastError reports the most recently recorded error, or nil.
func (c *Connection) LastError() error { return c.lastError }

// RuntimeParameter returns a server-reported runtime parameter (e.g.
// server_version), or "" if never reported.
func (c *Connection) RuntimeParameter(name string) string { return c.runtimeParams[name] }

// BackendProcessID and BackendSecretKey are retained for a future
// CancelRequest on a second connection — this core does not expose
// cancellation itself (§5).
func (c *Connection) BackendProcessID() int32 { return c.backendProcessID }
func (c *Connection) BackendSecretKey() int32 { return c.backendSecretKey }

func (c *Connection) setLastError(err error) error {
	c.lastError = err
	return err
}

func (c *Connection) log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if c.config.Tracer == nil {
		return
	}
	c.config.Tracer.Log(ctx, level, msg, data)
}

// Open resolves the host, connects, sends StartupMessage, and runs the
// authentication loop through to Open. Only valid from StatusClosed.
func (c *Connection) Open(ctx context.Context) error {
	if c.status != StatusClosed {
		return c.setLastError(newConnectionError(ErrNotClosed, "connection is not closed", nil))
	}

	addr := net.JoinHostPort(c.config.Host, fmt.Sprintf("%d", c.config.port()))
	c.log(ctx, tracelog.LogLevelDebug, "Connect", map[string]any{"host": c.config.Host, "port": c.config.port()})

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.status = StatusFailed
		if c.config.Metrics != nil {
			c.config.Metrics.ConnectionsFailed.Inc()
		}
		ce := newConnectionError(ErrInvalidHost, "failed to connect", err)
		ce.safeToRetry = true // nothing was sent: the socket never connected
		return c.setLastError(ce)
	}

	c.conn = conn
	c.reader = wire.NewFrameReader(conn)
	c.status = StatusOpening

	if err := c.sendStartupMessage(); err != nil {
		c.Close()
		return c.setLastError(newConnectionError(ErrCannotSendStartup, "failed to send startup message", err))
	}

	if err := c.Authenticate(ctx); err != nil {
		if !needsPassword(err) {
			c.Close()
			c.status = StatusFailed
		}
		return err
	}

	if c.config.Metrics != nil {
		c.config.Metrics.ConnectionsOpened.Inc()
	}
	return nil
}

// needsPassword reports whether err is the connection waiting on a password
// the caller can still supply and retry with — the one authentication
// failure mode that does not tear down the socket, matching
// px_connection_attempt_result_authentication_needed.
func needsPassword(err error) bool {
	ce, ok := err.(*ConnectionError)
	return ok && ce.Kind == ErrAuthenticationNeeded
}

func (c *Connection) sendStartupMessage() error {
	msg := &wire.StartupMessage{Parameters: []wire.StartupParameter{
		{Name: "user", Value: c.config.username()},
		{Name: "database", Value: c.config.Database},
		{Name: "application_name", Value: c.config.applicationName()},
	}}
	_, err := c.conn.Write(msg.Encode(nil))
	return err
}

// Authenticate drives the authentication loop (§4.2). It may be called
// again after a password has been supplied in response to
// ErrAuthenticationNeeded — in that case it sends the now-available
// password immediately rather than waiting on a server frame that was
// already consumed by the earlier call.
func (c *Connection) Authenticate(ctx context.Context) error {
	if c.status == StatusAuthenticationPending {
		if err := c.replyToChallenge(); err != nil {
			return err
		}
	}

	for {
		done, err := c.readAuthenticationResponse(ctx)
		if err != nil {
			return err
		}
		if done {
			break
		}

		if c.status != StatusAuthenticationPending {
			return c.setLastError(newConnectionError(ErrAuthenticationFailed, "authentication failed", nil))
		}

		if err := c.replyToChallenge(); err != nil {
			return err
		}
	}

	return c.waitForServerStartup(ctx)
}

// replyToChallenge supplies a password (from Config, or via
// PasswordCallback) and sends the MD5 PasswordMessage. It returns
// ErrAuthenticationNeeded without touching the socket if no password is
// available yet.
func (c *Connection) replyToChallenge() error {
	if c.config.Password == "" {
		if c.config.PasswordCallback != nil {
			pw, ok := c.config.PasswordCallback(c.config)
			if !ok {
				return c.setLastError(newConnectionError(ErrAuthenticationNeeded, "password callback declined", nil))
			}
			c.config.Password = pw
		} else {
			return c.setLastError(newConnectionError(ErrAuthenticationNeeded, "no password available", nil))
		}
	}

	if err := c.sendMD5PasswordMessage(); err != nil {
		return c.setLastError(newIOError("failed to send password message", err, false))
	}
	if c.config.Metrics != nil {
		c.config.Metrics.AuthChallenges.Inc()
	}
	return nil
}

func (c *Connection) sendMD5PasswordMessage() error {
	digest := md5Challenge(c.config.Password, c.config.username(), c.md5Salt)
	msg := &wire.PasswordMessage{Password: digest}
	_, err := c.conn.Write(msg.Encode(nil))
	return err
}

// readAuthenticationResponse reads one frame with the authentication
// per-frame timeout and reports whether authentication is complete
// (AuthenticationOk seen).
func (c *Connection) readAuthenticationResponse(ctx context.Context) (done bool, err error) {
	msgType, body, err := c.readFrame(c.config.authTimeout())
	if err != nil {
		return false, c.setLastError(newIOError("failed to read authentication response", err, false))
	}

	decoded, err := wire.Dispatch(msgType, body)
	if err != nil {
		return false, c.setLastError(newConnectionError(ErrAuthenticationFailed, "malformed authentication response", err))
	}

	switch m := decoded.(type) {
	case *wire.AuthenticationOk:
		return true, nil
	case *wire.AuthenticationMD5Password:
		c.status = StatusAuthenticationPending
		c.authMethod = wire.AuthTypeMD5Password
		c.md5Salt = m.Salt
		return false, nil
	case *wire.ErrorResponse:
		c.lastError = serverErrorFromFields(m.ErrorFields)
		return false, c.setLastError(newConnectionError(ErrAuthenticationFailed, "server rejected authentication", c.lastError))
	default:
		return false, c.setLastError(newAuthenticationFailedError())
	}
}

func (c *Connection) waitForServerStartup(ctx context.Context) error {
	for c.status != StatusOpen {
		msgType, body, err := c.readFrame(c.config.startupTimeout())
		if err != nil {
			return c.setLastError(newIOError("failed to read startup response", err, false))
		}

		decoded, err := wire.Dispatch(msgType, body)
		if err != nil {
			return c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, "malformed startup message", err))
		}

		switch m := decoded.(type) {
		case *wire.BackendKeyData:
			c.backendProcessID = m.ProcessID
			c.backendSecretKey = m.SecretKey
		case *wire.ParameterStatus:
			c.upsertRuntimeParameter(m.Name, m.Value)
		case *wire.ReadyForQuery:
			c.status = StatusOpen
		case *wire.NoticeResponse:
			// advisory only, ignored during startup per spec
		case *wire.UnknownMessage:
			c.log(ctx, tracelog.LogLevelWarn, "Unknown message dropped", map[string]any{"type": string(m.Type)})
		case *wire.ErrorResponse:
			return c.setLastError(&ServerError{
				Severity: m.Severity, Code: m.Code, Message: m.Message, Detail: m.Detail,
				Hint: m.Hint, Position: m.Position, InternalPosition: m.InternalPosition,
				InternalQuery: m.InternalQuery, Where: m.Where, File: m.File, Line: m.Line, Routine: m.Routine,
			})
		default:
			return c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, "unexpected message during startup", nil))
		}
	}

	c.log(ctx, tracelog.LogLevelInfo, "Connect", map[string]any{"host": c.config.Host, "database": c.config.Database})
	return nil
}

func (c *Connection) upsertRuntimeParameter(name, value string) {
	if _, exists := c.runtimeParams[name]; !exists {
		c.runtimeParamsOrder = append(c.runtimeParamsOrder, name)
	}
	c.runtimeParams[name] = value
}

func serverErrorFromFields(f wire.ErrorFields) *ServerError {
	return &ServerError{
		Severity: f.Severity, Code: f.Code, Message: f.Message, Detail: f.Detail, Hint: f.Hint,
		Position: f.Position, InternalPosition: f.InternalPosition, InternalQuery: f.InternalQuery,
		Where: f.Where, File: f.File, Line: f.Line, Routine: f.Routine,
	}
}

// readFrame reads one frame enforcing a per-frame timeout via
// net.Conn.SetReadDeadline, mirroring px_response_read_with_timeout's
// poll-then-read approach but expressed through the stdlib deadline
// primitive rather than a raw poll(2) call.
func (c *Connection) readFrame(timeout time.Duration) (msgType byte, body []byte, err error) {
	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, nil, err
		}
		defer c.conn.SetReadDeadline(time.Time{})
	}
	return c.reader.ReadFrame()
}

// Sync sends a Sync frame and, if wait is true, blocks until
// ReadyForQuery — px_connection_sync.
func (c *Connection) Sync(wait bool) error {
	if _, err := c.conn.Write((&wire.Sync{}).Encode(nil)); err != nil {
		return c.setLastError(newIOError("failed to send sync", err, false))
	}
	if !wait {
		return nil
	}
	for {
		msgType, body, err := c.readFrame(0)
		if err != nil {
			return c.setLastError(newIOError("failed to read sync response", err, false))
		}
		decoded, err := wire.Dispatch(msgType, body)
		if err != nil {
			return c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, "malformed sync response", err))
		}
		if rfq, ok := decoded.(*wire.ReadyForQuery); ok {
			_ = rfq
			return nil
		}
	}
}

// Poll reports whether the socket has readable bytes within timeoutMs
// milliseconds; a negative timeout blocks indefinitely —
// px_connection_poll / px_connection_has_incoming_data.
func (c *Connection) Poll(timeoutMs int) (bool, error) {
	if timeoutMs < 0 {
		if _, err := c.reader.Peek(); err != nil {
			return false, err
		}
		return true, nil
	}

	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return false, err
	}
	defer c.conn.SetReadDeadline(time.Time{})

	_, err := c.reader.Peek()
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close sends Terminate best-effort from {Open, AuthenticationPending},
// then always closes the socket and transitions to Closed — idempotent,
// per px_connection_close's fallthrough state machine.
func (c *Connection) Close() error {
	switch c.status {
	case StatusOpen, StatusAuthenticationPending:
		if c.conn != nil {
			_, _ = c.conn.Write((&wire.Terminate{}).Encode(nil))
		}
		fallthrough
	case StatusOpening:
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}

	c.status = StatusClosed
	return nil
}
