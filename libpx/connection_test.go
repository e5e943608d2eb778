package libpx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drjokepu/libpx/libpx/internal/libpxtest"
	"github.com/drjokepu/libpx/wire"
)

func newTestServer(t *testing.T) *libpxtest.Server {
	t.Helper()
	srv, err := libpxtest.NewServer()
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func runScript(t *testing.T, srv *libpxtest.Server, steps []libpxtest.Step) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- srv.ServeOne(&libpxtest.Script{Steps: steps})
	}()
	return done
}

func testConfig(srv *libpxtest.Server) *Config {
	return &Config{
		Host:     srv.Host(),
		Port:     srv.Port(),
		Database: "db",
		User:     "alice",
	}
}

func TestConnectionOpenTrustAuthentication(t *testing.T) {
	srv := newTestServer(t)
	done := runScript(t, srv, libpxtest.AcceptUnauthenticatedConnection())

	conn := NewConnection(testConfig(srv))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, conn.Open(ctx))
	assert.Equal(t, StatusOpen, conn.Status())
	assert.NoError(t, <-done)
	assert.NoError(t, conn.Close())
}

func TestConnectionOpenMD5Authentication(t *testing.T) {
	srv := newTestServer(t)
	salt := [4]byte{0x01, 0x02, 0x03, 0x04}
	done := runScript(t, srv, libpxtest.AcceptMD5Connection(salt))

	cfg := testConfig(srv)
	cfg.Password = "secret"
	conn := NewConnection(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, conn.Open(ctx))
	assert.Equal(t, StatusOpen, conn.Status())
	assert.NoError(t, <-done)
}

func TestConnectionOpenMD5PasswordDigestIsCorrect(t *testing.T) {
	srv := newTestServer(t)
	salt := [4]byte{0x01, 0x02, 0x03, 0x04}
	// "md5" + hex(md5(hex(md5("secretalice")) || 01 02 03 04)), computed
	// independently of md5Challenge.
	expected := "md598a0412b9c31436fc53776e863350083"

	steps := []libpxtest.Step{
		libpxtest.ExpectStartup(),
		libpxtest.Send(&wire.AuthenticationMD5Password{Salt: salt}),
		libpxtest.ExpectMessage(&wire.PasswordMessage{Password: expected}),
		libpxtest.Send(&wire.AuthenticationOk{}),
		libpxtest.Send(&wire.BackendKeyData{ProcessID: 7, SecretKey: 7}),
		libpxtest.Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	}
	done := runScript(t, srv, steps)

	cfg := testConfig(srv)
	cfg.Password = "secret"
	conn := NewConnection(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, conn.Open(ctx))
	assert.NoError(t, <-done)
}

func TestConnectionOpenNeedsPasswordWhenNoneConfigured(t *testing.T) {
	srv := newTestServer(t)
	salt := [4]byte{9, 9, 9, 9}
	done := runScript(t, srv, []libpxtest.Step{
		libpxtest.ExpectStartup(),
		libpxtest.Send(&wire.AuthenticationMD5Password{Salt: salt}),
	})

	conn := NewConnection(testConfig(srv))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := conn.Open(ctx)
	require.Error(t, err)
	ce, ok := err.(*ConnectionError)
	require.True(t, ok)
	assert.Equal(t, ErrAuthenticationNeeded, ce.Kind)
	assert.NotEqual(t, StatusFailed, conn.Status())

	conn.Close()
	<-done
}

func TestConnectionRuntimeParametersAndBackendKeyData(t *testing.T) {
	srv := newTestServer(t)
	done := runScript(t, srv, []libpxtest.Step{
		libpxtest.ExpectStartup(),
		libpxtest.Send(&wire.AuthenticationOk{}),
		libpxtest.Send(&wire.ParameterStatus{Name: "server_version", Value: "16.1"}),
		libpxtest.Send(&wire.BackendKeyData{ProcessID: 42, SecretKey: 99}),
		libpxtest.Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	})

	conn := NewConnection(testConfig(srv))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, conn.Open(ctx))
	assert.Equal(t, "16.1", conn.RuntimeParameter("server_version"))
	assert.Equal(t, int32(42), conn.BackendProcessID())
	assert.Equal(t, int32(99), conn.BackendSecretKey())
	assert.NoError(t, <-done)
}

func TestConnectionParamsReturnsDefensiveCopy(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Database: "db", User: "alice"}
	conn := NewConnection(cfg)

	copy := conn.Params()
	copy.Host = "mutated"

	assert.Equal(t, "127.0.0.1", conn.Params().Host)
}

func TestConnectionCloseIsIdempotent(t *testing.T) {
	conn := NewConnection(&Config{Host: "127.0.0.1"})
	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.Equal(t, StatusClosed, conn.Status())
}
