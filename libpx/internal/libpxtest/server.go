// Package libpxtest provides a scripted fake PostgreSQL server for exercising
// Connection and Query against exact wire bytes, grounded on pgmock's
// Controller/Script/Step shape but speaking this module's own wire package
// instead of pgproto3.
package libpxtest

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"reflect"

	"github.com/drjokepu/libpx/wire"
)

// Server accepts exactly one connection and runs a Script against it.
type Server struct {
	ln net.Listener
}

// NewServer starts listening on an ephemeral loopback port.
func NewServer() (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln}, nil
}

// Addr reports the address clients should dial.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Port reports the listening TCP port.
func (s *Server) Port() uint16 { return uint16(s.ln.Addr().(*net.TCPAddr).Port) }

// Host reports the listening address's host component.
func (s *Server) Host() string { return s.ln.Addr().(*net.TCPAddr).IP.String() }

// Close stops accepting new connections.
func (s *Server) Close() error { return s.ln.Close() }

// ServeOne accepts a single connection, closes the listener right away, and
// runs script against the connection, closing it when script finishes.
func (s *Server) ServeOne(script *Script) error {
	conn, err := s.ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()
	s.ln.Close()

	br := bufio.NewReaderSize(conn, 8192)
	backend := &Backend{conn: conn, br: br, reader: wire.NewFrameReader(br)}
	return script.Run(backend)
}

// Backend is the scripted server's half of the wire connection: it reads
// frontend frames and writes backend frames without any protocol logic of
// its own, leaving that to Step implementations. br backs both the raw
// StartupMessage read and reader, so no bytes are lost switching between
// them.
type Backend struct {
	conn   net.Conn
	br     *bufio.Reader
	reader *wire.FrameReader
}

// ReceiveStartup reads the one frame shape with no type byte: a raw 4-byte
// self-inclusive length followed by that many bytes of body, read directly
// off br rather than through FrameReader (which always expects a leading
// type byte).
func (b *Backend) ReceiveStartup() (*wire.StartupMessage, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(b.br, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length < 4 {
		return nil, fmt.Errorf("startup message: invalid length %d", length)
	}
	rest := make([]byte, length-4)
	if _, err := io.ReadFull(b.br, rest); err != nil {
		return nil, err
	}
	return decodeStartupMessage(append(lenBuf[:], rest...))
}

// Receive reads and dispatches one frontend-direction frame.
func (b *Backend) Receive() (wire.Message, error) {
	msgType, body, err := b.reader.ReadFrame()
	if err != nil {
		return nil, err
	}
	return dispatchFrontend(msgType, body)
}

// Send writes one backend message verbatim.
func (b *Backend) Send(msg wire.BackendMessage) error {
	_, err := b.conn.Write(msg.Encode(nil))
	return err
}

// SendRaw writes bytes with no framing applied, for malformed-frame tests.
func (b *Backend) SendRaw(raw []byte) error {
	_, err := b.conn.Write(raw)
	return err
}

// Script is an ordered sequence of Steps run against one Backend.
type Script struct {
	Steps []Step
}

// Run executes every step in order, stopping at the first error.
func (s *Script) Run(b *Backend) error {
	for i, step := range s.Steps {
		if err := step.Run(b); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// Step is one scripted interaction: read an expected frontend message, or
// write a backend message, or some combination of the two.
type Step interface {
	Run(b *Backend) error
}

type expectStartupStep struct{}

// ExpectStartup consumes one StartupMessage without checking its contents —
// most scripts only care that the client sent one.
func ExpectStartup() Step { return &expectStartupStep{} }

func (e *expectStartupStep) Run(b *Backend) error {
	_, err := b.ReceiveStartup()
	return err
}

type expectMessageStep struct {
	want wire.Message
}

// ExpectMessage consumes one frontend message and requires it to deep-equal
// want.
func ExpectMessage(want wire.Message) Step { return &expectMessageStep{want: want} }

func (e *expectMessageStep) Run(b *Backend) error {
	got, err := b.Receive()
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(got, e.want) {
		return fmt.Errorf("got %#v, want %#v", got, e.want)
	}
	return nil
}

type expectAnyMessageStep struct {
	wantType reflect.Type
}

// ExpectAnyMessage consumes one frontend message and only checks its
// dynamic type matches want's.
func ExpectAnyMessage(want wire.Message) Step {
	return &expectAnyMessageStep{wantType: reflect.TypeOf(want)}
}

func (e *expectAnyMessageStep) Run(b *Backend) error {
	got, err := b.Receive()
	if err != nil {
		return err
	}
	if reflect.TypeOf(got) != e.wantType {
		return fmt.Errorf("got %T, want %s", got, e.wantType)
	}
	return nil
}

type sendStep struct {
	msg wire.BackendMessage
}

// Send writes msg to the client.
func Send(msg wire.BackendMessage) Step { return &sendStep{msg: msg} }

func (e *sendStep) Run(b *Backend) error { return b.Send(e.msg) }

type sendRawStep struct {
	raw []byte
}

// SendRaw writes raw bytes with no framing, for malformed-message tests.
func SendRaw(raw []byte) Step { return &sendRawStep{raw: raw} }

func (e *sendRawStep) Run(b *Backend) error { return b.SendRaw(e.raw) }

// AcceptUnauthenticatedConnection is the common trust-auth handshake steps:
// consume the startup message, send AuthenticationOk, BackendKeyData, and
// ReadyForQuery.
func AcceptUnauthenticatedConnection() []Step {
	return []Step{
		ExpectStartup(),
		Send(&wire.AuthenticationOk{}),
		Send(&wire.BackendKeyData{ProcessID: 1, SecretKey: 1}),
		Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	}
}

// AcceptMD5Connection is the MD5-challenge handshake: consume the startup
// message, challenge with salt, consume the PasswordMessage without
// verifying its digest (callers that need to assert the digest should use
// ExpectMessage with a literal wire.PasswordMessage instead), then complete
// like the trust case.
func AcceptMD5Connection(salt [4]byte) []Step {
	return []Step{
		ExpectStartup(),
		Send(&wire.AuthenticationMD5Password{Salt: salt}),
		ExpectAnyMessage(&wire.PasswordMessage{}),
		Send(&wire.AuthenticationOk{}),
		Send(&wire.BackendKeyData{ProcessID: 1, SecretKey: 1}),
		Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	}
}
