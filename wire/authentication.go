package wire

import "github.com/jackc/pgio"

// Authentication subcodes recognized by this core. Every other subcode is a
// protocol error per spec — SCRAM, GSS, and SSPI are explicitly out of scope.
const (
	AuthTypeOk          uint32 = 0
	AuthTypeMD5Password uint32 = 5
)

// AuthenticationOk is sent once the server accepts the client's credentials
// (or never challenged them, e.g. "trust").
type AuthenticationOk struct{}

func (*AuthenticationOk) backend() {}

func (m *AuthenticationOk) Encode(dst []byte) []byte {
	return NewMessage(dst, 'R').Uint32(AuthTypeOk).Finish()
}

// AuthenticationMD5Password carries the 4-byte salt for the MD5 challenge.
type AuthenticationMD5Password struct {
	Salt [4]byte
}

func (*AuthenticationMD5Password) backend() {}

func (m *AuthenticationMD5Password) Encode(dst []byte) []byte {
	return NewMessage(dst, 'R').Uint32(AuthTypeMD5Password).Bytes(m.Salt[:]).Finish()
}

// decodeAuthentication dispatches on the 4-byte subcode embedded in an 'R'
// frame. Subcodes other than Ok and MD5Password are accepted methods this
// core does not support and are surfaced as an error rather than silently
// ignored, per spec ("other subcodes -> unsupported").
func decodeAuthentication(body []byte) (BackendMessage, error) {
	if len(body) < 4 {
		return nil, &invalidMessageLenErr{messageType: "Authentication", expectedLen: 4, actualLen: len(body)}
	}
	body, subcode := pgio.NextUint32(body)

	switch subcode {
	case AuthTypeOk:
		return &AuthenticationOk{}, nil
	case AuthTypeMD5Password:
		if len(body) < 4 {
			return nil, &invalidMessageLenErr{messageType: "AuthenticationMD5Password", expectedLen: 4, actualLen: len(body)}
		}
		msg := &AuthenticationMD5Password{}
		copy(msg.Salt[:], body[:4])
		return msg, nil
	default:
		return nil, &unsupportedAuthenticationErr{subcode: subcode}
	}
}

type unsupportedAuthenticationErr struct {
	subcode uint32
}

func (e *unsupportedAuthenticationErr) Error() string {
	return "unsupported authentication method requested by server"
}
