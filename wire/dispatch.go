package wire

import "fmt"

// UnknownMessage is returned for a recognized-as-unrecognized frame type: the
// dispatcher logs and drops it rather than treating it as fatal, per spec
// ("unknown types are logged and dropped without closing the connection").
type UnknownMessage struct {
	Type byte
	Body []byte
}

func (*UnknownMessage) backend() {}

func (m *UnknownMessage) Encode(dst []byte) []byte {
	return NewMessage(dst, m.Type).Bytes(m.Body).Finish()
}

// Dispatch decodes a (type, body) pair read by FrameReader into a typed
// BackendMessage. Unknown type bytes produce an *UnknownMessage rather than
// an error — the caller is expected to log and continue.
func Dispatch(msgType byte, body []byte) (BackendMessage, error) {
	switch msgType {
	case 'R':
		return decodeAuthentication(body)
	case 'K':
		return decodeBackendKeyData(body)
	case 'S':
		return decodeParameterStatus(body)
	case 'Z':
		return decodeReadyForQuery(body)
	case 'T':
		return decodeRowDescription(body)
	case 'D':
		return decodeDataRow(body)
	case 'C':
		return decodeCommandComplete(body)
	case '1':
		return decodeParseComplete(body)
	case '2':
		return decodeBindComplete(body)
	case '3':
		return decodeCloseComplete(body)
	case 'I':
		return decodeEmptyQueryResponse(body)
	case 'E':
		return decodeErrorResponse(body)
	case 'N':
		return decodeNoticeResponse(body)
	default:
		return &UnknownMessage{Type: msgType, Body: body}, nil
	}
}

func (m *UnknownMessage) String() string {
	return fmt.Sprintf("unknown message type %q (%d bytes)", m.Type, len(m.Body))
}
