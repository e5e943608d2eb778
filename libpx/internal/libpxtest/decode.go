package libpxtest

import (
	"bytes"
	"fmt"

	"github.com/jackc/pgio"

	"github.com/drjokepu/libpx/wire"
)

// decodeStartupMessage parses the one frame shape with no leading type
// byte: a 4-byte self-inclusive length, a 4-byte protocol version, and
// NUL-terminated name/value pairs ending in an extra NUL.
func decodeStartupMessage(full []byte) (*wire.StartupMessage, error) {
	if len(full) < 8 {
		return nil, fmt.Errorf("startup message too short: %d bytes", len(full))
	}
	body := full[4:]
	body, version := pgio.NextUint32(body)
	if version != wire.ProtocolVersion {
		return nil, fmt.Errorf("unsupported protocol version %#x", version)
	}

	msg := &wire.StartupMessage{}
	for len(body) > 0 && body[0] != 0 {
		var name, value string
		var ok bool
		body, name, ok = splitCString(body)
		if !ok {
			return nil, fmt.Errorf("startup message: missing parameter name terminator")
		}
		body, value, ok = splitCString(body)
		if !ok {
			return nil, fmt.Errorf("startup message: missing parameter value terminator")
		}
		msg.Parameters = append(msg.Parameters, wire.StartupParameter{Name: name, Value: value})
	}
	return msg, nil
}

// dispatchFrontend decodes one (type, body) pair sent by a real client into
// a typed wire.Message, mirroring wire.Dispatch but for the frontend
// message set this package never needs to decode in production.
func dispatchFrontend(msgType byte, body []byte) (wire.Message, error) {
	switch msgType {
	case 'Q':
		_, sql, ok := splitCString(body)
		if !ok {
			return nil, fmt.Errorf("Query: missing terminator")
		}
		return &wire.Query{SQL: sql}, nil
	case 'p':
		_, pw, ok := splitCString(body)
		if !ok {
			return nil, fmt.Errorf("PasswordMessage: missing terminator")
		}
		return &wire.PasswordMessage{Password: pw}, nil
	case 'X':
		return &wire.Terminate{}, nil
	case 'S':
		return &wire.Sync{}, nil
	case 'P':
		return decodeParse(body)
	case 'B':
		return decodeBind(body)
	case 'D':
		if len(body) < 1 {
			return nil, fmt.Errorf("Describe: empty body")
		}
		_, name, ok := splitCString(body[1:])
		if !ok {
			return nil, fmt.Errorf("Describe: missing terminator")
		}
		return &wire.Describe{Target: body[0], Name: name}, nil
	case 'E':
		rest, portal, ok := splitCString(body)
		if !ok {
			return nil, fmt.Errorf("Execute: missing terminator")
		}
		if len(rest) != 4 {
			return nil, fmt.Errorf("Execute: malformed max rows")
		}
		_, maxRows := pgio.NextInt32(rest)
		return &wire.Execute{PortalName: portal, MaxRows: maxRows}, nil
	case 'C':
		if len(body) < 1 {
			return nil, fmt.Errorf("Close: empty body")
		}
		_, name, ok := splitCString(body[1:])
		if !ok {
			return nil, fmt.Errorf("Close: missing terminator")
		}
		return &wire.Close{Target: body[0], Name: name}, nil
	default:
		return nil, fmt.Errorf("unrecognized frontend message type %q", msgType)
	}
}

func decodeParse(body []byte) (*wire.Parse, error) {
	body, stmt, ok := splitCString(body)
	if !ok {
		return nil, fmt.Errorf("Parse: missing statement name terminator")
	}
	body, sql, ok := splitCString(body)
	if !ok {
		return nil, fmt.Errorf("Parse: missing sql terminator")
	}
	if len(body) < 2 {
		return nil, fmt.Errorf("Parse: truncated parameter count")
	}
	body, count := pgio.NextUint16(body)
	oids := make([]uint32, count)
	for i := range oids {
		if len(body) < 4 {
			return nil, fmt.Errorf("Parse: truncated parameter oid")
		}
		body, oids[i] = pgio.NextUint32(body)
	}
	return &wire.Parse{StatementName: stmt, SQL: sql, ParameterOIDs: oids}, nil
}

func decodeBind(body []byte) (*wire.Bind, error) {
	body, portal, ok := splitCString(body)
	if !ok {
		return nil, fmt.Errorf("Bind: missing portal name terminator")
	}
	body, stmt, ok := splitCString(body)
	if !ok {
		return nil, fmt.Errorf("Bind: missing statement name terminator")
	}

	body, formatCount := pgio.NextUint16(body)
	if len(body) < int(formatCount)*2 {
		return nil, fmt.Errorf("Bind: truncated parameter format codes")
	}
	body = body[formatCount*2:]

	body, valueCount := pgio.NextUint16(body)
	values := make([][]byte, valueCount)
	for i := range values {
		if len(body) < 4 {
			return nil, fmt.Errorf("Bind: truncated value length")
		}
		var length int32
		body, length = pgio.NextInt32(body)
		if length < 0 {
			values[i] = nil
			continue
		}
		if len(body) < int(length) {
			return nil, fmt.Errorf("Bind: truncated value")
		}
		values[i] = append([]byte(nil), body[:length]...)
		body = body[length:]
	}

	// The trailing result-format-code array is not read or validated; Bind
	// never varies it in this core.

	return &wire.Bind{PortalName: portal, StatementName: stmt, Values: values}, nil
}

func splitCString(buf []byte) (rest []byte, s string, ok bool) {
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 {
		return buf, "", false
	}
	return buf[idx+1:], string(buf[:idx]), true
}
