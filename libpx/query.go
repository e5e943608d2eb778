package libpx

import (
	"context"
	"fmt"
	"time"

	"github.com/drjokepu/libpx/tracelog"
	"github.com/drjokepu/libpx/wire"
)

// Query is one SQL statement (or semicolon-separated batch, in the simple
// protocol case) bound to a Connection. It holds no state of its own beyond
// the text and parameters — all work happens in Execute.
type Query struct {
	conn *Connection
	SQL  string

	// Parameters, when non-empty, forces the extended query protocol
	// (Parse/Bind/Describe/Execute/Close/Close/Sync) instead of the simple
	// one — spec §4.3's dispatch rule.
	Parameters []Parameter
}

// NewQuery binds sql (and optional parameters) to conn. The Connection must
// be Open.
func NewQuery(conn *Connection, sql string, params ...Parameter) *Query {
	return &Query{conn: conn, SQL: sql, Parameters: params}
}

// Execute runs the query to completion and returns every Result produced —
// one per statement for the simple protocol, exactly one for the extended
// protocol. It selects the wire pipeline by parameter count: zero
// parameters always uses the simple protocol, even when SQL contains
// multiple statements; one or more always uses the extended protocol,
// which supports only a single statement.
func (q *Query) Execute(ctx context.Context) (*ResultList, error) {
	if q.conn.status != StatusOpen {
		return nil, q.conn.setLastError(newConnectionError(ErrNotClosed, "connection is not open", nil))
	}

	start := time.Now()
	path := "simple"
	var (
		results *ResultList
		err     error
	)
	if len(q.Parameters) == 0 {
		results, err = q.executeSimple(ctx)
	} else {
		path = "extended"
		results, err = q.executeExtended(ctx)
	}
	if q.conn.config.Metrics != nil {
		q.conn.config.Metrics.QueriesExecuted.WithLabelValues(path).Inc()
		q.conn.config.Metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}
	return results, err
}

// executeSimple implements the simple query protocol (§4.3.1): one Query
// frame, then RowDescription/DataRow*/CommandComplete groups repeating
// until ReadyForQuery, each group becoming its own Result.
func (q *Query) executeSimple(ctx context.Context) (*ResultList, error) {
	c := q.conn
	if _, err := c.conn.Write((&wire.Query{SQL: q.SQL}).Encode(nil)); err != nil {
		return nil, c.setLastError(newIOError("failed to send query", err, false))
	}

	list := &ResultList{}
	var current *Result
	var queryErr error

	for {
		msgType, body, err := c.readFrame(0)
		if err != nil {
			return nil, c.setLastError(newIOError("failed to read query response", err, false))
		}

		decoded, err := wire.Dispatch(msgType, body)
		if err != nil {
			return nil, c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, "malformed query response", err))
		}

		switch m := decoded.(type) {
		case *wire.RowDescription:
			current = newResult()
			current.setHeaders(m.Fields)
		case *wire.DataRow:
			if current == nil {
				current = newResult()
			}
			current.appendRow(m)
		case *wire.CommandComplete:
			if current == nil {
				current = newResult()
			}
			current.parseCommandTag(m.CommandTag)
			list.push(current)
			current = nil
		case *wire.EmptyQueryResponse:
			list.push(newResult())
		case *wire.NoticeResponse:
			c.log(ctx, tracelog.LogLevelInfo, "Notice", map[string]any{"message": m.Message})
		case *wire.UnknownMessage:
			c.log(ctx, tracelog.LogLevelWarn, "Unknown message dropped", map[string]any{"type": string(m.Type)})
		case *wire.ErrorResponse:
			queryErr = c.setLastError(serverErrorFromFields(m.ErrorFields))
			current = nil
		case *wire.ReadyForQuery:
			if queryErr != nil {
				return list, queryErr
			}
			return list, nil
		default:
			return nil, c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, fmt.Sprintf("unexpected message %T during simple query", m), nil))
		}
	}
}

// executeExtended implements the extended query protocol (§4.3.2): unnamed
// Parse, Bind to an unnamed portal, Describe the portal, Execute with no
// row limit, then Close the portal and the statement before Sync — mirroring
// the frame sequence in query.c's px_query_execute_extended.
func (q *Query) executeExtended(ctx context.Context) (*ResultList, error) {
	c := q.conn

	oids := make([]uint32, len(q.Parameters))
	values := make([][]byte, len(q.Parameters))
	for i, p := range q.Parameters {
		oids[i] = p.TypeOID
		values[i] = p.Value
	}

	frames := [][]byte{
		(&wire.Parse{SQL: q.SQL, ParameterOIDs: oids}).Encode(nil),
		(&wire.Bind{Values: values}).Encode(nil),
		(&wire.Describe{Target: wire.TargetPortal}).Encode(nil),
		(&wire.Execute{}).Encode(nil),
		(&wire.Close{Target: wire.TargetPortal}).Encode(nil),
		(&wire.Close{Target: wire.TargetStatement}).Encode(nil),
		(&wire.Sync{}).Encode(nil),
	}
	for _, f := range frames {
		if _, err := c.conn.Write(f); err != nil {
			return nil, c.setLastError(newIOError("failed to send extended query frame", err, false))
		}
	}

	list := &ResultList{}
	current := newResult()
	var queryErr error

	for {
		msgType, body, err := c.readFrame(0)
		if err != nil {
			return nil, c.setLastError(newIOError("failed to read query response", err, false))
		}

		decoded, err := wire.Dispatch(msgType, body)
		if err != nil {
			return nil, c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, "malformed query response", err))
		}

		switch m := decoded.(type) {
		case *wire.ParseComplete, *wire.BindComplete, *wire.CloseComplete:
			// acknowledged, no state change
		case *wire.RowDescription:
			current.setHeaders(m.Fields)
		case *wire.DataRow:
			current.appendRow(m)
		case *wire.CommandComplete:
			current.parseCommandTag(m.CommandTag)
			list.push(current)
		case *wire.EmptyQueryResponse:
			list.push(current)
		case *wire.NoticeResponse:
			c.log(ctx, tracelog.LogLevelInfo, "Notice", map[string]any{"message": m.Message})
		case *wire.UnknownMessage:
			c.log(ctx, tracelog.LogLevelWarn, "Unknown message dropped", map[string]any{"type": string(m.Type)})
		case *wire.ErrorResponse:
			queryErr = c.setLastError(serverErrorFromFields(m.ErrorFields))
			current = newResult()
		case *wire.ReadyForQuery:
			if queryErr != nil {
				return list, queryErr
			}
			return list, nil
		default:
			return nil, c.setLastError(newConnectionError(ErrUnrecognizedServerMessage, fmt.Sprintf("unexpected message %T during extended query", m), nil))
		}
	}
}
