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

func openTestConnection(t *testing.T, srv *libpxtest.Server, extraSteps ...libpxtest.Step) (*Connection, <-chan error) {
	t.Helper()
	steps := append(libpxtest.AcceptUnauthenticatedConnection(), extraSteps...)
	done := runScript(t, srv, steps)

	conn := NewConnection(testConfig(srv))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Open(ctx))
	return conn, done
}

func TestQuerySimpleSelectTwoRows(t *testing.T) {
	srv := newTestServer(t)
	headers := []wire.ColumnDescriptor{
		{FieldName: "id", DataTypeOID: oidInt32},
		{FieldName: "name", DataTypeOID: oidVarcharU},
	}
	conn, done := openTestConnection(t, srv,
		libpxtest.ExpectAnyMessage(&wire.Query{}),
		libpxtest.Send(&wire.RowDescription{Fields: headers}),
		libpxtest.Send(&wire.DataRow{Values: [][]byte{[]byte("1"), []byte("a")}}),
		libpxtest.Send(&wire.DataRow{Values: [][]byte{[]byte("2"), []byte("b")}}),
		libpxtest.Send(&wire.CommandComplete{CommandTag: "SELECT 2"}),
		libpxtest.Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	)

	ctx := context.Background()
	results, err := NewQuery(conn, "SELECT id, name FROM t").Execute(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)

	require.Equal(t, 1, results.Len())
	r := results.Results[0]
	assert.True(t, r.CommandType.IsSelect())
	assert.Equal(t, int64(2), r.AffectedRowsCount())
	require.Equal(t, 2, r.RowCount())
	assert.Equal(t, "1", r.CellText(0, 0))
	assert.Equal(t, "a", r.CellText(1, 0))
	assert.Equal(t, "2", r.CellText(0, 1))
	assert.Equal(t, "b", r.CellText(1, 1))
}

func TestQueryNullCellRendersAsNULL(t *testing.T) {
	srv := newTestServer(t)
	headers := []wire.ColumnDescriptor{{FieldName: "v", DataTypeOID: oidVarcharU}}
	conn, done := openTestConnection(t, srv,
		libpxtest.ExpectAnyMessage(&wire.Query{}),
		libpxtest.Send(&wire.RowDescription{Fields: headers}),
		libpxtest.Send(&wire.DataRow{Values: [][]byte{nil}}),
		libpxtest.Send(&wire.CommandComplete{CommandTag: "SELECT 1"}),
		libpxtest.Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	)

	results, err := NewQuery(conn, "SELECT v FROM t").Execute(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-done)

	r := results.Results[0]
	assert.True(t, r.IsNull(0, 0))
	assert.Equal(t, "NULL", r.CellText(0, 0))
}

func TestQueryExtendedInsertReturningNothing(t *testing.T) {
	srv := newTestServer(t)
	conn, done := openTestConnection(t, srv,
		libpxtest.ExpectAnyMessage(&wire.Parse{}),
		libpxtest.ExpectAnyMessage(&wire.Bind{}),
		libpxtest.ExpectAnyMessage(&wire.Describe{}),
		libpxtest.ExpectAnyMessage(&wire.Execute{}),
		libpxtest.ExpectAnyMessage(&wire.Close{}),
		libpxtest.ExpectAnyMessage(&wire.Close{}),
		libpxtest.ExpectAnyMessage(&wire.Sync{}),
		libpxtest.Send(&wire.ParseComplete{}),
		libpxtest.Send(&wire.BindComplete{}),
		libpxtest.Send(&wire.CommandComplete{CommandTag: "INSERT 0 1"}),
		libpxtest.Send(&wire.CloseComplete{}),
		libpxtest.Send(&wire.CloseComplete{}),
		libpxtest.Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	)

	param := NewTextParameter("hi")
	results, err := NewQuery(conn, "INSERT INTO t VALUES ($1)", param).Execute(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-done)

	require.Equal(t, 1, results.Len())
	r := results.Results[0]
	assert.True(t, r.CommandType.IsInsert())
	assert.Equal(t, int64(1), r.AffectedRowsCount())
	assert.Equal(t, int64(0), r.RowOIDValue())
	assert.Equal(t, 0, r.RowCount())
}

func TestQueryErrorMidQueryPopulatesServerError(t *testing.T) {
	srv := newTestServer(t)
	conn, done := openTestConnection(t, srv,
		libpxtest.ExpectAnyMessage(&wire.Query{}),
		libpxtest.Send(&wire.ErrorResponse{ErrorFields: wire.ErrorFields{
			Severity: "ERROR",
			Code:     "42601",
			Message:  "syntax error",
		}}),
		libpxtest.Send(&wire.ReadyForQuery{TxStatus: wire.TxStatusIdle}),
	)

	results, err := NewQuery(conn, "SELECT bogus(").Execute(context.Background())
	require.Error(t, err)
	require.NoError(t, <-done)

	serr, ok := err.(*ServerError)
	require.True(t, ok)
	assert.Equal(t, "42601", serr.SQLState())
	assert.Equal(t, "42601", conn.LastError().(*ServerError).SQLState())

	require.NotNil(t, results)
	assert.Equal(t, 0, results.Len())
}

func TestQueryNewTextParameterUsesVarcharOID(t *testing.T) {
	p := NewTextParameter("hi")
	assert.Equal(t, oidVarcharN, p.TypeOID)
	assert.Equal(t, []byte("hi"), p.Value)
}

func TestQueryNewNullParameter(t *testing.T) {
	p := NewNullParameter(oidInt32)
	assert.Nil(t, p.Value)
	assert.Equal(t, oidInt32, p.TypeOID)
}
