package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupMessageBytes(t *testing.T) {
	msg := &StartupMessage{Parameters: []StartupParameter{
		{Name: "user", Value: "alice"},
		{Name: "database", Value: "app"},
	}}
	got := msg.Encode(nil)

	// no type byte; 4-byte self-inclusive length; 4-byte protocol version;
	// then "user\0alice\0database\0app\0" and a trailing NUL.
	want := []byte{0, 0, 0, 0} // length placeholder, patched below
	want = append(want, 0x00, 0x03, 0x00, 0x00)
	want = append(want, []byte("user\x00alice\x00database\x00app\x00")...)
	want = append(want, 0x00)
	want[3] = byte(len(want))

	require.Equal(t, want, got)
}

func TestPasswordMessageMD5Shape(t *testing.T) {
	msg := &PasswordMessage{Password: "md5abcdef0123456789abcdef0123456789"}
	got := msg.Encode(nil)

	assert.Equal(t, byte('p'), got[0])
	length := int(got[1])<<24 | int(got[2])<<16 | int(got[3])<<8 | int(got[4])
	assert.Equal(t, len(got)-1, length)
	assert.Equal(t, byte(0), got[len(got)-1])
}

func TestAuthenticationRoundTrip(t *testing.T) {
	ok := (&AuthenticationOk{}).Encode(nil)
	msgType, body := ok[0], ok[5:]
	require.Equal(t, byte('R'), msgType)
	decoded, err := Dispatch(msgType, body)
	require.NoError(t, err)
	require.IsType(t, &AuthenticationOk{}, decoded)

	md5 := &AuthenticationMD5Password{Salt: [4]byte{1, 2, 3, 4}}
	encoded := md5.Encode(nil)
	decoded, err = Dispatch(encoded[0], encoded[5:])
	require.NoError(t, err)
	got, ok2 := decoded.(*AuthenticationMD5Password)
	require.True(t, ok2)
	assert.Equal(t, md5.Salt, got.Salt)
}

func TestUnsupportedAuthenticationMethodErrors(t *testing.T) {
	frame := NewMessage(nil, 'R').Uint32(7).Finish() // GSS, unsupported
	_, err := Dispatch(frame[0], frame[5:])
	require.Error(t, err)
}

func TestRowDescriptionAndDataRowRoundTrip(t *testing.T) {
	rd := &RowDescription{Fields: []ColumnDescriptor{
		{FieldName: "id", DataTypeOID: 23, DataTypeSize: 4, FormatCode: TextFormat},
		{FieldName: "name", DataTypeOID: 1043, DataTypeSize: -1, FormatCode: TextFormat},
	}}
	encoded := rd.Encode(nil)
	decoded, err := Dispatch(encoded[0], encoded[5:])
	require.NoError(t, err)
	got := decoded.(*RowDescription)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "id", got.Fields[0].FieldName)
	assert.Equal(t, uint32(1043), got.Fields[1].DataTypeOID)

	dr := &DataRow{Values: [][]byte{[]byte("1"), nil}}
	encoded = dr.Encode(nil)
	decoded, err = Dispatch(encoded[0], encoded[5:])
	require.NoError(t, err)
	gotRow := decoded.(*DataRow)
	require.Len(t, gotRow.Values, 2)
	assert.Equal(t, []byte("1"), gotRow.Values[0])
	assert.Nil(t, gotRow.Values[1])
}

func TestCommandCompleteRoundTrip(t *testing.T) {
	cc := &CommandComplete{CommandTag: "SELECT 2"}
	encoded := cc.Encode(nil)
	decoded, err := Dispatch(encoded[0], encoded[5:])
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", decoded.(*CommandComplete).CommandTag)
}

func TestErrorResponseRoundTrip(t *testing.T) {
	er := &ErrorResponse{ErrorFields: ErrorFields{
		Severity: "ERROR",
		Code:     "42601",
		Message:  "syntax error at or near \"SELCT\"",
	}}
	encoded := er.Encode(nil)
	decoded, err := Dispatch(encoded[0], encoded[5:])
	require.NoError(t, err)
	got := decoded.(*ErrorResponse)
	assert.Equal(t, "42601", got.Code)
	assert.Equal(t, "ERROR", got.Severity)
}

func TestUnknownMessageTypeDoesNotError(t *testing.T) {
	decoded, err := Dispatch('?', []byte("whatever"))
	require.NoError(t, err)
	require.IsType(t, &UnknownMessage{}, decoded)
}

func TestExtendedQueryFrameShapes(t *testing.T) {
	parse := &Parse{StatementName: "", SQL: "INSERT INTO t VALUES ($1)", ParameterOIDs: []uint32{23}}
	encoded := parse.Encode(nil)
	assert.Equal(t, byte('P'), encoded[0])

	bind := &Bind{PortalName: "", StatementName: "", Values: [][]byte{[]byte("42")}}
	encoded = bind.Encode(nil)
	assert.Equal(t, byte('B'), encoded[0])

	describe := &Describe{Target: TargetPortal, Name: ""}
	encoded = describe.Encode(nil)
	assert.Equal(t, byte('D'), encoded[0])
	assert.Equal(t, byte(TargetPortal), encoded[5])

	execute := &Execute{PortalName: "", MaxRows: 0}
	encoded = execute.Encode(nil)
	assert.Equal(t, byte('E'), encoded[0])

	closeStmt := &Close{Target: TargetStatement, Name: "s1"}
	encoded = closeStmt.Encode(nil)
	assert.Equal(t, byte('C'), encoded[0])

	sync := &Sync{}
	encoded = sync.Encode(nil)
	assert.Equal(t, []byte{'S', 0, 0, 0, 4}, encoded)
}

func TestFrameReaderReadsExactly(t *testing.T) {
	var buf []byte
	buf = (&ReadyForQuery{TxStatus: TxStatusIdle}).Encode(buf)
	buf = (&ParameterStatus{Name: "TimeZone", Value: "UTC"}).Encode(buf)

	fr := NewFrameReader(bytes.NewReader(buf))
	msgType, body, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, byte('Z'), msgType)
	decoded, err := Dispatch(msgType, body)
	require.NoError(t, err)
	assert.Equal(t, TxStatusIdle, decoded.(*ReadyForQuery).TxStatus)

	msgType, body, err = fr.ReadFrame()
	require.NoError(t, err)
	decoded, err = Dispatch(msgType, body)
	require.NoError(t, err)
	ps := decoded.(*ParameterStatus)
	assert.Equal(t, "TimeZone", ps.Name)
	assert.Equal(t, "UTC", ps.Value)
}
