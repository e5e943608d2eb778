package wire

// DescribeTarget and CloseTarget select whether Describe/Close act on a
// prepared statement or a portal.
const (
	TargetStatement byte = 'S'
	TargetPortal    byte = 'P'
)

// Parse prepares SQL under StatementName (the empty string names the
// unnamed statement). ParameterOIDs may be shorter than the SQL's actual
// parameter count — 0 entries, or an explicit zero OID, tells the server to
// infer the type itself.
type Parse struct {
	StatementName string
	SQL           string
	ParameterOIDs []uint32
}

func (*Parse) frontend() {}

func (m *Parse) Encode(dst []byte) []byte {
	b := NewMessage(dst, 'P').CString(m.StatementName).CString(m.SQL).
		Uint16(uint16(len(m.ParameterOIDs)))
	for _, oid := range m.ParameterOIDs {
		b.Uint32(oid)
	}
	return b.Finish()
}

// Bind binds parameter values to a prepared statement, producing a portal.
// Values entries are text-format by construction — this core never emits
// binary-format parameters or requests binary-format results.
type Bind struct {
	PortalName    string
	StatementName string
	Values        [][]byte
}

func (*Bind) frontend() {}

func (m *Bind) Encode(dst []byte) []byte {
	b := NewMessage(dst, 'B').CString(m.PortalName).CString(m.StatementName).
		Uint16(0)
	b.Uint16(uint16(len(m.Values)))
	for _, v := range m.Values {
		b.LengthPrefixedBytes(v)
	}
	b.Uint16(0)
	return b.Finish()
}

// Describe requests the parameter and/or row description of a named
// statement or portal.
type Describe struct {
	Target byte
	Name   string
}

func (*Describe) frontend() {}

func (m *Describe) Encode(dst []byte) []byte {
	return NewMessage(dst, 'D').Byte(m.Target).CString(m.Name).Finish()
}

// Execute runs a bound portal. MaxRows of 0 means "no limit".
type Execute struct {
	PortalName string
	MaxRows    int32
}

func (*Execute) frontend() {}

func (m *Execute) Encode(dst []byte) []byte {
	return NewMessage(dst, 'E').CString(m.PortalName).Int32(m.MaxRows).Finish()
}

// Close discards a prepared statement or portal.
type Close struct {
	Target byte
	Name   string
}

func (*Close) frontend() {}

func (m *Close) Encode(dst []byte) []byte {
	return NewMessage(dst, 'C').Byte(m.Target).CString(m.Name).Finish()
}

// Sync ends an extended-query pipeline, asking the server for ReadyForQuery.
type Sync struct{}

func (*Sync) frontend()                  {}
func (m *Sync) Encode(dst []byte) []byte { return NewMessage(dst, 'S').Finish() }
