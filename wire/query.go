package wire

// Query runs a SQL string using the simple query protocol. The server may
// reply with any number of RowDescription/DataRow/CommandComplete groups
// (one per statement in a semicolon-separated string) before ReadyForQuery.
type Query struct {
	SQL string
}

func (*Query) frontend() {}

func (m *Query) Encode(dst []byte) []byte {
	return NewMessage(dst, 'Q').CString(m.SQL).Finish()
}
