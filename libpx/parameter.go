package libpx

// Parameter is one bound query input: a type OID, and either nil (SQL
// NULL) or the text-format bytes of the value. The wire codec encodes a nil
// Value as length -1; Query always binds a text-format value, so OID must
// name a text-compatible type (varchar is OID 1043 — see DESIGN NOTES
// on parameter OID / text-format matching).
type Parameter struct {
	TypeOID uint32
	Value   []byte
}

// NewTextParameter builds a Parameter from a Go string, using the varchar
// OID (1043) by default — the common case for ad hoc query parameters.
func NewTextParameter(value string) Parameter {
	return Parameter{TypeOID: oidVarcharN, Value: []byte(value)}
}

// NewNullParameter builds a NULL Parameter of the given type OID.
func NewNullParameter(typeOID uint32) Parameter {
	return Parameter{TypeOID: typeOID, Value: nil}
}
