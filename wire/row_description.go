package wire

import "github.com/jackc/pgio"

// ColumnDescriptor describes one result column, as carried by RowDescription.
// Format is always TextFormat in this core — the spec treats binary result
// decoding as out of scope.
type ColumnDescriptor struct {
	FieldName    string
	TableOID     uint32
	ColumnID     uint16
	DataTypeOID  uint32
	DataTypeSize int16
	TypeModifier int32
	FormatCode   int16
}

const TextFormat int16 = 0

// RowDescription announces the column shape of the rows that follow.
type RowDescription struct {
	Fields []ColumnDescriptor
}

func (*RowDescription) backend() {}

func (m *RowDescription) Encode(dst []byte) []byte {
	b := NewMessage(dst, 'T').Uint16(uint16(len(m.Fields)))
	for _, f := range m.Fields {
		b.CString(f.FieldName).
			Uint32(f.TableOID).
			Uint16(f.ColumnID).
			Uint32(f.DataTypeOID).
			Int16(f.DataTypeSize).
			Int32(f.TypeModifier).
			Int16(f.FormatCode)
	}
	return b.Finish()
}

func decodeRowDescription(body []byte) (BackendMessage, error) {
	if len(body) < 2 {
		return nil, &invalidMessageFormatErr{messageType: "RowDescription"}
	}
	body, count := pgio.NextUint16(body)

	fields := make([]ColumnDescriptor, count)
	for i := range fields {
		var name string
		var ok bool
		body, name, ok = splitCString(body)
		if !ok {
			return nil, &invalidMessageFormatErr{messageType: "RowDescription", details: "missing field name terminator"}
		}
		if len(body) < 18 {
			return nil, &invalidMessageFormatErr{messageType: "RowDescription", details: "truncated column descriptor"}
		}
		var tableOID, dataTypeOID uint32
		var columnID uint16
		var dataTypeSize, formatCode int16
		var typeModifier int32
		body, tableOID = pgio.NextUint32(body)
		body, columnID = pgio.NextUint16(body)
		body, dataTypeOID = pgio.NextUint32(body)
		body, dataTypeSize = pgio.NextInt16(body)
		body, typeModifier = pgio.NextInt32(body)
		body, formatCode = pgio.NextInt16(body)

		fields[i] = ColumnDescriptor{
			FieldName:    name,
			TableOID:     tableOID,
			ColumnID:     columnID,
			DataTypeOID:  dataTypeOID,
			DataTypeSize: dataTypeSize,
			TypeModifier: typeModifier,
			FormatCode:   formatCode,
		}
	}

	return &RowDescription{Fields: fields}, nil
}
