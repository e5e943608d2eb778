package wire

import "github.com/jackc/pgio"

// DataRow carries one row of cell values in text format. A nil entry in
// Values means SQL NULL (wire length -1); a non-nil (possibly empty) entry
// is the cell's raw text bytes.
type DataRow struct {
	Values [][]byte
}

func (*DataRow) backend() {}

func (m *DataRow) Encode(dst []byte) []byte {
	b := NewMessage(dst, 'D').Uint16(uint16(len(m.Values)))
	for _, v := range m.Values {
		b.LengthPrefixedBytes(v)
	}
	return b.Finish()
}

func decodeDataRow(body []byte) (BackendMessage, error) {
	if len(body) < 2 {
		return nil, &invalidMessageFormatErr{messageType: "DataRow"}
	}
	body, count := pgio.NextUint16(body)

	values := make([][]byte, count)
	for i := range values {
		if len(body) < 4 {
			return nil, &invalidMessageFormatErr{messageType: "DataRow", details: "truncated cell length"}
		}
		var length int32
		body, length = pgio.NextInt32(body)
		if length < 0 {
			values[i] = nil
			continue
		}
		if len(body) < int(length) {
			return nil, &invalidMessageFormatErr{messageType: "DataRow", details: "truncated cell data"}
		}
		values[i] = body[:length]
		body = body[length:]
	}

	return &DataRow{Values: values}, nil
}
