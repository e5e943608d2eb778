package libpx

import (
	"fmt"
	"strconv"

	"github.com/drjokepu/libpx/wire"
)

// Cell is one rendered row value: the raw wire bytes plus whether the value
// is SQL NULL (length -1 on the wire).
type Cell struct {
	Data []byte
	Null bool
}

// Row is one decoded DataRow; cells share no backing array with the wire
// frame they were parsed from — they are copied eagerly (DESIGN NOTES
// option (a): copy strings out rather than borrow views into a disposed
// buffer).
type Row struct {
	Cells []Cell
}

// Result is the accumulation of one command's reply: its column headers
// (immutable once installed), its rows, and the parsed command tag.
type Result struct {
	Headers      []wire.ColumnDescriptor
	Rows         []Row
	CommandTag   string
	CommandType  CommandType
	AffectedRows int64
	RowOID       int64
}

const initialRowCapacity = 32

func newResult() *Result {
	return &Result{}
}

func (r *Result) setHeaders(fields []wire.ColumnDescriptor) {
	r.Headers = append([]wire.ColumnDescriptor(nil), fields...)
}

// appendRow copies dr's non-NULL cell bytes into one contiguous buffer owned
// by the new Row, each Cell's Data slicing into it, and grows Rows
// geometrically (initial 32, doubling) by hand, mirroring
// px_result_add_data_row's allocation strategy.
func (r *Result) appendRow(dr *wire.DataRow) {
	if cap(r.Rows) == 0 {
		r.Rows = make([]Row, 0, initialRowCapacity)
	} else if len(r.Rows)+1 >= cap(r.Rows) {
		grown := make([]Row, len(r.Rows), cap(r.Rows)*2)
		copy(grown, r.Rows)
		r.Rows = grown
	}

	total := 0
	for _, v := range dr.Values {
		total += len(v)
	}
	buf := make([]byte, 0, total)
	cells := make([]Cell, len(dr.Values))
	for i, v := range dr.Values {
		if v == nil {
			cells[i] = Cell{Null: true}
			continue
		}
		start := len(buf)
		buf = append(buf, v...)
		cells[i] = Cell{Data: buf[start:len(buf):len(buf)]}
	}
	r.Rows = append(r.Rows, Row{Cells: cells})
}

func (r *Result) parseCommandTag(tag string) {
	r.CommandTag = tag
	parsed := parseCommandTag(tag)
	r.CommandType = parsed.commandType
	r.AffectedRows = parsed.affectedRows
	r.RowOID = parsed.rowOID
}

// ColumnCount mirrors px_result_get_column_count.
func (r *Result) ColumnCount() int { return len(r.Headers) }

// RowCount mirrors px_result_get_row_count.
func (r *Result) RowCount() int { return len(r.Rows) }

// ColumnName mirrors px_result_get_column_name.
func (r *Result) ColumnName(index int) string { return r.Headers[index].FieldName }

// IsNull mirrors px_result_is_db_null.
func (r *Result) IsNull(column, row int) bool { return r.Rows[row].Cells[column].Null }

// ColumnDataType mirrors px_result_get_column_datatype.
func (r *Result) ColumnDataType(index int) uint32 { return r.Headers[index].DataTypeOID }

// RowOIDValue mirrors px_result_get_row_oid.
func (r *Result) RowOIDValue() int64 { return r.RowOID }

// AffectedRowsCount mirrors px_result_get_affected_rows.
func (r *Result) AffectedRowsCount() int64 { return r.AffectedRows }

// ColumnTypeName renders a column's datatype name the way
// px_result_copy_column_datatype_as_string does: VARCHAR(n) for varcharn
// using the column's DataTypeSize, fixed names for well-known OIDs, and "#<oid>"
// for anything else.
func (r *Result) ColumnTypeName(index int) string {
	return typeName(r.Headers[index].DataTypeOID, r.Headers[index].DataTypeSize)
}

// CellText renders one cell the way px_result_copy_cell_value_as_string
// does: "NULL" for SQL NULL, "true"/"false" for booleans, the raw text
// bytes for ordinary scalar types, and a "#<oid> (<len>) "<raw>"" fallback
// for OIDs this core does not specially render.
func (r *Result) CellText(column, row int) string {
	cell := r.Rows[row].Cells[column]
	if cell.Null {
		return "NULL"
	}
	oid := r.Headers[column].DataTypeOID
	return renderCell(oid, cell.Data)
}

// ResultList is an ordered sequence of Results, appended in command order.
type ResultList struct {
	Results []*Result
}

func (rl *ResultList) push(r *Result) {
	rl.Results = append(rl.Results, r)
}

// Len reports the number of Results accumulated.
func (rl *ResultList) Len() int { return len(rl.Results) }

// Well-known OIDs this core renders specially, taken from the original's
// px_datatype enumeration (data_type.h).
const (
	oidBool       uint32 = 16
	oidChar       uint32 = 18
	oidName       uint32 = 19
	oidInt64      uint32 = 20
	oidInt16      uint32 = 21
	oidInt16Array uint32 = 22
	oidInt32      uint32 = 23
	oidVarcharU   uint32 = 25
	oidOID        uint32 = 26
	oidTID        uint32 = 27
	oidXID        uint32 = 28
	oidCID        uint32 = 29
	oidOIDArray   uint32 = 30
	oidFloat4     uint32 = 700
	oidFloat8     uint32 = 701
	oidINET       uint32 = 869
	oidInt16AUnsq uint32 = 1005
	oidInt32Array uint32 = 1007
	oidTextArray  uint32 = 1009
	oidOIDAUnsq   uint32 = 1028
	oidACL        uint32 = 1033
	oidACLArray   uint32 = 1034
	oidVarcharN   uint32 = 1043
	oidTimestamp  uint32 = 1114
	oidTimestampZ uint32 = 1184
	oidUUID       uint32 = 2950
)

func renderCell(oid uint32, data []byte) string {
	switch oid {
	case oidBool:
		if len(data) > 0 && data[0] == 't' {
			return "true"
		}
		return "false"
	case oidInt16, oidInt32, oidInt64, oidFloat4, oidFloat8, oidChar, oidVarcharU, oidVarcharN,
		oidUUID, oidOID, oidTID, oidXID, oidCID, oidName, oidINET,
		oidTimestamp, oidTimestampZ, oidInt16Array, oidInt16AUnsq, oidInt32Array, oidOIDArray, oidOIDAUnsq:
		return string(data)
	default:
		return fmt.Sprintf("#%d (%d) %q", oid, len(data), data)
	}
}

func typeName(oid uint32, size int16) string {
	if oid == oidVarcharN {
		return "VARCHAR(" + strconv.Itoa(int(size)) + ")"
	}
	switch oid {
	case oidChar:
		return "char"
	case oidBool:
		return "boolean"
	case oidInt16:
		return "smallint"
	case oidInt32:
		return "integer"
	case oidInt64:
		return "bigint"
	case oidFloat4:
		return "real"
	case oidFloat8:
		return "double precision"
	case oidOID:
		return "oid"
	case oidCID:
		return "cid"
	case oidXID:
		return "xid"
	case oidTID:
		return "tid"
	case oidName:
		return "name"
	case oidINET:
		return "inet"
	case oidVarcharU:
		return "varchar"
	case oidTimestamp:
		return "timestamp"
	case oidTimestampZ:
		return "timestamp with time zone"
	case oidUUID:
		return "uuid"
	case oidACL:
		return "acl"
	case oidTextArray:
		return "text[]"
	case oidACLArray:
		return "acl[]"
	case oidOIDAUnsq:
		return "oid[]"
	case oidInt16AUnsq:
		return "smallint[]"
	default:
		return "#" + strconv.FormatUint(uint64(oid), 10)
	}
}
