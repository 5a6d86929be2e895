package rdtext

import "strconv"

// FieldType is a single column's scalar type: a one-letter typecode plus
// the byte width of one value of that type.
//
// Typecodes:
//
//	b B   int8, uint8
//	h H   int16, uint16
//	i I   int32, uint32
//	q Q   int64, uint64
//	f d   float32, float64
//	c z   complex64, complex128
//	S     fixed-width byte string, Itemsize bytes
//	U     fixed-width 4-byte-codepoint string, Itemsize/4 codepoints
//	*     undetermined (column saw no non-blank values yet)
type FieldType struct {
	Typecode byte
	Itemsize int32
}

// itemsizeForTypecode returns the canonical byte width for a scalar
// typecode, per the external type table. 'S' and 'U' carry no canonical
// width and return 0; callers must track their own itemsize for those.
func itemsizeForTypecode(tc byte) int32 {
	switch tc {
	case 'b', 'B':
		return 1
	case 'h', 'H':
		return 2
	case 'i', 'I', 'f':
		return 4
	case 'q', 'Q', 'd':
		return 8
	case 'c':
		return 8
	case 'z':
		return 16
	default:
		return 0
	}
}

// typecodeName returns a human-readable name for a typecode, used in
// diagnostics. Schema strings use the bare typecode instead.
func typecodeName(tc byte) string {
	switch tc {
	case 'b':
		return "int8"
	case 'B':
		return "uint8"
	case 'h':
		return "int16"
	case 'H':
		return "uint16"
	case 'i':
		return "int32"
	case 'I':
		return "uint32"
	case 'q':
		return "int64"
	case 'Q':
		return "uint64"
	case 'f':
		return "float32"
	case 'd':
		return "float64"
	case 'c':
		return "complex64"
	case 'z':
		return "complex128"
	case 'S':
		return "S"
	case 'U':
		return "U"
	case '*':
		return "undetermined"
	default:
		return "unknown"
	}
}

// FieldTypeTable holds the per-column type vector produced by Analyze, or
// supplied directly by a caller of ReadRows that already knows its schema.
type FieldTypeTable struct {
	cols []FieldType
}

// NewFieldTypeTable builds a table of n columns, each initialised to the
// undetermined typecode '*' with itemsize 0.
func NewFieldTypeTable(n int) *FieldTypeTable {
	t := &FieldTypeTable{cols: make([]FieldType, n)}
	for i := range t.cols {
		t.cols[i] = FieldType{Typecode: '*', Itemsize: 0}
	}
	return t
}

// Len returns the number of columns.
func (t *FieldTypeTable) Len() int { return len(t.cols) }

// At returns the FieldType for column j.
func (t *FieldTypeTable) At(j int) FieldType { return t.cols[j] }

// Set assigns the FieldType for column j.
func (t *FieldTypeTable) Set(j int, ft FieldType) { t.cols[j] = ft }

// Grow extends the table to n columns, appending undetermined entries. It
// is a no-op if the table already has at least n columns.
func (t *FieldTypeTable) Grow(n int) {
	if n <= len(t.cols) {
		return
	}
	grown := make([]FieldType, n)
	copy(grown, t.cols)
	for i := len(t.cols); i < n; i++ {
		grown[i] = FieldType{Typecode: '*', Itemsize: 0}
	}
	t.cols = grown
}

// IsHomogeneous reports whether every column shares the first column's
// typecode and itemsize. A single-column table is trivially homogeneous.
func (t *FieldTypeTable) IsHomogeneous() bool {
	if len(t.cols) == 0 {
		return true
	}
	first := t.cols[0]
	for _, ft := range t.cols[1:] {
		if ft != first {
			return false
		}
	}
	return true
}

// TotalItemsize returns the sum of every column's itemsize, the row
// stride used when the table is not homogeneous.
func (t *FieldTypeTable) TotalItemsize() int32 {
	var total int32
	for _, ft := range t.cols {
		total += ft.Itemsize
	}
	return total
}

// SchemaString renders the table as a comma-separated list of single-
// letter typecodes, one per selected column, in the shape "q,d,S12".
//
// cols, if non-nil, sets the number of output columns to len(cols) (as
// usecols does for ReadRows); its values are not read unless it is also
// passed as permute.
//
// permute controls which table index names each selected column's type.
// When permute is nil, column j of the output is named by t.cols[j] — the
// table is indexed by output position, not by source column. Pass
// permute = cols to instead name output column j by t.cols[cols[j]], the
// source-column reading. Both readings of the table/usecols interaction
// are reachable; the external interface's own reference implementation
// uses the first (nil permute).
func (t *FieldTypeTable) SchemaString(cols []int, permute []int) string {
	n := len(t.cols)
	if cols != nil {
		n = len(cols)
	}
	if n == 0 {
		return ""
	}
	parts := make([]string, n)
	for j := 0; j < n; j++ {
		idx := j
		if permute != nil {
			idx = permute[j]
		}
		ft := t.cols[idx]
		parts[j] = schemaEntry(ft)
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "," + p
	}
	return out
}

func schemaEntry(ft FieldType) string {
	switch ft.Typecode {
	case 'S':
		return "S" + strconv.Itoa(int(ft.Itemsize))
	case 'U':
		return "U" + strconv.Itoa(int(ft.Itemsize/4))
	default:
		return string(ft.Typecode)
	}
}
