package rdtext

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestAnalyzeBasicTypes(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStream(strings.NewReader("1,2.5,hello\n2,3.5,world\n"))
	schema, err := Analyze(s, cfg, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if schema.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", schema.Len())
	}
	if got := schema.At(0).Typecode; got != 'B' {
		t.Errorf("col0 typecode = %q, want 'B'", got)
	}
	if got := schema.At(1).Typecode; got != 'd' {
		t.Errorf("col1 typecode = %q, want 'd'", got)
	}
	if got := schema.At(2).Typecode; got != 'S' {
		t.Errorf("col2 typecode = %q, want 'S'", got)
	}
}

func TestAnalyzeNoData(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStream(strings.NewReader(""))
	_, err := Analyze(s, cfg, AnalyzeOptions{})
	if err == nil {
		t.Fatalf("expected ErrNoData for empty input")
	}
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != ErrNoData {
		t.Fatalf("expected ErrNoData diagnostic, got %v", err)
	}
}

func TestAnalyzeSkipRows(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStream(strings.NewReader("header1,header2\n1,2\n3,4\n"))
	schema, err := Analyze(s, cfg, AnalyzeOptions{SkipRows: 1})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if schema.At(0).Typecode != 'B' {
		t.Errorf("expected numeric column after skipping header, got %q", schema.At(0).Typecode)
	}
}

func TestReadRowsUniformInt(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStream(strings.NewReader("1,2\n3,4\n5,6\n"))
	schema, err := Analyze(NewStream(strings.NewReader("1,2\n3,4\n5,6\n")), cfg, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	result, err := ReadRows(s, cfg, schema, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if result.NumRows != 3 || result.NumCols != 2 {
		t.Fatalf("got NumRows=%d NumCols=%d, want 3,2", result.NumRows, result.NumCols)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	if string(result.Data) != string(want) {
		t.Errorf("Data = %v, want %v", result.Data, want)
	}
}

func TestReadRowsFloat64Column(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(1)
	schema.Set(0, FieldType{Typecode: 'd', Itemsize: 8})
	s := NewStream(strings.NewReader("1.5\n2.5\n"))
	result, err := ReadRows(s, cfg, schema, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	v0 := math.Float64frombits(binary.LittleEndian.Uint64(result.Data[0:8]))
	v1 := math.Float64frombits(binary.LittleEndian.Uint64(result.Data[8:16]))
	if v0 != 1.5 || v1 != 2.5 {
		t.Errorf("got %v, %v; want 1.5, 2.5", v0, v1)
	}
}

func TestReadRowsFloat64ColumnBlankIsNaN(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(1)
	schema.Set(0, FieldType{Typecode: 'd', Itemsize: 8})
	s := NewStream(strings.NewReader("1.5\n\n2.5\n"))
	result, err := ReadRows(s, cfg, schema, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	v0 := math.Float64frombits(binary.LittleEndian.Uint64(result.Data[0:8]))
	v1 := math.Float64frombits(binary.LittleEndian.Uint64(result.Data[8:16]))
	v2 := math.Float64frombits(binary.LittleEndian.Uint64(result.Data[16:24]))
	if v0 != 1.5 || !math.IsNaN(v1) || v2 != 2.5 {
		t.Errorf("got %v, %v, %v; want 1.5, NaN, 2.5", v0, v1, v2)
	}
}

func TestReadRowsWithMaxRows(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(1)
	schema.Set(0, FieldType{Typecode: 'B', Itemsize: 1})
	s := NewStream(strings.NewReader("1\n2\n3\n4\n"))
	result, err := ReadRows(s, cfg, schema, ReadOptions{MaxRows: 2})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if result.NumRows != 2 {
		t.Fatalf("NumRows = %d, want 2", result.NumRows)
	}
	if string(result.Data) != string([]byte{1, 2}) {
		t.Errorf("Data = %v, want [1 2]", result.Data)
	}
}

func TestReadRowsUseColsNegativeIndex(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(2)
	schema.Set(0, FieldType{Typecode: 'B', Itemsize: 1})
	schema.Set(1, FieldType{Typecode: 'B', Itemsize: 1})
	s := NewStream(strings.NewReader("1,2,3\n4,5,6\n"))
	result, err := ReadRows(s, cfg, schema, ReadOptions{UseCols: []int{0, -1}})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	want := []byte{1, 3, 4, 6}
	if string(result.Data) != string(want) {
		t.Errorf("Data = %v, want %v", result.Data, want)
	}
}

func TestReadRowsStrictNumFieldsError(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(1)
	schema.Set(0, FieldType{Typecode: 'B', Itemsize: 1})
	s := NewStream(strings.NewReader("1,2\n3\n"))
	_, err := ReadRows(s, cfg, schema, ReadOptions{})
	if err == nil {
		t.Fatalf("expected ErrChangedNumberOfFields")
	}
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != ErrChangedNumberOfFields {
		t.Fatalf("expected ErrChangedNumberOfFields, got %v", err)
	}
}

func TestReadRowsShortRowTolerantWhenNotStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictNumFields = false
	schema := NewFieldTypeTable(2)
	schema.Set(0, FieldType{Typecode: 'B', Itemsize: 1})
	schema.Set(1, FieldType{Typecode: 'B', Itemsize: 1})
	s := NewStream(strings.NewReader("1,2\n3\n"))
	result, err := ReadRows(s, cfg, schema, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	want := []byte{1, 2, 3, 0}
	if string(result.Data) != string(want) {
		t.Errorf("Data = %v, want %v (short row zero-padded)", result.Data, want)
	}
}

func TestReadRowsTransform(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(1)
	schema.Set(0, FieldType{Typecode: 'B', Itemsize: 1})
	s := NewStream(strings.NewReader("x\ny\n"))
	result, err := ReadRows(s, cfg, schema, ReadOptions{
		Transform: func(col int, raw string) (string, error) {
			if raw == "x" {
				return "1", nil
			}
			return "2", nil
		},
	})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if string(result.Data) != string([]byte{1, 2}) {
		t.Errorf("Data = %v, want [1 2]", result.Data)
	}
}

func TestReadRowsNoData(t *testing.T) {
	cfg := DefaultConfig()
	schema := NewFieldTypeTable(1)
	schema.Set(0, FieldType{Typecode: 'B', Itemsize: 1})
	s := NewStream(strings.NewReader(""))
	_, err := ReadRows(s, cfg, schema, ReadOptions{})
	if err == nil {
		t.Fatalf("expected ErrNoData")
	}
}
