package rdtext

import (
	"io"
	"math"
)

// AnalyzeOptions controls the Analyze scan.
type AnalyzeOptions struct {
	// SkipRows is the number of input lines discarded before the scan
	// begins. Lines are counted raw: comment and blank lines count like
	// any other line.
	SkipRows int

	// MaxRows caps the number of rows scanned; zero or negative means
	// scan to EOF.
	MaxRows int
}

// Analyze scans s once, inferring a per-column [FieldTypeTable] from the
// values actually present. Columns seen only blank are left undetermined
// ('*', itemsize 0).
func Analyze(s Stream, cfg ParserConfig, opts AnalyzeOptions) (*FieldTypeTable, error) {
	if opts.SkipRows > 0 {
		if err := s.SkipLines(opts.SkipRows); err != nil {
			return nil, &Diagnostic{Kind: ErrFileError, LineNumber: s.LineNumber(), FieldIndex: -1, ColumnIndex: -1, Err: err}
		}
	}

	tok := NewTokenizer(s, cfg)
	cols := make([]columnInference, 0, 16)
	rowsScanned := 0

	for opts.MaxRows <= 0 || rowsScanned < opts.MaxRows {
		row, err := tok.NextRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) > len(cols) {
			grown := make([]columnInference, len(row))
			copy(grown, cols)
			cols = grown
		}
		for j, field := range row {
			cols[j].observe(field, cfg)
		}
		rowsScanned++
	}

	if rowsScanned == 0 {
		return nil, newDiagnostic(ErrNoData, s.LineNumber(), -1)
	}

	table := NewFieldTypeTable(len(cols))
	for j := range cols {
		table.Set(j, cols[j].result())
	}
	return table, nil
}

// ReadOptions controls ReadRows.
type ReadOptions struct {
	// SkipRows is the number of input lines discarded before reading
	// begins, counted raw as for AnalyzeOptions.SkipRows.
	SkipRows int

	// MaxRows caps the number of rows materialised; zero or negative
	// means read to EOF, in which case rows are accumulated in a growable
	// block store rather than a single preallocated buffer.
	MaxRows int

	// UseCols selects and orders output columns by their index in the
	// tokenized row. A negative index counts from the end of the row (-1
	// is the last field). Nil selects every field of the first row seen,
	// in order.
	UseCols []int

	// Transform, if non-nil, is applied to each selected field's raw text
	// before it is decoded; returning an error aborts the read with
	// ErrConverterFailed.
	Transform func(col int, raw string) (string, error)
}

// ReadResult is the materialised output of ReadRows.
type ReadResult struct {
	Data     []byte
	NumRows  int
	NumCols  int
	RowSize  int
	Schema   *FieldTypeTable
}

// rowSink is the write target ReadRows decodes each row into. It has two
// implementations: a preallocatedSink sized up front when the caller
// bounds MaxRows, and a growingSink backed by a blockStore when the row
// count is not known ahead of time. This replaces the source's duplicated
// "known row count" vs "block store" control flow with one decode loop
// that writes through whichever sink fits the call.
type rowSink interface {
	row(k int) []byte
	finalize(n int) []byte
}

// preallocatedSink writes into one flat buffer sized for opts.MaxRows
// rows, used whenever the caller supplies a positive MaxRows.
type preallocatedSink struct {
	buf     []byte
	rowSize int
}

func newPreallocatedSink(maxRows, rowSize int) *preallocatedSink {
	return &preallocatedSink{buf: make([]byte, maxRows*rowSize), rowSize: rowSize}
}

func (p *preallocatedSink) row(k int) []byte {
	return p.buf[k*p.rowSize : (k+1)*p.rowSize]
}

func (p *preallocatedSink) finalize(n int) []byte {
	return p.buf[:n*p.rowSize]
}

// growingSink writes into a blockStore, used when MaxRows is unbounded and
// the final row count is not known until EOF.
type growingSink struct {
	store *blockStore
}

func newGrowingSink(rowSize int) *growingSink {
	return &growingSink{store: newBlockStore(rowSize)}
}

func (g *growingSink) row(k int) []byte { return g.store.rowPtr(k) }

func (g *growingSink) finalize(n int) []byte {
	out := g.store.toContiguous(n)
	g.store.release()
	return out
}

// ReadRows tokenizes and decodes rows from s into a dense row-major byte
// buffer laid out according to schema, which may come from [Analyze] or
// be supplied directly by a caller that already knows the column types
// (the one-pass path). A single-column schema (schema.Len() == 1) is
// broadcast across every selected field, the compound-vs-uniform dispatch
// the reference implementation uses to support both "every column is
// float64" and "column 0 is int32, column 1 is S12" schemas through one
// code path.
func ReadRows(s Stream, cfg ParserConfig, schema *FieldTypeTable, opts ReadOptions) (*ReadResult, error) {
	if opts.SkipRows > 0 {
		if err := s.SkipLines(opts.SkipRows); err != nil {
			return nil, &Diagnostic{Kind: ErrFileError, LineNumber: s.LineNumber(), FieldIndex: -1, ColumnIndex: -1, Err: err}
		}
	}

	tok := NewTokenizer(s, cfg)

	var (
		sink           rowSink
		rowSize        int
		numOutCols     int
		firstRowFields int
		resolvedCols   []int
		rowCount       int
	)
	useBlocks := opts.MaxRows <= 0

	for useBlocks || rowCount < opts.MaxRows {
		row, err := tok.NextRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if rowCount == 0 {
			firstRowFields = len(row)
			resolvedCols = resolveUseCols(opts.UseCols, len(row))
			numOutCols = len(resolvedCols)
			rowSize = computeRowSize(schema, numOutCols)
			if useBlocks {
				sink = newGrowingSink(rowSize)
			} else {
				sink = newPreallocatedSink(opts.MaxRows, rowSize)
			}
		} else if cfg.StrictNumFields && opts.UseCols == nil && len(row) != firstRowFields {
			return nil, &Diagnostic{
				Kind:        ErrChangedNumberOfFields,
				LineNumber:  s.LineNumber() - 1,
				FieldIndex:  -1,
				ColumnIndex: -1,
				Err:         ErrChangedFieldsSentinel,
			}
		}

		dst := sink.row(rowCount)

		offset := 0
		for j, k := range resolvedCols {
			ft := schema.At(fieldTypeIndex(schema, j))
			width := int(ft.Itemsize)

			if k < 0 || k >= len(row) {
				if opts.UseCols != nil {
					return nil, &Diagnostic{
						Kind:        ErrInvalidColumnIndex,
						LineNumber:  s.LineNumber() - 1,
						FieldIndex:  k,
						ColumnIndex: opts.UseCols[j],
						Err:         ErrInvalidColumnSentinel,
					}
				}
				// Short row without usecols: pad with the column's
				// missing value, the value a blank field decodes to (NaN
				// for float columns, zero for integer and string
				// columns). Complex columns stay zero-filled.
				if ft.Typecode == 'f' || ft.Typecode == 'd' {
					_ = decodeField(dst[offset:offset+width], "", ft, cfg)
				}
				offset += width
				continue
			}

			raw := row[k]
			if opts.Transform != nil {
				transformed, terr := opts.Transform(j, raw)
				if terr != nil {
					return nil, &Diagnostic{
						Kind:        ErrConverterFailed,
						LineNumber:  s.LineNumber() - 1,
						FieldIndex:  k,
						ColumnIndex: j,
						Typecode:    ft.Typecode,
						Err:         terr,
					}
				}
				raw = transformed
			}

			if err := decodeField(dst[offset:offset+width], raw, ft, cfg); err != nil {
				return nil, &Diagnostic{
					Kind:        ErrBadField,
					LineNumber:  s.LineNumber() - 1,
					FieldIndex:  k,
					ColumnIndex: j,
					Typecode:    ft.Typecode,
					Err:         err,
				}
			}
			offset += width
		}

		rowCount++
	}

	if rowCount == 0 {
		return nil, newDiagnostic(ErrNoData, s.LineNumber(), -1)
	}

	result := &ReadResult{
		Data:    sink.finalize(rowCount),
		NumRows: rowCount,
		NumCols: numOutCols,
		RowSize: rowSize,
		Schema:  schema,
	}
	return result, nil
}

// fieldTypeIndex returns the schema index naming output column j's type:
// column j itself when the schema is compound (one entry per output
// column), or 0 when the schema is a single broadcast type.
func fieldTypeIndex(schema *FieldTypeTable, j int) int {
	if schema.Len() == 1 {
		return 0
	}
	return j
}

// computeRowSize returns the byte stride of one output row: for a
// broadcast (single-entry) schema, the common itemsize times the number
// of output columns; for a compound schema, the sum of every schema
// entry's itemsize, whether or not usecols selects that many columns.
func computeRowSize(schema *FieldTypeTable, numOutCols int) int {
	if schema.Len() == 1 {
		return int(schema.At(0).Itemsize) * numOutCols
	}
	return int(schema.TotalItemsize())
}

// resolveUseCols turns a usecols spec (possibly nil, possibly containing
// negative indices counting from the end of the row) into concrete
// non-negative-or-out-of-range-marked field indices. Nil selects every
// field of the first row, 0..rowLen-1.
func resolveUseCols(useCols []int, rowLen int) []int {
	if useCols == nil {
		out := make([]int, rowLen)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, len(useCols))
	for i, k := range useCols {
		if k < 0 {
			k += rowLen
		}
		out[i] = k
	}
	return out
}

// decodeField decodes raw into dst according to ft, dispatching on
// typecode. dst must be exactly ft.Itemsize bytes (or, for 'S'/'U', the
// column's configured width).
func decodeField(dst []byte, raw string, ft FieldType, cfg ParserConfig) error {
	switch ft.Typecode {
	case 'b', 'h', 'i', 'q', 'B', 'H', 'I', 'Q':
		v, errc := DecodeInt(raw, ft.Typecode, cfg.Decimal, cfg.Sci, cfg.AllowFloatForInt)
		if errc != numOK {
			return errNumError(errc)
		}
		putIntLE(dst, v)
		return nil
	case 'f':
		f, ok := DecodeFloat(raw, cfg.Decimal, cfg.Sci)
		if !ok {
			return numErrBadField
		}
		putUint32LE(dst, math.Float32bits(float32(f)))
		return nil
	case 'd':
		f, ok := DecodeFloat(raw, cfg.Decimal, cfg.Sci)
		if !ok {
			return numErrBadField
		}
		putUint64LE(dst, math.Float64bits(f))
		return nil
	case 'c':
		z, ok := ParseComplex(raw, cfg.Decimal, cfg.Sci, cfg.ImaginaryUnit)
		if !ok {
			return numErrBadField
		}
		putUint32LE(dst[0:4], math.Float32bits(float32(real(z))))
		putUint32LE(dst[4:8], math.Float32bits(float32(imag(z))))
		return nil
	case 'z':
		z, ok := ParseComplex(raw, cfg.Decimal, cfg.Sci, cfg.ImaginaryUnit)
		if !ok {
			return numErrBadField
		}
		putUint64LE(dst[0:8], math.Float64bits(real(z)))
		putUint64LE(dst[8:16], math.Float64bits(imag(z)))
		return nil
	case 'S':
		CopyFixedString(dst, raw)
		return nil
	case 'U':
		CopyFixedUnicodeString(dst, raw)
		return nil
	default:
		CopyFixedString(dst, raw)
		return nil
	}
}
