package rdtext

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the category of a parsing failure. The values mirror
// the error taxonomy of the underlying text-reading core: no exceptions,
// only explicit diagnostics.
type ErrorKind int

const (
	// ErrNone indicates no error occurred.
	ErrNone ErrorKind = iota

	// ErrOutOfMemory is raised when an allocation fails.
	ErrOutOfMemory

	// ErrNoData is raised by the tokenizer when EOF is reached before any
	// field was found.
	ErrNoData

	// ErrTooManyChars is raised when a row's text exceeds the per-row
	// token buffer.
	ErrTooManyChars

	// ErrTooManyFields is raised when a row has more fields than the
	// configured column cap.
	ErrTooManyFields

	// ErrChangedNumberOfFields is raised by the row reader when a row's
	// field count differs from the first row and usecols is absent.
	ErrChangedNumberOfFields

	// ErrInvalidColumnIndex is raised when a usecols entry is out of
	// range for the current row.
	ErrInvalidColumnIndex

	// ErrBadField is raised when a raw field fails a typed decode.
	ErrBadField

	// ErrConverterFailed is raised when a caller-supplied transform
	// signals failure.
	ErrConverterFailed

	// ErrFileError is raised when the stream could not be opened or read.
	ErrFileError
)

// String returns a short machine-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrOutOfMemory:
		return "out_of_memory"
	case ErrNoData:
		return "no_data"
	case ErrTooManyChars:
		return "too_many_chars"
	case ErrTooManyFields:
		return "too_many_fields"
	case ErrChangedNumberOfFields:
		return "changed_number_of_fields"
	case ErrInvalidColumnIndex:
		return "invalid_column_index"
	case ErrBadField:
		return "bad_field"
	case ErrConverterFailed:
		return "converter_failed"
	case ErrFileError:
		return "file_error"
	default:
		return "unknown"
	}
}

// Sentinel errors usable with [errors.Is]. Diagnostic.Err is one of these,
// except for ErrConverterFailed (the caller's own error) and for an
// ErrFileError raised on a failed stream read or skip (the underlying
// read error).
var (
	ErrOutOfMemorySentinel      = errors.New("rdtext: out of memory")
	ErrNoDataSentinel           = errors.New("rdtext: no data")
	ErrTooManyCharsSentinel     = errors.New("rdtext: row exceeds token buffer")
	ErrTooManyFieldsSentinel    = errors.New("rdtext: row exceeds column cap")
	ErrChangedFieldsSentinel    = errors.New("rdtext: number of fields changed")
	ErrInvalidColumnSentinel    = errors.New("rdtext: usecols index out of range")
	ErrBadFieldSentinel         = errors.New("rdtext: field failed typed decode")
	ErrFileErrorSentinel        = errors.New("rdtext: stream could not be read")
	errNegativeSignInUnsigned   = errors.New("rdtext: minus sign in unsigned field")
)

// Diagnostic carries the location and nature of a parsing failure, as
// described by the error-diagnostic payload: kind, line number, field
// index, column index, and the typecode that was being decoded when the
// failure occurred.
type Diagnostic struct {
	Kind ErrorKind

	// LineNumber is 1-based and reflects the stream's line counter at the
	// point of failure.
	LineNumber int

	// FieldIndex is the file-column index of the field that failed
	// (0-based), or -1 if not applicable.
	FieldIndex int

	// ColumnIndex is the output-column index (0-based), or -1 if not
	// applicable. For ErrInvalidColumnIndex this is the raw (possibly
	// negative) usecols entry that was rejected.
	ColumnIndex int

	// Typecode is the field-type code being decoded when the failure
	// occurred, or 0 if not applicable.
	Typecode byte

	// Err is the underlying sentinel or converter error.
	Err error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Typecode != 0 {
		return fmt.Sprintf("rdtext: line %d, field %d: %v (expected %s)",
			d.LineNumber, d.FieldIndex, d.Err, typecodeName(d.Typecode))
	}
	return fmt.Sprintf("rdtext: line %d, field %d: %v", d.LineNumber, d.FieldIndex, d.Err)
}

// Unwrap returns the underlying error for use with [errors.Is] and
// [errors.As].
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// newDiagnostic builds a Diagnostic with the given kind and sentinel error.
func newDiagnostic(kind ErrorKind, line, field int) *Diagnostic {
	return &Diagnostic{
		Kind:        kind,
		LineNumber:  line,
		FieldIndex:  field,
		ColumnIndex: -1,
		Err:         sentinelFor(kind),
	}
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case ErrOutOfMemory:
		return ErrOutOfMemorySentinel
	case ErrNoData:
		return ErrNoDataSentinel
	case ErrTooManyChars:
		return ErrTooManyCharsSentinel
	case ErrTooManyFields:
		return ErrTooManyFieldsSentinel
	case ErrChangedNumberOfFields:
		return ErrChangedFieldsSentinel
	case ErrInvalidColumnIndex:
		return ErrInvalidColumnSentinel
	case ErrBadField:
		return ErrBadFieldSentinel
	case ErrFileError:
		return ErrFileErrorSentinel
	default:
		return errors.New(kind.String())
	}
}
