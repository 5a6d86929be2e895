package rdtext

// ParserConfig holds the grammar and whitespace/quoting policy used to
// tokenize and decode a stream. A zero-value ParserConfig is not usable
// directly; start from [DefaultConfig] and override the fields that need
// to change.
//
// ParserConfig is immutable for the duration of one Analyze or ReadRows
// call — the reader never mutates the config it was given.
type ParserConfig struct {
	// Delimiter is the field separator codepoint. A value of 0 or ' '
	// selects the whitespace-run tokenizer instead of the single-character
	// one.
	Delimiter rune

	// Quote is the field-quoting codepoint. Set it to a codepoint that
	// cannot appear in the input to disable quoting.
	Quote rune

	// Comment is a 1- or 2-codepoint comment prefix. Comment[1] == 0 means
	// the prefix is a single codepoint. A comment outside quotes discards
	// the remainder of the line.
	Comment [2]rune

	// Decimal is the decimal-point character used by the float decoder.
	Decimal rune

	// Sci is the exponent letter for floats; matched case-insensitively.
	Sci rune

	// ImaginaryUnit is the trailing letter for the imaginary part of a
	// complex number, typically 'j' or 'i'.
	ImaginaryUnit rune

	// AllowEmbeddedNewline: if true, a newline inside quotes is data; if
	// false, an unclosed quote at end of line terminates the field.
	AllowEmbeddedNewline bool

	// IgnoreLeadingSpaces and IgnoreTrailingSpaces apply outside quotes
	// only; spaces inside quotes are never trimmed.
	IgnoreLeadingSpaces  bool
	IgnoreTrailingSpaces bool

	// IgnoreBlankLines applies only to the whitespace tokenizer: lines
	// containing only whitespace are skipped. The separator tokenizer
	// always treats a blank line as a row with one empty field,
	// regardless of this setting — see DESIGN.md, open question (c).
	IgnoreBlankLines bool

	// StrictNumFields, if true, requires every row to have the same field
	// count as the first row; otherwise shorter rows are padded with each
	// column's missing value. This is a reader-level predicate only — the
	// tokenizer never consults it. See DESIGN.md, open question (b).
	StrictNumFields bool

	// AllowFloatForInt: if a cell fails integer parsing, retry it as a
	// float and truncate to the target integer type.
	AllowFloatForInt bool

	// MaxRowChars bounds the per-row codepoint buffer used by the
	// tokenizer (ERR_TOO_MANY_CHARS). Zero selects the default.
	MaxRowChars int

	// MaxFields bounds the number of fields the tokenizer will accept in
	// a single row (ERR_TOO_MANY_FIELDS). Zero selects the default.
	MaxFields int
}

// Grammar defaults, per the external interface contract.
const (
	defaultDelimiter     = ','
	defaultQuote         = '"'
	defaultComment       = '#'
	defaultDecimal       = '.'
	defaultSci           = 'E'
	defaultImaginaryUnit = 'j'

	// defaultMaxRowChars is the default per-row codepoint buffer cap.
	defaultMaxRowChars = 4000

	// defaultMaxFields is the default column cap per row.
	defaultMaxFields = 2000

	// defaultRowsPerBlock and defaultBlockTableLength size the block
	// store used by ReadRows when the caller doesn't know the row count
	// up front.
	defaultRowsPerBlock      = 500
	defaultBlockTableLength  = 200

	// defaultStreamBufferSize is the refill chunk size for the file-backed
	// stream.
	defaultStreamBufferSize = 16 * 1024 * 1024
)

// DefaultConfig returns the grammar defaults documented in the module's
// external interface: comma-delimited, double-quoted, '#'-commented,
// '.'-decimal, 'E'-exponent, 'j'-imaginary, with embedded newlines allowed
// and leading/trailing space and blank-line trimming all enabled.
func DefaultConfig() ParserConfig {
	return ParserConfig{
		Delimiter:            defaultDelimiter,
		Quote:                defaultQuote,
		Comment:              [2]rune{defaultComment, 0},
		Decimal:              defaultDecimal,
		Sci:                  defaultSci,
		ImaginaryUnit:        defaultImaginaryUnit,
		AllowEmbeddedNewline: true,
		IgnoreLeadingSpaces:  true,
		IgnoreTrailingSpaces: true,
		IgnoreBlankLines:     true,
		StrictNumFields:      true,
		AllowFloatForInt:     true,
	}
}

// usesWhitespaceDelimiter reports whether the configuration selects the
// whitespace-run tokenizer rather than the single-character one.
func (c ParserConfig) usesWhitespaceDelimiter() bool {
	return c.Delimiter == 0 || c.Delimiter == ' '
}

// maxRowChars returns the effective per-row codepoint buffer cap.
func (c ParserConfig) maxRowChars() int {
	if c.MaxRowChars > 0 {
		return c.MaxRowChars
	}
	return defaultMaxRowChars
}

// maxFields returns the effective column cap.
func (c ParserConfig) maxFields() int {
	if c.MaxFields > 0 {
		return c.MaxFields
	}
	return defaultMaxFields
}

// isComment reports whether r begins a comment prefix, consulting peek for
// the second comment codepoint when the prefix is two codepoints long.
func (c ParserConfig) isComment(r rune, peek rune, peekOK bool) bool {
	if r != c.Comment[0] || c.Comment[0] == 0 {
		return false
	}
	if c.Comment[1] == 0 {
		return true
	}
	return peekOK && peek == c.Comment[1]
}
