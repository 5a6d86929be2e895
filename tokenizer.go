package rdtext

import (
	"io"
	"unicode/utf8"
)

// tokenizeState names the tokenizer's position within a field.
type tokenizeState int

const (
	stateInit tokenizeState = iota
	stateUnquoted
	stateQuoted
	stateWhitespace
)

// termComment is a sentinel readSepField terminator meaning "the very
// first character of this row began a comment". It is only returned for
// a row's opening character, before any field has started; the whole
// attempt is discarded so the caller can retry on the next line, which
// lets several consecutive comment-only lines be skipped in one NextRow
// call. A comment recognised anywhere else — mid-field, or at the start
// of a later field in the same row — instead finalises whatever field
// is in progress (even an empty one) and ends the row, exactly like a
// newline; it does not use this sentinel.
const termComment rune = 0

// Tokenizer splits a Stream into rows of raw field strings, according to
// a ParserConfig's delimiter, quote, comment, and trimming rules. It
// dispatches to one of two state machines depending on whether the
// configured delimiter selects single-character or whitespace-run
// splitting.
type Tokenizer struct {
	stream Stream
	cfg    ParserConfig

	field []rune // reusable field accumulator
	row   []string

	maxChars  int
	maxFields int
}

// NewTokenizer builds a Tokenizer reading from s under cfg.
func NewTokenizer(s Stream, cfg ParserConfig) *Tokenizer {
	return &Tokenizer{
		stream:    s,
		cfg:       cfg,
		field:     make([]rune, 0, 64),
		row:       make([]string, 0, 16),
		maxChars:  cfg.maxRowChars(),
		maxFields: cfg.maxFields(),
	}
}

// NextRow reads and returns the next row's fields. It returns io.EOF when
// the stream is exhausted before any field of a new row is seen. A row
// consisting of the end-of-stream immediately following a newline is not
// returned; EOF is reported once, cleanly, at the true end of input.
func (t *Tokenizer) NextRow() ([]string, error) {
	if t.cfg.usesWhitespaceDelimiter() {
		return t.nextRowWhitespace()
	}
	return t.nextRowSeparator()
}

// nextRowSeparator implements the single-character-delimiter state
// machine: INIT -> UNQUOTED|QUOTED, field-by-field until newline or EOF.
// A blank line (an immediate newline with nothing read) always yields one
// row with a single empty field, regardless of IgnoreBlankLines — that
// flag only affects the whitespace tokenizer.
func (t *Tokenizer) nextRowSeparator() ([]string, error) {
	t.row = t.row[:0]
	totalChars := 0
	atRowStart := true

	for {
		field, terminator, err := t.readSepField(atRowStart)
		atRowStart = false
		if err != nil {
			if err == io.EOF {
				if field == "" && len(t.row) == 0 {
					// Nothing at all was read for this row: true end of
					// stream, not a trailing unterminated row.
					return nil, io.EOF
				}
				// EOF ends the last row even without a trailing newline;
				// the field read so far (even empty) still counts.
				t.row = append(t.row, field)
				return t.row, nil
			}
			return nil, err
		}
		if terminator == termComment {
			// The row's very first character began a comment: discard
			// this attempt entirely and retry on the next line.
			atRowStart = true
			continue
		}
		totalChars += utf8.RuneCountInString(field)
		if totalChars > t.maxChars {
			return nil, newDiagnostic(ErrTooManyChars, t.stream.LineNumber(), len(t.row))
		}
		t.row = append(t.row, field)
		if len(t.row) > t.maxFields {
			return nil, newDiagnostic(ErrTooManyFields, t.stream.LineNumber(), len(t.row))
		}
		if terminator == '\n' {
			return t.row, nil
		}
	}
}

// readSepField reads one field up to the next delimiter or newline.
// terminator is '\n' at end of row (including when a comment finalised
// whatever field was in progress), the delimiter rune between fields, or
// termComment if the row's first character, before anything else was
// read, began a comment.
//
// atRowStart must be true only for the first readSepField call of a
// fresh row; it enables the row-start comment check that lets an entire
// comment-only line be discarded rather than ending the row.
func (t *Tokenizer) readSepField(atRowStart bool) (field string, terminator rune, err error) {
	t.field = t.field[:0]
	state := stateInit
	trailingSpaces := 0
	firstChar := atRowStart

	for {
		r, ferr := t.stream.Fetch()
		if ferr == io.EOF {
			// An unterminated quote at EOF returns whatever was
			// accumulated rather than erroring.
			return trimTrailing(t.field, trailingSpaces), '\n', io.EOF
		}
		if ferr != nil {
			return "", 0, &Diagnostic{Kind: ErrFileError, LineNumber: t.stream.LineNumber(), FieldIndex: -1, ColumnIndex: -1, Err: ferr}
		}

		if firstChar {
			firstChar = false
			if peek, pOK := t.peekOK(); t.cfg.isComment(r, peek, pOK) {
				if err := t.stream.SkipLine(); err != nil && err != io.EOF {
					return "", 0, err
				}
				return "", termComment, nil
			}
			// Not a comment: r is fed into the normal state machine below.
		}

		switch state {
		case stateInit:
			if t.cfg.IgnoreLeadingSpaces && r == ' ' {
				continue
			}
			if r == t.cfg.Quote {
				state = stateQuoted
				continue
			}
			if r == '\n' {
				return string(t.field), '\n', nil
			}
			if r == t.cfg.Delimiter {
				return string(t.field), t.cfg.Delimiter, nil
			}
			if peek, pOK := t.peekOK(); t.cfg.isComment(r, peek, pOK) {
				// A comment at the start of a later field (or after only
				// ignored leading spaces) still finalises this field,
				// even empty, and ends the row like a newline.
				if err := t.stream.SkipLine(); err != nil && err != io.EOF {
					return "", 0, err
				}
				return string(t.field), '\n', nil
			}
			state = stateUnquoted
			t.field = append(t.field, r)

		case stateUnquoted:
			if r == '\n' {
				return trimTrailing(t.field, trailingSpaces), '\n', nil
			}
			if r == t.cfg.Delimiter {
				return trimTrailing(t.field, trailingSpaces), t.cfg.Delimiter, nil
			}
			if peek, pOK := t.peekOK(); t.cfg.isComment(r, peek, pOK) {
				// A comment mid-field ends the field here (trimmed as
				// usual) and ends the row.
				if err := t.stream.SkipLine(); err != nil && err != io.EOF {
					return "", 0, err
				}
				return trimTrailing(t.field, trailingSpaces), '\n', nil
			}
			if t.cfg.IgnoreTrailingSpaces && r == ' ' {
				trailingSpaces++
			} else {
				trailingSpaces = 0
			}
			t.field = append(t.field, r)

		case stateQuoted:
			if r == t.cfg.Quote {
				peek, pOK := t.peekOK()
				if pOK && peek == t.cfg.Quote {
					t.stream.Fetch() // consume the doubled quote
					t.field = append(t.field, t.cfg.Quote)
					continue
				}
				state = stateUnquoted
				trailingSpaces = 0
				continue
			}
			if r == '\n' && !t.cfg.AllowEmbeddedNewline {
				return trimTrailing(t.field, 0), '\n', nil
			}
			t.field = append(t.field, r)
		}
	}
}

// peekOK wraps Stream.Peek, turning an EOF/error into (0, false) so
// callers can treat "no next rune" uniformly.
func (t *Tokenizer) peekOK() (rune, bool) {
	r, err := t.stream.Peek()
	if err != nil {
		return 0, false
	}
	return r, true
}

func trimTrailing(field []rune, trailingSpaces int) string {
	if trailingSpaces > 0 && trailingSpaces <= len(field) {
		field = field[:len(field)-trailingSpaces]
	}
	return string(field)
}

// nextRowWhitespace implements the whitespace-run tokenizer: any run of
// spaces/tabs separates fields, leading/trailing runs on a line are
// collapsed, and (per IgnoreBlankLines) an all-whitespace line is skipped
// entirely rather than yielding an empty row.
func (t *Tokenizer) nextRowWhitespace() ([]string, error) {
	for {
		row, err := t.readWhitespaceRow()
		if err != nil {
			return row, err
		}
		if len(row) == 0 && t.cfg.IgnoreBlankLines {
			continue
		}
		return row, nil
	}
}

// fetchPastComment fetches the next rune, skipping over any number of
// comment-only lines first. Unlike the separator tokenizer, the
// whitespace tokenizer only ever checks for a comment at a line's very
// first character; a '#' reached anywhere else in the row is ordinary
// field data.
func (t *Tokenizer) fetchPastComment() (rune, error) {
	for {
		r, err := t.stream.Fetch()
		if err != nil {
			return 0, err
		}
		peek, pOK := t.peekOK()
		if !t.cfg.isComment(r, peek, pOK) {
			return r, nil
		}
		if err := t.stream.SkipLine(); err != nil && err != io.EOF {
			return 0, err
		}
	}
}

func (t *Tokenizer) readWhitespaceRow() (row []string, err error) {
	t.row = t.row[:0]
	state := stateWhitespace
	totalChars := 0

	pending, ferr := t.fetchPastComment()
	havePending := ferr == nil

	for {
		var r rune
		if havePending {
			r = pending
			havePending = false
		} else {
			r, ferr = t.stream.Fetch()
		}
		if ferr == io.EOF {
			if state == stateUnquoted || state == stateQuoted {
				t.row = append(t.row, string(t.field))
			}
			if len(t.row) == 0 {
				return nil, io.EOF
			}
			return t.row, nil
		}
		if ferr != nil {
			return nil, &Diagnostic{Kind: ErrFileError, LineNumber: t.stream.LineNumber(), FieldIndex: -1, ColumnIndex: -1, Err: ferr}
		}

		switch state {
		case stateWhitespace:
			if r == '\n' {
				return t.row, nil
			}
			if isWS(r) {
				continue
			}
			t.field = t.field[:0]
			if r == t.cfg.Quote {
				state = stateQuoted
				continue
			}
			state = stateUnquoted
			t.field = append(t.field, r)

		case stateUnquoted:
			if r == '\n' {
				t.row = append(t.row, string(t.field))
				return t.row, nil
			}
			if isWS(r) {
				t.row = append(t.row, string(t.field))
				totalChars += len(t.field)
				if totalChars > t.maxChars {
					return nil, newDiagnostic(ErrTooManyChars, t.stream.LineNumber(), len(t.row))
				}
				if len(t.row) > t.maxFields {
					return nil, newDiagnostic(ErrTooManyFields, t.stream.LineNumber(), len(t.row))
				}
				state = stateWhitespace
				continue
			}
			t.field = append(t.field, r)

		case stateQuoted:
			if r == t.cfg.Quote {
				peek, pOK := t.peekOK()
				if pOK && peek == t.cfg.Quote {
					t.stream.Fetch()
					t.field = append(t.field, t.cfg.Quote)
					continue
				}
				// Closing quote returns to stateUnquoted without ending
				// the field: `"ABC"123` tokenizes as one field, ABC123.
				state = stateUnquoted
				continue
			}
			if r == '\n' && !t.cfg.AllowEmbeddedNewline {
				t.row = append(t.row, string(t.field))
				return t.row, nil
			}
			t.field = append(t.field, r)
		}
	}
}

func isWS(r rune) bool {
	return r == ' ' || r == '\t'
}
