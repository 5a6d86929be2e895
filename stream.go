package rdtext

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Stream is the character-stream abstraction the tokenizer reads from. It
// exposes fetch/peek/skip over a sequence of runes with CRLF normalised to
// LF, plus a line counter and a coarse seek-to-start primitive.
//
// Implementations are not safe for concurrent use.
type Stream interface {
	// Fetch returns the next rune and advances the stream. It returns
	// (0, io.EOF) at end of input.
	Fetch() (rune, error)

	// Peek returns the next rune without advancing the stream.
	Peek() (rune, error)

	// SkipLine discards input up to and including the next newline.
	SkipLine() error

	// SkipLines discards n whole lines.
	SkipLines(n int) error

	// LineNumber returns the 1-based line of the rune that would next be
	// fetched.
	LineNumber() int

	// Tell returns an opaque position. Both Stream implementations in
	// this package return -1: neither tracks mid-stream positions.
	Tell() int64

	// Seek(0) rewinds to the start of the input and resets the line
	// counter to 1; any other position is rejected. A file-backed stream
	// supports Seek(0) only when its reader implements io.Seeker; a
	// line-producer stream always returns an error.
	Seek(pos int64) error

	// Close releases any underlying resource.
	Close() error
}

// fileStream is a buffered, file-backed Stream. It reads raw bytes in
// refillChunkSize() chunks, decodes them through an optional non-UTF-8
// encoding, and normalises "\r\n" and lone "\r" to "\n".
type fileStream struct {
	r          *bufio.Reader
	lineNumber int
	pending    rune
	havePend   bool
	closer     io.Closer
	startable  bool // true only when the underlying reader supports rewinding via a seeker
	seeker     io.Seeker
	raw        io.Reader
	decoder    *encoding.Decoder
}

// StreamOption configures NewStream.
type StreamOption func(*fileStream)

// WithEncoding selects a non-UTF-8 input encoding by its IANA or common
// name (e.g. "windows-1252", "iso-8859-1"), resolved through
// golang.org/x/text/encoding/htmlindex. The default, if this option is
// omitted, is UTF-8.
func WithEncoding(name string) StreamOption {
	return func(fs *fileStream) {
		enc, err := htmlindex.Get(name)
		if err != nil || enc == nil {
			return
		}
		fs.decoder = enc.NewDecoder()
	}
}

// NewStream builds a Stream over r. If r also implements io.Seeker, Seek(0)
// rewinds to the start of the underlying reader; otherwise Seek returns an
// error.
func NewStream(r io.Reader, opts ...StreamOption) Stream {
	fs := &fileStream{
		raw:        r,
		lineNumber: 1,
	}
	if c, ok := r.(io.Closer); ok {
		fs.closer = c
	}
	if s, ok := r.(io.Seeker); ok {
		fs.seeker = s
		fs.startable = true
	}
	for _, opt := range opts {
		opt(fs)
	}
	fs.rebuild()
	return fs
}

// rebuild (re)constructs the buffered-reader pipeline from fs.raw, applying
// the configured decoder if any. Called on construction and after a
// successful Seek(0).
func (fs *fileStream) rebuild() {
	var src io.Reader = fs.raw
	if fs.decoder != nil {
		src = fs.decoder.Reader(src)
	}
	fs.r = bufio.NewReaderSize(src, refillChunkSize())
}

func (fs *fileStream) readRune() (rune, error) {
	if fs.havePend {
		fs.havePend = false
		return fs.pending, nil
	}
	r, _, err := fs.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == '\r' {
		next, _, err2 := fs.r.ReadRune()
		if err2 == nil && next != '\n' {
			fs.r.UnreadRune()
		}
		r = '\n'
	}
	return r, nil
}

func (fs *fileStream) Fetch() (rune, error) {
	r, err := fs.readRune()
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		fs.lineNumber++
	}
	return r, nil
}

// Peek reads one normalised rune ahead and stashes it so the next Fetch
// or Peek serves it without touching the underlying reader again. This
// avoids relying on bufio.Reader.UnreadRune, which only guarantees a
// single-rune undo and cannot represent the CRLF-collapsing lookahead
// Fetch itself needs.
func (fs *fileStream) Peek() (rune, error) {
	if fs.havePend {
		return fs.pending, nil
	}
	r, err := fs.readRune()
	if err != nil {
		return 0, err
	}
	fs.pending = r
	fs.havePend = true
	return r, nil
}

func (fs *fileStream) SkipLine() error {
	for {
		r, err := fs.Fetch()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

func (fs *fileStream) SkipLines(n int) error {
	for i := 0; i < n; i++ {
		start := fs.lineNumber
		if err := fs.skipOneLine(); err != nil {
			return err
		}
		if fs.lineNumber == start {
			return nil // EOF reached before n lines were consumed
		}
	}
	return nil
}

// skipOneLine discards up to and including the next newline. It first
// tries a fast path over whatever is already buffered in fs.r, using
// indexAnyByteFrom to locate the first of '\n' or '\r' in one scan rather
// than decoding one rune at a time; neither byte can occur as a
// continuation byte of a multi-byte UTF-8 sequence, so a byte-level search
// over buffered (UTF-8-valid) bytes is safe. The fast path only fires when
// that first hit is a bare '\n' — a '\r' means CRLF-vs-lone-CR
// normalisation is needed, so control falls back to Fetch-by-rune, as it
// also does across a buffer refill boundary or when the stream has a
// pending peeked rune.
func (fs *fileStream) skipOneLine() error {
	if !fs.havePend {
		if buf, err := fs.r.Peek(fs.r.Buffered()); err == nil && len(buf) > 0 {
			if hit := indexAnyByteFrom(buf, 0, '\n', '\r'); hit >= 0 && buf[hit] == '\n' {
				if _, err := fs.r.Discard(hit + 1); err != nil {
					return err
				}
				fs.lineNumber++
				return nil
			}
		}
	}
	for {
		r, err := fs.Fetch()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

func (fs *fileStream) LineNumber() int { return fs.lineNumber }

func (fs *fileStream) Tell() int64 {
	// Byte-accurate mid-stream positions require tracking decoded-byte
	// offsets through the bufio.Reader, which this stream does not do;
	// only the start-of-stream position (0) is a documented contract.
	return -1
}

func (fs *fileStream) Seek(pos int64) error {
	if pos != 0 {
		return fmt.Errorf("rdtext: stream seek only supports position 0, got %d", pos)
	}
	if !fs.startable {
		return fmt.Errorf("rdtext: underlying reader does not support seeking")
	}
	if _, err := fs.seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if fs.decoder != nil {
		fs.decoder.Reset()
	}
	fs.rebuild()
	fs.lineNumber = 1
	fs.havePend = false
	return nil
}

func (fs *fileStream) Close() error {
	if fs.closer != nil {
		return fs.closer.Close()
	}
	return nil
}

// LineProducer supplies one line of text at a time, for callers that
// already have their input split into lines (e.g. reading from a Python
// file-like object's readline, or an in-memory []string). NextLine
// returns io.EOF with an empty string when exhausted.
type LineProducer interface {
	NextLine() (string, error)
}

// lineSliceProducer adapts a []string to LineProducer.
type lineSliceProducer struct {
	lines []string
	pos   int
}

// NewLineSliceProducer builds a LineProducer over an in-memory slice of
// lines, each without its trailing newline.
func NewLineSliceProducer(lines []string) LineProducer {
	return &lineSliceProducer{lines: lines}
}

func (p *lineSliceProducer) NextLine() (string, error) {
	if p.pos >= len(p.lines) {
		return "", io.EOF
	}
	line := p.lines[p.pos]
	p.pos++
	return line, nil
}

// lineStream is a Stream backed by a LineProducer instead of a raw byte
// reader. Each line is buffered as runes and served one at a time; a
// newline is synthesised after every line, the last one included.
type lineStream struct {
	producer   LineProducer
	buf        []rune
	pos        int
	lineNumber int
	eof        bool
}

// NewLineStream builds a Stream over a LineProducer. LineProducer has no
// reset method, so Seek on a lineStream always returns an error — callers
// needing two passes over line-callback input should construct a fresh
// producer instead. Lines are taken as Go strings and read as UTF-8: this
// stream has no encoding option, and a '\r' inside a line is passed
// through unchanged.
func NewLineStream(p LineProducer) Stream {
	return &lineStream{producer: p, lineNumber: 1}
}

func (ls *lineStream) fill() error {
	if ls.pos < len(ls.buf) || ls.eof {
		return nil
	}
	line, err := ls.producer.NextLine()
	if err != nil {
		ls.eof = true
		return io.EOF
	}
	ls.buf = append([]rune(line), '\n')
	ls.pos = 0
	return nil
}

func (ls *lineStream) Fetch() (rune, error) {
	if err := ls.fill(); err != nil {
		return 0, err
	}
	r := ls.buf[ls.pos]
	ls.pos++
	if r == '\n' {
		ls.lineNumber++
	}
	return r, nil
}

func (ls *lineStream) Peek() (rune, error) {
	if err := ls.fill(); err != nil {
		return 0, err
	}
	return ls.buf[ls.pos], nil
}

func (ls *lineStream) SkipLine() error {
	for {
		r, err := ls.Fetch()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

func (ls *lineStream) SkipLines(n int) error {
	for i := 0; i < n; i++ {
		if err := ls.SkipLine(); err != nil {
			return err
		}
		if ls.eof {
			return nil
		}
	}
	return nil
}

func (ls *lineStream) LineNumber() int { return ls.lineNumber }

func (ls *lineStream) Tell() int64 { return -1 }

func (ls *lineStream) Seek(pos int64) error {
	return fmt.Errorf("rdtext: line-producer streams do not support seeking")
}

func (ls *lineStream) Close() error { return nil }
