// Package rdtext implements a delimited-text table reader.
//
// Given a byte stream of rows of fields separated by a configurable
// delimiter (or runs of whitespace), rdtext produces a dense rectangular
// buffer of typed values. Two entry points are provided:
//
//   - Analyze scans the whole input once to infer a per-column scalar type
//     (signed/unsigned integer width, floating point, complex, or
//     fixed-width string) from the value ranges actually encountered.
//   - ReadRows materialises rows, either using a field-type table produced
//     by Analyze (the two-pass path) or an explicit schema supplied by the
//     caller (the one-pass path).
//
// # Configuration (Policy)
//
// [ParserConfig] controls delimiter, quoting, comment, decimal point,
// exponent letter, and whitespace-handling behaviour. [DefaultConfig]
// returns the RFC-flavoured defaults documented on the type.
//
// # Implementation (Mechanism)
//
// The reader is organised around the same subsystems a by-hand C
// implementation would use: a buffered character [Stream] (stream.go), a
// row-oriented tokenizer state machine (tokenizer.go), per-field decoders
// (decode.go), a column type inferencer (typeinfer.go), and a paged row
// arena (blockstore.go) that is flattened into the caller's contiguous
// output buffer.
package rdtext
