package rdtext

// The classification lattice, from narrowest to widest:
//
//	* ⊑ Q ⊑ q ⊑ d ⊑ z ⊑ S
//
// A column starts undetermined ('*') and only ever widens as more values
// are seen — never narrows — which is what makes a single left-to-right
// pass over the data sufficient to compute a safe final type.

// intRange tracks, per column, the most negative signed value seen
// (imin) and the largest unsigned value seen (umax), used to narrow a
// 'q'/'Q'-classified column to the smallest sufficient concrete width
// once the full scan is complete.
type intRange struct {
	imin int64
	umax uint64
}

// classifyField updates a column's running classification and integer
// range given one raw field's text. prev is the column's typecode before
// this field; it returns the (possibly widened) typecode and the field's
// byte length, used to size an eventual 'S' fallback.
func classifyField(field string, cfg ParserConfig, prev byte, rng *intRange) (tc byte, length int) {
	length = len(field)
	trimmed := trimASCIISpace(field)

	if trimmed == "" {
		// A blank field never narrows or widens the column's type.
		if prev == 0 {
			return '*', length
		}
		return prev, length
	}

	// Try unsigned first: success keeps the column at 'Q' unless it's
	// already wider. A leading '-' retries as signed; any other syntax
	// error falls through to float/complex/string.
	if u, errc := ParseUint64(trimmed, ^uint64(0)); errc == numOK {
		if u > rng.umax {
			rng.umax = u
		}
		return widen(prev, 'Q'), length
	} else if errc == numMinusSign {
		if i, errc := ParseInt64(trimmed, minInt64, maxInt64); errc == numOK {
			if i < rng.imin {
				rng.imin = i
			}
			return widen(prev, 'q'), length
		}
	}

	if _, ok := ParseFloat(trimmed, cfg.Decimal, cfg.Sci); ok {
		return widen(prev, 'd'), length
	}

	if _, ok := ParseComplex(trimmed, cfg.Decimal, cfg.Sci, cfg.ImaginaryUnit); ok {
		return widen(prev, 'z'), length
	}

	return widen(prev, 'S'), length
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

// latticeRank orders typecodes along * ⊑ Q ⊑ q ⊑ d ⊑ z ⊑ S.
func latticeRank(tc byte) int {
	switch tc {
	case '*', 0:
		return 0
	case 'Q':
		return 1
	case 'q':
		return 2
	case 'd':
		return 3
	case 'z':
		return 4
	case 'S':
		return 5
	default:
		return 5
	}
}

// widen returns the wider of prev and next along the classification
// lattice; it never narrows.
func widen(prev, next byte) byte {
	if latticeRank(next) > latticeRank(prev) {
		return next
	}
	if prev == 0 {
		return next
	}
	return prev
}

// typeForIntegerRange picks the smallest concrete width that holds every
// value seen in rng: unsigned ladder B/H/I/Q when no negative value was
// seen, signed ladder b/h/i/q when one was, degrading to float64 ('d') if
// the magnitude exceeds what any integer width here can hold signed.
func typeForIntegerRange(rng intRange) byte {
	if rng.imin == 0 {
		switch {
		case rng.umax <= maxUint8:
			return 'B'
		case rng.umax <= maxUint16:
			return 'H'
		case rng.umax <= maxUint32:
			return 'I'
		default:
			return 'Q'
		}
	}
	switch {
	case rng.imin >= minInt8 && rng.umax <= maxInt8:
		return 'b'
	case rng.imin >= minInt16 && rng.umax <= maxInt16:
		return 'h'
	case rng.imin >= minInt32 && rng.umax <= maxInt32:
		return 'i'
	case rng.umax <= maxInt64:
		return 'q'
	default:
		return 'd'
	}
}

const (
	maxUint8  = 1<<8 - 1
	maxUint16 = 1<<16 - 1
	maxUint32 = 1<<32 - 1
	minInt8   = -1 << 7
	maxInt8   = 1<<7 - 1
	minInt16  = -1 << 15
	maxInt16  = 1<<15 - 1
	minInt32  = -1 << 31
	maxInt32  = 1<<31 - 1
)

// finalizeColumn converts a column's running classification ('Q' or 'q')
// and its integer range into the final narrow FieldType, and fixes the
// itemsize for every other typecode to its canonical width. strWidth is
// the maximum field byte length seen in the column, used only when the
// final typecode is 'S'.
func finalizeColumn(tc byte, rng intRange, strWidth int) FieldType {
	switch tc {
	case 'Q', 'q':
		final := typeForIntegerRange(rng)
		return FieldType{Typecode: final, Itemsize: itemsizeForTypecode(final)}
	case 'S':
		return FieldType{Typecode: 'S', Itemsize: int32(strWidth)}
	case '*', 0:
		return FieldType{Typecode: '*', Itemsize: 0}
	default:
		return FieldType{Typecode: tc, Itemsize: itemsizeForTypecode(tc)}
	}
}

// columnInference accumulates one column's classification state across an
// Analyze pass.
type columnInference struct {
	typecode byte
	rng      intRange
	strWidth int
}

// observe folds one more row's value for this column into its running
// state.
func (c *columnInference) observe(field string, cfg ParserConfig) {
	tc, length := classifyField(field, cfg, c.typecode, &c.rng)
	c.typecode = tc
	if length > c.strWidth {
		c.strWidth = length
	}
}

// result produces this column's final FieldType once the scan is done.
func (c *columnInference) result() FieldType {
	return finalizeColumn(c.typecode, c.rng, c.strWidth)
}
