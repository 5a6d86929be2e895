package rdtext

import (
	"io"
	"strings"
	"testing"
)

func FuzzTokenizerConsistency(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c\n",
		"a,\"b,b\",c\n",
		"a,\"b\nc\",d\n",
		"\"unterminated\n",
		"a\"b,c\n",
		"one\r\ntwo\r\n",
		"trailing,newline\n",
		"#comment\na,b\n",
		"  a  ,  b  \n",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 1<<12 {
			t.Skip()
		}
		cfg := DefaultConfig()
		rowsFirst := tokenizeToCompletion(t, input, cfg)
		rowsSecond := tokenizeToCompletion(t, input, cfg)
		if !rowsEqual(rowsFirst, rowsSecond) {
			t.Fatalf("non-deterministic tokenization:\nfirst=%v\nsecond=%v\ninput=%q", rowsFirst, rowsSecond, truncateFuzzInput(input))
		}
	})
}

// tokenizeToCompletion drains a Tokenizer over input to EOF (or a
// reported error), never letting a malformed input hang or panic.
func tokenizeToCompletion(t *testing.T, input string, cfg ParserConfig) [][]string {
	t.Helper()
	s := NewStream(strings.NewReader(input))
	tok := NewTokenizer(s, cfg)
	var rows [][]string
	for i := 0; i < 10000; i++ {
		row, err := tok.NextRow()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			return rows
		}
		rows = append(rows, append([]string(nil), row...))
	}
	t.Fatalf("tokenizer did not reach EOF within bound for input %q", truncateFuzzInput(input))
	return nil
}

func rowsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func truncateFuzzInput(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
