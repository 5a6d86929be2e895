package rdtext

import "testing"

func TestIndexByteFrom(t *testing.T) {
	cases := []struct {
		s    string
		from int
		c    byte
		want int
	}{
		{"", 0, 'a', -1},
		{"abc", 0, 'a', 0},
		{"abc", 0, 'c', 2},
		{"abc", 1, 'a', -1},
		{"0123456789abcdef", 0, 'f', 15},
		{"0123456789abcdef0123456789abcdef", 9, 'a', 10},
	}
	for _, c := range cases {
		if got := indexByteFrom([]byte(c.s), c.from, c.c); got != c.want {
			t.Errorf("indexByteFrom(%q, %d, %q) = %d, want %d", c.s, c.from, c.c, got, c.want)
		}
	}
}

func TestIndexAnyByteFrom(t *testing.T) {
	cases := []struct {
		s    string
		from int
		set  []byte
		want int
	}{
		{"a,b,c", 0, []byte{','}, 1},
		{"a,b;c", 0, []byte{',', ';'}, 1},
		{"abc", 0, []byte{'x', 'y'}, -1},
		{"a\nb\rc", 0, []byte{'\n', '\r'}, 1},
		{"a\rb\nc", 0, []byte{'\n', '\r'}, 1},
		{"no-hit", 2, []byte{'-'}, 2},
	}
	for _, c := range cases {
		if got := indexAnyByteFrom([]byte(c.s), c.from, c.set...); got != c.want {
			t.Errorf("indexAnyByteFrom(%q, %d, %v) = %d, want %d", c.s, c.from, c.set, got, c.want)
		}
	}
}

func TestRefillChunkSizeMatchesScanWordWidth(t *testing.T) {
	got := refillChunkSize()
	if scanWordWidth >= 32 {
		if got != defaultStreamBufferSize {
			t.Errorf("refillChunkSize() = %d, want %d for wide scan width", got, defaultStreamBufferSize)
		}
	} else if got != defaultStreamBufferSize/2 {
		t.Errorf("refillChunkSize() = %d, want %d for narrow scan width", got, defaultStreamBufferSize/2)
	}
}
