package rdtext

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// scanWordWidth is a CPU-informed scan width class: 32 on hosts with AVX2
// or ARM64 ASIMD, 8 otherwise. It is read only by refillChunkSize;
// indexByteFrom always scans one 8-byte word per iteration, whatever the
// host.
var scanWordWidth = func() int {
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		return 32
	}
	return 8
}()

// hasZeroByte bit-trick: returns a word with its high bit set in each byte
// position that equals zero, used to locate a target byte within a word
// after XOR-ing it out.
func hasZeroByte(w uint64) uint64 {
	return (w - 0x0101010101010101) & ^w & 0x8080808080808080
}

func broadcastByte(c byte) uint64 {
	return 0x0101010101010101 * uint64(c)
}

// indexByteFrom finds the first occurrence of c in s[from:], scanning a
// machine word at a time once the index is a multiple of 8. It returns
// the index within s, or -1 if c does not occur.
func indexByteFrom(s []byte, from int, c byte) int {
	n := len(s)
	i := from
	// Scalar warm-up until 8-byte aligned.
	for i < n && i%8 != 0 {
		if s[i] == c {
			return i
		}
		i++
	}
	target := broadcastByte(c)
	for ; i+8 <= n; i += 8 {
		w := leWord(s[i : i+8])
		if x := hasZeroByte(w ^ target); x != 0 {
			return i + bits.TrailingZeros64(x)/8
		}
	}
	for ; i < n; i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// indexAnyByteFrom finds the first occurrence of any byte in set within
// s[from:]. set must be small (the stream's skipOneLine passes two
// candidates, '\n' and '\r') so a linear probe per byte is cheaper than
// building a lookup table. A single-candidate set defers to the
// word-at-a-time indexByteFrom instead of scanning byte by byte.
func indexAnyByteFrom(s []byte, from int, set ...byte) int {
	if len(set) == 1 {
		return indexByteFrom(s, from, set[0])
	}
	n := len(s)
	for i := from; i < n; i++ {
		for _, c := range set {
			if s[i] == c {
				return i
			}
		}
	}
	return -1
}

func leWord(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// refillChunkSize returns the chunk size the stream should request from
// its source reader per refill, informed by scanWordWidth: wider-scanning
// hosts benefit from larger chunks since each refill amortises more
// per-call overhead relative to scan throughput.
func refillChunkSize() int {
	if scanWordWidth >= 32 {
		return defaultStreamBufferSize
	}
	return defaultStreamBufferSize / 2
}
