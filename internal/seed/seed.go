// Package seed implements the spaced-seed scheme shared by the index
// builder and the mapper: the care-position bitmap, the k-mer hash over
// its prefix, and the read-length-dependent refinement schedule.
package seed

import (
	"fmt"

	"github.com/acgtun/walt/internal/alphabet"
)

// PatternLen is the total span, in read bases, of one spaced seed. It is
// also the number of distinct starting offsets a seed may take within a
// read (SEED_PATTERN_SHIFTS in spec terms).
const PatternLen = 24

// carePositions lists every "care" offset within [0, PatternLen) in
// ascending order: three consecutive care bases followed by one
// don't-care base, repeated six times. The first MaxPrefixWidth entries
// double as the hash prefix for any configured K in [MinPrefixWidth,
// MaxPrefixWidth]; the remainder are tail positions used only for
// in-bucket binary-search refinement.
var carePositions = buildCarePositions()

func buildCarePositions() []int {
	pos := make([]int, 0, PatternLen)
	for i := 0; i < PatternLen; i++ {
		if i%4 != 3 {
			pos = append(pos, i)
		}
	}
	return pos
}

// MinPrefixWidth and MaxPrefixWidth bound the configurable hash-table
// k-mer width (spec §6: k in [8,14]).
const (
	MinPrefixWidth = 8
	MaxPrefixWidth = 14
)

// Scheme is the immutable, process-wide spaced-seed configuration. A
// builder and a mapper sharing a Scheme built from the same K agree
// bit-for-bit on hash buckets and refinement order; this is the single
// most important invariant in the whole index format.
type Scheme struct {
	PrefixWidth   int   // K: number of care positions forming the hash prefix
	CarePositions []int // ascending offsets within [0, PatternLen)
}

// NewScheme validates k and returns the Scheme built from it.
func NewScheme(k int) (*Scheme, error) {
	if k < MinPrefixWidth || k > MaxPrefixWidth {
		return nil, fmt.Errorf("seed: k=%d out of range [%d,%d]", k, MinPrefixWidth, MaxPrefixWidth)
	}
	return &Scheme{PrefixWidth: k, CarePositions: carePositions}, nil
}

// NumBuckets returns 4^K, the size of the hash-table counter array minus
// its trailing sentinel.
func (s *Scheme) NumBuckets() int { return 1 << uint(2*s.PrefixWidth) }

// Hash packs the bases at read[offset+CarePositions[0..K-1]] into a dense
// [0, 4^K) integer, most-significant pair first. ok is false if the seed
// window does not fit within read starting at offset.
func (s *Scheme) Hash(read []byte, offset int, agWildcard bool) (h uint32, ok bool) {
	if offset < 0 || offset+PatternLen > len(read) {
		return 0, false
	}
	for i := 0; i < s.PrefixWidth; i++ {
		b := read[offset+s.CarePositions[i]]
		h = (h << 2) | uint32(alphabet.CodeForHash(b, agWildcard))
	}
	return h, true
}

// maxSeedLen is the number of care positions used by the longest
// refinement schedule (i.e. len(CarePositions)).
func maxSeedLen() int { return len(carePositions) }

// SeedLengthFor implements getSeedLength(L): a monotone, deterministic
// schedule selecting how many care positions (prefix + tail) the mapper
// exploits for a read of length L. Longer reads afford tighter buckets.
// The builder does not consult this: only the mapper's binary-search
// refinement depends on it (spec.md §4.B, Open Question resolved in
// DESIGN.md).
func (s *Scheme) SeedLengthFor(readLen int) int {
	max := maxSeedLen()
	switch {
	case readLen < 30:
		return s.PrefixWidth
	case readLen < 50:
		return min(max, s.PrefixWidth+4)
	case readLen < 80:
		return min(max, s.PrefixWidth+8)
	default:
		return max
	}
}

// TailPositions returns the care-position offsets beyond the hash prefix
// used for refinement when the seed length is seedLen (as produced by
// SeedLengthFor or, at build time, the full schedule).
func (s *Scheme) TailPositions(seedLen int) []int {
	if seedLen <= s.PrefixWidth {
		return nil
	}
	if seedLen > len(s.CarePositions) {
		seedLen = len(s.CarePositions)
	}
	return s.CarePositions[s.PrefixWidth:seedLen]
}

// AllTailPositions returns every tail position beyond the hash prefix,
// the comparator the builder sorts each bucket by (spec.md §4.D): the
// full schedule, not any one read's SeedLengthFor(L).
func (s *Scheme) AllTailPositions() []int {
	return s.CarePositions[s.PrefixWidth:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
