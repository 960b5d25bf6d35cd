// Package hashtable implements the three-pass hash-table-plus-sorted-
// suffix builder (spec.md §4.D): count, extremal filter, prefix-sum,
// scatter, and per-bucket sort by tail care positions.
package hashtable

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/seed"
)

// ExtremalBucketCap is the fixed threshold above which a bucket's
// population is dropped from Index entirely at build time (spec.md §4.D
// step 2), trading recall for bounded per-read lookup cost.
const ExtremalBucketCap = 50000

// HashTable is the on-disk-shaped index: a prefix-sum Counter over 4^K+1
// buckets and a packed Index of genome positions, contiguous per bucket
// and sorted within each bucket by the tail care-position bytes.
type HashTable struct {
	Counter         []uint32
	Index           []uint32
	ExtremalBuckets map[uint32]bool
}

// Build runs the full builder pipeline over a post-conversion genome.
// The genome passed in must already have had alphabet.Convert applied.
func Build(g *genome.Genome, scheme *seed.Scheme, agWildcard bool, log *logrus.Logger) (*HashTable, error) {
	numBuckets := scheme.NumBuckets()
	counter := make([]uint32, numBuckets+1)

	// Pass 1: count. A position qualifies only if its seed window fits
	// entirely within one chromosome (does not cross a boundary).
	positions, hashes := collectSeedPositions(g, scheme, agWildcard)
	for _, h := range hashes {
		counter[h+1]++
	}

	// Pass 2: extremal filter.
	extremal := make(map[uint32]bool)
	for h := uint32(0); h < uint32(numBuckets); h++ {
		if counter[h+1] > ExtremalBucketCap {
			extremal[h] = true
			counter[h+1] = 0
		}
	}
	if log != nil && len(extremal) > 0 {
		log.Warnf("hashtable: %d buckets exceeded the %d-position cap and were dropped", len(extremal), ExtremalBucketCap)
	}

	// Pass 3: prefix sum.
	for h := 0; h < numBuckets; h++ {
		counter[h+1] += counter[h]
	}
	indexSize := counter[numBuckets]

	// Pass 4: scatter, using a running per-bucket write pointer seeded
	// from the prefix-summed counter (a copy, since counter itself is
	// the final boundary array).
	index := make([]uint32, indexSize)
	ptr := append([]uint32(nil), counter[:numBuckets]...)
	for i, h := range hashes {
		if extremal[h] {
			continue
		}
		index[ptr[h]] = uint32(positions[i])
		ptr[h]++
	}

	ht := &HashTable{Counter: counter, Index: index, ExtremalBuckets: extremal}
	ht.sortBuckets(g, scheme)
	return ht, nil
}

// collectSeedPositions walks every genome position whose seed window
// fits within one chromosome and returns its position alongside the
// hash-prefix bucket it falls into.
func collectSeedPositions(g *genome.Genome, scheme *seed.Scheme, agWildcard bool) (positions []int, hashes []uint32) {
	n := len(g.Sequence)
	for chrom := 0; chrom < len(g.Lengths); chrom++ {
		chromEnd := g.StartIndex[chrom+1]
		limit := chromEnd - seed.PatternLen
		for p := g.StartIndex[chrom]; p <= limit && p+seed.PatternLen <= n; p++ {
			h, ok := scheme.Hash(g.Sequence, p, agWildcard)
			if !ok {
				continue
			}
			positions = append(positions, p)
			hashes = append(hashes, h)
		}
	}
	return positions, hashes
}

// sortBuckets orders each bucket's entries lexicographically by the
// bytes at the full tail-care-position schedule (spec.md §4.D step 5).
// Sorting by the complete schedule, not any one read's SeedLengthFor(L),
// is what makes the mapper's incremental binary-search refinement valid
// regardless of how many tail positions a given read's length exploits.
func (h *HashTable) sortBuckets(g *genome.Genome, scheme *seed.Scheme) {
	tail := scheme.AllTailPositions()
	numBuckets := len(h.Counter) - 1
	for bucket := 0; bucket < numBuckets; bucket++ {
		lo, hi := h.Counter[bucket], h.Counter[bucket+1]
		if hi-lo < 2 {
			continue
		}
		view := h.Index[lo:hi]
		slices.SortFunc(view, func(a, b uint32) int {
			for _, p := range tail {
				ba, bb := g.Sequence[int(a)+p], g.Sequence[int(b)+p]
				if ba != bb {
					if ba < bb {
						return -1
					}
					return 1
				}
			}
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
			return 0
		})
	}
}

// IndexSize returns the number of retained positions (counter[4^K]).
func (h *HashTable) IndexSize() uint32 { return h.Counter[len(h.Counter)-1] }
