// Package mapper implements the seed-and-extend search (spec.md §4.F):
// for one read against one (conversion, strand) index, enumerate spaced-
// seed hash buckets at every offset, narrow each bucket by binary-search
// refinement over the tail care positions, verify surviving candidates
// against the reference, and fold them into a running best-match state.
package mapper

import (
	"golang.org/x/exp/slices"

	"github.com/acgtun/walt/internal/alphabet"
	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/hashtable"
	"github.com/acgtun/walt/internal/seed"
)

// DynamicRangeCap mirrors hashtable.ExtremalBucketCap: a bucket whose
// *refined* range at map time is still this large is skipped, the same
// repeat-cap the builder applies statically to raw bucket populations
// (spec.md §4.F, §9 "extremal-bucket duplication").
const DynamicRangeCap = hashtable.ExtremalBucketCap

// BestMatch is the running best-known alignment for one read (spec.md
// §3): Times==0 means unmapped, ==1 unique, >1 ambiguous.
type BestMatch struct {
	GenomePos uint32
	Times     int
	Strand    byte
	Mismatch  int
}

// NewBestMatch returns the per-read initial state: unmapped, mismatch
// floor at maxMismatches.
func NewBestMatch(maxMismatches int) BestMatch {
	return BestMatch{Strand: '+', Mismatch: maxMismatches}
}

// LoadedIndex bundles one (conversion, strand)'s genome and hash table —
// exactly what the driver keeps live across the two strand-index passes
// of a conversion (spec.md §4.G, §9 "buffer reuse").
type LoadedIndex struct {
	Genome *genome.Genome
	Table  *hashtable.HashTable
	Scheme *seed.Scheme
}

// Search runs spec.md §4.F against idx for one read, folding any
// improving candidate into best. agWildcard selects C->T (false) or G->A
// (true) conversion; strand tags which of the two passes this is
// ('+'=forward-strand index, '-'=reverse-strand index). stopOnExact
// preserves the spec's documented single-end/paired-end distinction
// (§9 Open Question): single-end callers pass true, so the offset loop
// halts the instant a zero-mismatch hit is found; a future paired-end
// consumer would pass false to keep exploring every offset.
func Search(orgRead []byte, idx *LoadedIndex, strand byte, agWildcard bool, stopOnExact bool, best *BestMatch) {
	read := append([]byte(nil), orgRead...)
	alphabet.Convert(read, agWildcard)

	L := len(read)
	seedLen := idx.Scheme.SeedLengthFor(L)
	tail := idx.Scheme.TailPositions(seedLen)

	for s := 0; s < seed.PatternLen; s++ {
		if stopOnExact && best.Mismatch == 0 && s > 0 {
			return
		}

		h, ok := idx.Scheme.Hash(read, s, agWildcard)
		if !ok {
			continue
		}
		lo, hi := idx.Table.Counter[h], idx.Table.Counter[h+1]
		if lo >= hi {
			continue
		}

		lo, hi, empty := refineBucket(idx.Table.Index, idx.Genome.Sequence, lo, hi, read, s, tail)
		if empty {
			continue
		}
		if int(hi-lo) > DynamicRangeCap {
			continue
		}

		for j := lo; j < hi; j++ {
			genomePos := int(idx.Table.Index[j]) - s
			if genomePos < 0 {
				continue
			}
			if !verify(idx.Genome, genomePos, L) {
				continue
			}
			mm, ok := countMismatches(idx.Genome.Sequence[genomePos:genomePos+L], read, best.Mismatch)
			if !ok {
				continue
			}
			update(best, uint32(genomePos), strand, mm)
		}
	}
}

// refineBucket narrows [lo,hi) over each tail care position in turn via
// lower/upper-bound binary search, exactly spec.md §4.F's LowerBound/
// UpperBound refinement. It returns empty=true the instant any step
// leaves no candidates.
func refineBucket(index []uint32, genomeSeq []byte, lo, hi uint32, read []byte, offset int, tail []int) (newLo, newHi uint32, empty bool) {
	compare := func(entry uint32, p int, target byte) int {
		b := genomeSeq[int(entry)+p]
		if b < target {
			return -1
		}
		if b > target {
			return 1
		}
		return 0
	}

	for _, p := range tail {
		want := read[offset+p]
		view := index[lo:hi]

		lb, _ := slices.BinarySearchFunc(view, want, func(e uint32, target byte) int {
			return compare(e, p, target)
		})
		l := lo + uint32(lb)

		ub, _ := slices.BinarySearchFunc(view, want, func(e uint32, target byte) int {
			c := compare(e, p, target)
			if c == 0 {
				return -1 // push past all equal entries to find the upper bound
			}
			return c
		})
		h := lo + uint32(ub)

		if l >= h {
			return 0, 0, true
		}
		lo, hi = l, h
	}
	return lo, hi, false
}

// verify rejects a candidate whose read footprint would cross a
// chromosome boundary (spec.md §4.F verification step).
func verify(g *genome.Genome, genomePos, length int) bool {
	if genomePos < 0 || genomePos+length > len(g.Sequence) {
		return false
	}
	chrom, err := g.ChromOf(genomePos)
	if err != nil {
		return false
	}
	return genomePos+length <= g.StartIndex[chrom+1]
}

// countMismatches counts differences between ref and read, short-
// circuiting as soon as the running count exceeds ceiling (spec.md §4.F).
// ok is false if the ceiling was exceeded (no usable count was produced).
func countMismatches(ref, read []byte, ceiling int) (int, bool) {
	mm := 0
	for i := range read {
		if ref[i] != read[i] {
			mm++
			if mm > ceiling {
				return mm, false
			}
		}
	}
	return mm, true
}

// update applies spec.md §4.F's BestMatch update rule: strict improvement
// replaces; the first hit of a still-unmapped read (Times==0) at the
// mismatch floor is recorded as unique, whatever its position; an exact
// tie at a new position marks ambiguous.
func update(best *BestMatch, genomePos uint32, strand byte, mismatch int) {
	switch {
	case mismatch < best.Mismatch, best.Times == 0 && mismatch == best.Mismatch:
		*best = BestMatch{GenomePos: genomePos, Times: 1, Strand: strand, Mismatch: mismatch}
	case mismatch == best.Mismatch && genomePos != best.GenomePos:
		best.Times++
		best.GenomePos = genomePos
		best.Strand = strand
	}
}
