// Package genome implements the concatenated-sequence genome model:
// chromosome names/lengths/start offsets over one contiguous byte
// buffer, plus the chromosome-containment binary search every downstream
// component uses to map a flat genome position back to a chromosome.
package genome

import (
	"fmt"
	"sort"

	"github.com/acgtun/walt/internal/alphabet"
)

// Genome is an immutable bundle: one concatenated sequence buffer over
// {A,C,G,T,N} plus the per-chromosome bookkeeping needed to recover
// chromosome-relative coordinates.
type Genome struct {
	Sequence   []byte
	Names      []string
	Lengths    []int
	StartIndex []int // len(Names)+1, prefix sum of Lengths, trailing sentinel = sum of Lengths
}

// New builds a Genome from pre-concatenated parts, recomputing
// StartIndex as the prefix sum of lengths. It does not normalize or
// validate the alphabet of sequence; callers building from raw FASTA
// records should use FromRecords instead.
func New(names []string, lengths []int, sequence []byte) (*Genome, error) {
	if len(names) != len(lengths) {
		return nil, fmt.Errorf("genome: %d names but %d lengths", len(names), len(lengths))
	}
	total := 0
	for _, l := range lengths {
		total += l
	}
	if total > len(sequence) {
		return nil, fmt.Errorf("genome: lengths sum to %d but sequence is only %d bytes", total, len(sequence))
	}
	start := make([]int, len(lengths)+1)
	for i, l := range lengths {
		start[i+1] = start[i] + l
	}
	return &Genome{Sequence: sequence, Names: names, Lengths: lengths, StartIndex: start}, nil
}

// FromRecords concatenates FASTA records into one Genome, uppercasing
// and folding any non-ACGT byte to N (spec.md §4.C).
func FromRecords(names []string, seqs [][]byte) (*Genome, error) {
	total := 0
	for _, s := range seqs {
		total += len(s)
	}
	seq := make([]byte, 0, total)
	lengths := make([]int, len(seqs))
	for i, s := range seqs {
		lengths[i] = len(s)
		start := len(seq)
		seq = append(seq, s...)
		normalize(seq[start:])
	}
	return New(names, lengths, seq)
}

func normalize(s []byte) {
	for i, b := range s {
		switch b {
		case 'A', 'C', 'G', 'T':
		case 'a':
			s[i] = 'A'
		case 'c':
			s[i] = 'C'
		case 'g':
			s[i] = 'G'
		case 't':
			s[i] = 'T'
		default:
			s[i] = 'N'
		}
	}
}

// ChromOf returns the greatest i such that StartIndex[i] <= pos, i.e. the
// chromosome containing pos. pos must be within [0, StartIndex[len-1]),
// the sum of Lengths; any other pos is an error.
func (g *Genome) ChromOf(pos int) (int, error) {
	if pos < 0 || pos >= g.StartIndex[len(g.StartIndex)-1] {
		return -1, fmt.Errorf("genome: position %d out of range", pos)
	}
	i := sort.Search(len(g.StartIndex), func(i int) bool { return g.StartIndex[i] > pos }) - 1
	return i, nil
}

// ReverseComplement returns a new Genome representing the reverse strand:
// the whole concatenated buffer is reverse-complemented in one pass,
// which simultaneously reverses chromosome order and reverse-complements
// each chromosome's bases in place. StartIndex is recomputed from the
// reordered Lengths (spec.md §4.A).
func (g *Genome) ReverseComplement() *Genome {
	seq := alphabet.ReverseComplement(g.Sequence)
	n := len(g.Names)
	names := make([]string, n)
	lengths := make([]int, n)
	for i := 0; i < n; i++ {
		names[i] = g.Names[n-1-i]
		lengths[i] = g.Lengths[n-1-i]
	}
	start := make([]int, n+1)
	for i, l := range lengths {
		start[i+1] = start[i] + l
	}
	return &Genome{Sequence: seq, Names: names, Lengths: lengths, StartIndex: start}
}

// Convert applies the bisulfite conversion in place to Sequence.
func (g *Genome) Convert(agWildcard bool) {
	alphabet.Convert(g.Sequence, agWildcard)
}
