package hashtable

import (
	"math/rand"
	"testing"

	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/seed"
)

func randomSeq(n int, r *rand.Rand) []byte {
	bases := []byte{'A', 'C', 'G', 'T'}
	s := make([]byte, n)
	for i := range s {
		s[i] = bases[r.Intn(4)]
	}
	return s
}

func buildTestIndex(t *testing.T, n, k int) (*genome.Genome, *seed.Scheme, *HashTable) {
	t.Helper()
	r := rand.New(rand.NewSource(42))
	g, err := genome.New([]string{"chr1"}, []int{n}, randomSeq(n, r))
	if err != nil {
		t.Fatal(err)
	}
	s, err := seed.NewScheme(k)
	if err != nil {
		t.Fatal(err)
	}
	ht, err := Build(g, s, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g, s, ht
}

func TestCounterPrefixSum(t *testing.T) {
	_, s, ht := buildTestIndex(t, 2000, 8)
	numBuckets := s.NumBuckets()
	for h := 0; h < numBuckets; h++ {
		if ht.Counter[h+1] < ht.Counter[h] {
			t.Fatalf("counter not monotone at bucket %d: %d > %d", h, ht.Counter[h], ht.Counter[h+1])
		}
	}
	if ht.Counter[numBuckets] != ht.IndexSize() {
		t.Fatalf("counter[4^K] = %d, IndexSize() = %d", ht.Counter[numBuckets], ht.IndexSize())
	}
	if int(ht.IndexSize()) != len(ht.Index) {
		t.Fatalf("IndexSize %d != len(Index) %d", ht.IndexSize(), len(ht.Index))
	}
}

func TestBucketSortedness(t *testing.T) {
	g, s, ht := buildTestIndex(t, 2000, 8)
	tail := s.AllTailPositions()
	numBuckets := s.NumBuckets()
	cmpTail := func(a, b uint32) int {
		for _, p := range tail {
			ba, bb := g.Sequence[int(a)+p], g.Sequence[int(b)+p]
			if ba != bb {
				if ba < bb {
					return -1
				}
				return 1
			}
		}
		return 0
	}
	for h := 0; h < numBuckets; h++ {
		lo, hi := ht.Counter[h], ht.Counter[h+1]
		for i := int(lo); i+1 < int(hi); i++ {
			if cmpTail(ht.Index[i], ht.Index[i+1]) > 0 {
				t.Fatalf("bucket %d not sorted at offset %d", h, i)
			}
		}
	}
}

func TestExtremalBucketsAreEmptied(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	// A homopolymer genome drives every seed into one bucket; it must
	// exceed ExtremalBucketCap and be dropped.
	n := ExtremalBucketCap*1 + 5000
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = 'A'
	}
	_ = r
	g, err := genome.New([]string{"chr1"}, []int{n}, seq)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := seed.NewScheme(8)
	ht, err := Build(g, s, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := s.Hash(seq, 0, false)
	if !ht.ExtremalBuckets[h] {
		t.Fatalf("homopolymer bucket should be marked extremal")
	}
	if ht.Counter[h+1] != ht.Counter[h] {
		t.Fatalf("extremal bucket should be emptied, got [%d,%d)", ht.Counter[h], ht.Counter[h+1])
	}
}
