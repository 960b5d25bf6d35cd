package seed

import "testing"

func TestNewSchemeValidatesK(t *testing.T) {
	if _, err := NewScheme(7); err == nil {
		t.Fatalf("k=7 should be rejected")
	}
	if _, err := NewScheme(15); err == nil {
		t.Fatalf("k=15 should be rejected")
	}
	for k := MinPrefixWidth; k <= MaxPrefixWidth; k++ {
		if _, err := NewScheme(k); err != nil {
			t.Fatalf("k=%d should be accepted: %v", k, err)
		}
	}
}

func TestHashDeterministicAndBijective(t *testing.T) {
	s, err := NewScheme(8)
	if err != nil {
		t.Fatal(err)
	}
	read := make([]byte, PatternLen)
	for i := range read {
		read[i] = 'A'
	}
	seen := make(map[uint32]bool)
	bases := []byte{'A', 'C', 'G', 'T'}
	var walk func(i int)
	count := 0
	walk = func(i int) {
		if i == s.PrefixWidth {
			h, ok := s.Hash(read, 0, false)
			if !ok {
				t.Fatalf("hash should fit")
			}
			if seen[h] {
				t.Fatalf("hash collision for distinct prefix at iteration %d", count)
			}
			seen[h] = true
			count++
			return
		}
		for _, b := range bases {
			read[s.CarePositions[i]] = b
			walk(i + 1)
		}
	}
	walk(0)
	if count != 1<<uint(2*s.PrefixWidth) {
		t.Fatalf("expected %d distinct prefixes, saw %d", 1<<uint(2*s.PrefixWidth), count)
	}
}

func TestHashRejectsShortWindow(t *testing.T) {
	s, _ := NewScheme(10)
	read := make([]byte, PatternLen-1)
	if _, ok := s.Hash(read, 0, false); ok {
		t.Fatalf("hash should reject a window that does not fit")
	}
}

func TestSeedLengthForMonotoneInLength(t *testing.T) {
	s, _ := NewScheme(10)
	prev := s.SeedLengthFor(10)
	for _, L := range []int{20, 35, 60, 100} {
		cur := s.SeedLengthFor(L)
		if cur < prev {
			t.Fatalf("SeedLengthFor not monotone: L=%d gave %d < previous %d", L, cur, prev)
		}
		prev = cur
	}
}

func TestSeedLengthForDeterministic(t *testing.T) {
	s, _ := NewScheme(12)
	if s.SeedLengthFor(40) != s.SeedLengthFor(40) {
		t.Fatalf("SeedLengthFor must be a pure function of length")
	}
}

func TestTailPositionsWithinPrefixIsEmpty(t *testing.T) {
	s, _ := NewScheme(12)
	if len(s.TailPositions(s.PrefixWidth)) != 0 {
		t.Fatalf("seed length equal to prefix width should have no tail positions")
	}
}
