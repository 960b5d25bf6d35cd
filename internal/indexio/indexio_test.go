package indexio

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/hashtable"
	"github.com/acgtun/walt/internal/seed"
)

func TestStrandRoundTrip(t *testing.T) {
	g, err := genome.FromRecords([]string{"chr1", "chr2"}, [][]byte{
		[]byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT"),
		[]byte("TTTTGGGGCCCCAAAATTTTGGGGCCCCAAAATTTT"),
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	g.Convert(false)

	scheme, err := seed.NewScheme(8)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	ht, err := hashtable.Build(g, scheme, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "test.dbindex_CT00")
	if err := WriteStrand(path, g, ht); err != nil {
		t.Fatalf("WriteStrand: %v", err)
	}

	g2, ht2, err := ReadStrand(path)
	if err != nil {
		t.Fatalf("ReadStrand: %v", err)
	}

	if !reflect.DeepEqual(g.Names, g2.Names) {
		t.Errorf("Names mismatch: %v vs %v", g.Names, g2.Names)
	}
	if !reflect.DeepEqual(g.Lengths, g2.Lengths) {
		t.Errorf("Lengths mismatch: %v vs %v", g.Lengths, g2.Lengths)
	}
	if !reflect.DeepEqual(g.StartIndex, g2.StartIndex) {
		t.Errorf("StartIndex mismatch: %v vs %v", g.StartIndex, g2.StartIndex)
	}
	if string(g.Sequence) != string(g2.Sequence) {
		t.Errorf("Sequence mismatch: %q vs %q", g.Sequence, g2.Sequence)
	}
	if !reflect.DeepEqual(ht.Counter, ht2.Counter) {
		t.Errorf("Counter mismatch")
	}
	if !reflect.DeepEqual(ht.Index, ht2.Index) {
		t.Errorf("Index mismatch")
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.dbindex")
	h := Header{Names: []string{"chr1", "chr2"}, Lengths: []int{100, 200}, K: 12, MaxIndexSize: 4242}
	if err := WriteHeader(path, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if !reflect.DeepEqual(h, got) {
		t.Errorf("Header mismatch: %+v vs %+v", h, got)
	}
}

func TestReadStrandTruncatedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.dbindex_CT00")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := ReadStrand(path); err == nil {
		t.Fatalf("expected error reading empty/truncated index file")
	}
}

func TestStrandPathSuffixes(t *testing.T) {
	cases := map[Strand]string{
		{AGWildcard: false, Reverse: false}: "base_CT00",
		{AGWildcard: false, Reverse: true}:  "base_CT01",
		{AGWildcard: true, Reverse: false}:  "base_GA10",
		{AGWildcard: true, Reverse: true}:   "base_GA11",
	}
	for s, want := range cases {
		if got := StrandPath("base", s); got != want {
			t.Errorf("StrandPath(%+v) = %q, want %q", s, got, want)
		}
	}
}
