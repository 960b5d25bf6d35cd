package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// referenceSeq is a fixed, non-repetitive 80bp sequence: long enough for
// one unambiguous seed window, free of the tandem-repeat self-similarity
// that would otherwise make the forward read "read1" match more than once.
const referenceSeq = "GACCTGTACGGATTCAAGCTGGACCTTAGGCATCGGTACCTTGACCGGTACCAAGGCTTGACCGGATCCTTGGACCAAGG"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

func TestMakedbThenWaltMapsUniqueRead(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.fa")
	writeFile(t, refPath, ">chr1\n"+referenceSeq+"\n")

	indexBase := filepath.Join(dir, "index.dbindex")
	var out, errBuf bytes.Buffer
	code := RunMakedb([]string{"-r", refPath, "-o", indexBase, "-k", "8", "-q"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("RunMakedb exit = %d, stderr = %s", code, errBuf.String())
	}

	readsPath := filepath.Join(dir, "reads.fastq")
	read := referenceSeq[:24]
	qual := strings.Repeat("I", len(read))
	writeFile(t, readsPath, "@read1\n"+read+"\n+\n"+qual+"\n")

	mappedPath := filepath.Join(dir, "mapped.txt")
	out.Reset()
	errBuf.Reset()
	code = RunWalt([]string{
		"-x", indexBase, "-r", readsPath, "-o", mappedPath,
		"-m", "2", "-n", "10", "-q",
	}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("RunWalt exit = %d, stderr = %s", code, errBuf.String())
	}

	got, err := os.ReadFile(mappedPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	line := strings.TrimRight(string(got), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != 8 {
		t.Fatalf("mapped output = %q, want 8 tab-separated fields", line)
	}
	if fields[0] != "chr1" || fields[1] != "0" || fields[2] != "24" {
		t.Fatalf("coords = %v, want (chr1,0,24)", fields[:3])
	}
	if fields[4] != "0" {
		t.Fatalf("mismatch = %s, want 0", fields[4])
	}
}

// TestMakedbThenWaltRoutesAmbiguousToMappedShape maps a read against a
// homopolymer reference where it ties for best at two positions, and
// checks the ambiguous sink carries the full 8-column mapped-record shape
// (chrom/start/end/name/mismatches/strand/seq/qual), not the 3-column
// unmapped shape — per `_examples/original_source/src/walt/mapping.cpp`'s
// OutputUniquelyAndAmbiguousMapped, which writes ambiguous hits through
// the same record writer as unique ones.
func TestMakedbThenWaltRoutesAmbiguousToMappedShape(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.fa")
	writeFile(t, refPath, ">chr1\n"+strings.Repeat("A", 64)+"\n")

	indexBase := filepath.Join(dir, "index.dbindex")
	var out, errBuf bytes.Buffer
	code := RunMakedb([]string{"-r", refPath, "-o", indexBase, "-k", "8", "-q"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("RunMakedb exit = %d, stderr = %s", code, errBuf.String())
	}

	readsPath := filepath.Join(dir, "reads.fastq")
	read := strings.Repeat("A", 24)
	qual := strings.Repeat("I", len(read))
	writeFile(t, readsPath, "@ambig\n"+read+"\n+\n"+qual+"\n")

	mappedPath := filepath.Join(dir, "mapped.txt")
	ambigPath := filepath.Join(dir, "ambiguous.txt")
	out.Reset()
	errBuf.Reset()
	code = RunWalt([]string{
		"-x", indexBase, "-r", readsPath, "-o", mappedPath,
		"--ambiguous", ambigPath,
		"-m", "0", "-n", "10", "-q",
	}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("RunWalt exit = %d, stderr = %s", code, errBuf.String())
	}

	mapped, err := os.ReadFile(mappedPath)
	if err != nil {
		t.Fatalf("ReadFile mapped: %v", err)
	}
	if len(mapped) != 0 {
		t.Fatalf("mapped sink = %q, want empty (read should be ambiguous, not unique)", mapped)
	}

	got, err := os.ReadFile(ambigPath)
	if err != nil {
		t.Fatalf("ReadFile ambiguous: %v", err)
	}
	line := strings.TrimRight(string(got), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != 8 {
		t.Fatalf("ambiguous output = %q, want 8 tab-separated fields (mapped-record shape)", line)
	}
	if fields[0] != "chr1" {
		t.Fatalf("chrom = %s, want chr1", fields[0])
	}
	if fields[3] != "ambig" {
		t.Fatalf("read name = %s, want ambig", fields[3])
	}
	if fields[4] != "0" {
		t.Fatalf("mismatch = %s, want 0", fields[4])
	}
}

func TestRunMakedbRejectsMissingReference(t *testing.T) {
	dir := t.TempDir()
	var out, errBuf bytes.Buffer
	code := RunMakedb([]string{"-o", filepath.Join(dir, "index.dbindex"), "-k", "8"}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("exit = %d, want 2 (config error) for missing --reference", code)
	}
}

func TestRunMakedbRejectsBadK(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.fa")
	writeFile(t, refPath, ">chr1\n"+referenceSeq+"\n")

	var out, errBuf bytes.Buffer
	code := RunMakedb([]string{"-r", refPath, "-o", filepath.Join(dir, "index.dbindex"), "-k", "20"}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("exit = %d, want 2 (config error) for k out of range", code)
	}
}
