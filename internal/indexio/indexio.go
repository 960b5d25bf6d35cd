// Package indexio implements the binary codec for the five-file index set
// described in spec.md §4.E / §6: four per-strand payloads (B_CT00, B_CT01,
// B_GA10, B_GA11) and one shared header (B). Reader and writer are
// byte-exact: every integer is a fixed-width, little-endian
// encoding/binary value, and every file is written and read as a gzip
// stream (there is no uncompressed variant and no format sniffing).
package indexio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/hashtable"
)

// Strand identifies one of the four conversion/orientation combinations a
// built index covers.
type Strand struct {
	AGWildcard bool // false=CT, true=GA
	Reverse    bool // false=forward(0), true=reverse(1)
}

// strandSuffix returns the canonical 5-character suffix ("_CT00",
// "_CT01", "_GA10", "_GA11") for a strand.
func strandSuffix(s Strand) string {
	conv, convDigit := "CT", "0"
	if s.AGWildcard {
		conv, convDigit = "GA", "1"
	}
	strandDigit := "0"
	if s.Reverse {
		strandDigit = "1"
	}
	return "_" + conv + convDigit + strandDigit
}

// AllStrands lists the four strand files in the canonical build/load
// order: CT forward, CT reverse, GA forward, GA reverse.
var AllStrands = []Strand{
	{AGWildcard: false, Reverse: false},
	{AGWildcard: false, Reverse: true},
	{AGWildcard: true, Reverse: false},
	{AGWildcard: true, Reverse: true},
}

// StrandPath returns the on-disk path for one strand file given base B.
func StrandPath(base string, s Strand) string { return base + strandSuffix(s) }

const magic uint32 = 0x57414c54 // "WALT"

// WriteStrand writes one per-strand payload: genome metadata, the
// post-conversion sequence, the hash-table counter array, and the
// packed position index (spec.md §4.E).
func WriteStrand(path string, g *genome.Genome, ht *hashtable.HashTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("indexio: create %s: %w", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	bw := bufio.NewWriter(gz)

	if err := writeStrandBody(bw, g, ht); err != nil {
		return fmt.Errorf("indexio: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("indexio: flush %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("indexio: close gzip %s: %w", path, err)
	}
	return nil
}

func writeStrandBody(w io.Writer, g *genome.Genome, ht *hashtable.HashTable) error {
	if err := writeUint32(w, magic); err != nil {
		return err
	}
	if err := writeGenomeMeta(w, g); err != nil {
		return err
	}
	if err := writeBytes(w, g.Sequence); err != nil {
		return err
	}
	if err := writeUint32Slice(w, ht.Counter); err != nil {
		return err
	}
	indexSize := ht.IndexSize()
	if err := writeUint32(w, indexSize); err != nil {
		return err
	}
	// index_size already gives the length, so the entries follow unprefixed.
	buf := make([]byte, 4*len(ht.Index))
	for i, x := range ht.Index {
		binary.LittleEndian.PutUint32(buf[i*4:], x)
	}
	_, err := w.Write(buf)
	return err
}

// ReadStrand reads one per-strand payload written by WriteStrand.
func ReadStrand(path string) (*genome.Genome, *hashtable.HashTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("indexio: open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("indexio: gzip %s: %w", path, err)
	}
	defer gz.Close()
	br := bufio.NewReader(gz)

	g, ht, err := readStrandBody(br)
	if err != nil {
		return nil, nil, fmt.Errorf("indexio: read %s: %w", path, err)
	}
	return g, ht, nil
}

func readStrandBody(r io.Reader) (*genome.Genome, *hashtable.HashTable, error) {
	got, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	if got != magic {
		return nil, nil, fmt.Errorf("bad magic %#x, want %#x (truncated or foreign file)", got, magic)
	}
	names, lengths, err := readGenomeMeta(r)
	if err != nil {
		return nil, nil, err
	}
	total := 0
	for _, l := range lengths {
		total += l
	}
	seq, err := readBytes(r, total)
	if err != nil {
		return nil, nil, err
	}
	g, err := genome.New(names, lengths, seq)
	if err != nil {
		return nil, nil, err
	}

	counter, err := readUint32Slice(r)
	if err != nil {
		return nil, nil, err
	}
	indexSize, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	index, err := readUint32SliceN(r, int(indexSize))
	if err != nil {
		return nil, nil, err
	}
	return g, &hashtable.HashTable{Counter: counter, Index: index}, nil
}

// Header is the shared-metadata file (base name B): genome metadata once,
// plus the maximum index_size across the four strand files and K.
type Header struct {
	Names        []string
	Lengths      []int
	K            int
	MaxIndexSize uint32
}

// WriteHeader writes the index header file.
func WriteHeader(path string, h Header) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("indexio: create %s: %w", path, err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	bw := bufio.NewWriter(gz)

	if err := writeUint32(bw, magic); err != nil {
		return err
	}
	if err := writeStrings(bw, h.Names); err != nil {
		return err
	}
	if err := writeIntsAsUint32(bw, h.Lengths); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(h.K)); err != nil {
		return err
	}
	if err := writeUint32(bw, h.MaxIndexSize); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return gz.Close()
}

// ReadHeader reads the index header file.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("indexio: open %s: %w", path, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return Header{}, fmt.Errorf("indexio: gzip %s: %w", path, err)
	}
	defer gz.Close()
	br := bufio.NewReader(gz)

	got, err := readUint32(br)
	if err != nil {
		return Header{}, err
	}
	if got != magic {
		return Header{}, fmt.Errorf("bad magic %#x, want %#x", got, magic)
	}
	names, err := readStrings(br)
	if err != nil {
		return Header{}, err
	}
	lengths, err := readIntsFromUint32(br)
	if err != nil {
		return Header{}, err
	}
	k, err := readUint32(br)
	if err != nil {
		return Header{}, err
	}
	maxIdx, err := readUint32(br)
	if err != nil {
		return Header{}, err
	}
	return Header{Names: names, Lengths: lengths, K: int(k), MaxIndexSize: maxIdx}, nil
}

func writeGenomeMeta(w io.Writer, g *genome.Genome) error {
	if err := writeStrings(w, g.Names); err != nil {
		return err
	}
	return writeIntsAsUint32(w, g.Lengths)
}

func readGenomeMeta(r io.Reader) (names []string, lengths []int, err error) {
	names, err = readStrings(r)
	if err != nil {
		return nil, nil, err
	}
	lengths, err = readIntsFromUint32(r)
	if err != nil {
		return nil, nil, err
	}
	return names, lengths, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeUint32Slice(w io.Writer, v []uint32) error {
	if err := writeUint32(w, uint32(len(v))); err != nil {
		return err
	}
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], x)
	}
	_, err := w.Write(buf)
	return err
}

func readUint32Slice(r io.Reader) ([]uint32, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	return readUint32SliceN(r, int(n))
}

func readUint32SliceN(r io.Reader, n int) ([]uint32, error) {
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return out, nil
}

func writeIntsAsUint32(w io.Writer, v []int) error {
	u := make([]uint32, len(v))
	for i, x := range v {
		u[i] = uint32(x)
	}
	return writeUint32Slice(w, u)
}

func readIntsFromUint32(r io.Reader) ([]int, error) {
	u, err := readUint32Slice(r)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(u))
	for i, x := range u {
		out[i] = int(x)
	}
	return out, nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader, want int) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if int(n) != want {
		return nil, fmt.Errorf("sequence length %d does not match sum of chromosome lengths %d", n, want)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeStrings(w io.Writer, v []string) error {
	if err := writeUint32(w, uint32(len(v))); err != nil {
		return err
	}
	for _, s := range v {
		if err := writeUint32(w, uint32(len(s))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(r io.Reader) ([]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		l, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, l)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out[i] = string(buf)
	}
	return out, nil
}
