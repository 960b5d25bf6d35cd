// Package fastqio implements the FASTQ batch reader external collaborator
// spec.md §1 treats as a black box: "read next batch of N FASTQ records",
// each a name/sequence/quality triple, with only the first
// whitespace-delimited token of the name line retained (spec.md §6).
package fastqio

import (
	"fmt"
	"io"

	"github.com/shenwei356/bio/seqio/fastx"
)

// Record is one read: its retained name token, its raw sequence, and its
// raw quality string (untouched — conversion is applied by the mapper,
// not here).
type Record struct {
	Name string
	Seq  []byte
	Qual []byte
}

// Len returns the read length in bases.
func (r Record) Len() int { return len(r.Seq) }

// Reader streams FASTQ records from one file, optionally clipping a fixed
// 3' adapter suffix before the record is handed to a caller (an optional
// preprocessing step confirmed by original_source/src/walt/mapping.cpp's
// --clip flag, supplemented per SPEC_FULL §10; off when Clip is empty).
type Reader struct {
	Clip string

	file   string
	reader *fastx.Reader
}

// Open opens path for FASTQ reading.
func Open(path string) (*Reader, error) {
	fr, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return nil, fmt.Errorf("fastqio: open %s: %w", path, err)
	}
	return &Reader{file: path, reader: fr}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	r.reader.Close()
	return nil
}

// NextBatch reads up to n records. A short read (len(batch) < n) signals
// EOF to the caller per spec.md §4.G's "driver exits when a batch returns
// fewer than n_reads_to_process" rule; NextBatch itself never reports
// io.EOF as an error.
func (r *Reader) NextBatch(n int) ([]Record, error) {
	batch := make([]Record, 0, n)
	for len(batch) < n {
		rec, err := r.reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return batch, fmt.Errorf("fastqio: read %s: %w", r.file, err)
		}
		name := firstToken(string(rec.Name))
		seq := append([]byte(nil), rec.Seq.Seq...)
		qual := append([]byte(nil), rec.Seq.Qual...)
		if r.Clip != "" {
			seq, qual = clipAdapter(seq, qual, r.Clip)
		}
		batch = append(batch, Record{Name: name, Seq: seq, Qual: qual})
	}
	return batch, nil
}

func firstToken(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			return s[:i]
		}
	}
	return s
}

// clipAdapter trims an exact trailing adapter match from the 3' end of
// seq, shortening qual identically so the two stay aligned.
func clipAdapter(seq, qual []byte, adapter string) ([]byte, []byte) {
	a := []byte(adapter)
	if len(a) == 0 || len(a) > len(seq) {
		return seq, qual
	}
	tail := seq[len(seq)-len(a):]
	for i := range a {
		if tail[i] != a[i] {
			return seq, qual
		}
	}
	cut := len(seq) - len(a)
	return seq[:cut], qual[:cut]
}
