// Package fastaio discovers and parses FASTA reference input: a single
// file or a directory of *.fa/*.fa.gz files, yielding the external
// collaborator interface spec.md §1 assumes the core core is handed —
// "parse FASTA directory into (names, lengths, concatenated sequence)".
package fastaio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/acgtun/walt/internal/genome"
)

// DiscoverFiles returns the FASTA files to read for path: path itself if
// it is a regular file, or every *.fa/*.fa.gz/*.fasta file in path
// (sorted for deterministic chromosome ordering) if it is a directory.
func DiscoverFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fastaio: stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("fastaio: read dir %s: %w", path, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".fa", ".fasta":
			files = append(files, filepath.Join(path, e.Name()))
		case ".gz":
			base := e.Name()[:len(e.Name())-len(".gz")]
			switch filepath.Ext(base) {
			case ".fa", ".fasta":
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("fastaio: no *.fa/*.fasta files found in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// LoadGenome discovers and reads every FASTA record under path (a file or
// a directory, per DiscoverFiles) and concatenates them into one
// genome.Genome, normalizing non-ACGT bases to N (spec.md §4.C).
func LoadGenome(path string) (*genome.Genome, error) {
	files, err := DiscoverFiles(path)
	if err != nil {
		return nil, err
	}

	var names []string
	var seqs [][]byte
	for _, file := range files {
		reader, err := fastx.NewReader(nil, file, "")
		if err != nil {
			return nil, fmt.Errorf("fastaio: open %s: %w", file, err)
		}
		for {
			record, err := reader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				reader.Close()
				return nil, fmt.Errorf("fastaio: read %s: %w", file, err)
			}
			names = append(names, string(record.Name))
			seqs = append(seqs, append([]byte(nil), record.Seq.Seq...))
		}
		reader.Close()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("fastaio: %s contains no records", path)
	}
	return genome.FromRecords(names, seqs)
}
