// Package output implements the mapped/unmapped/ambiguous tab-separated
// record writers of spec.md §6: MappedWriter for the mapped and ambiguous
// sinks and AuxWriter for the unmapped sink, each wrapping a buffered
// io.Writer exactly as the teacher's internal/writers wraps bufio.Writer
// per output format.
package output

import (
	"bufio"
	"fmt"
	"io"
)

// MappedRecord is one emitted alignment: spec.md §6's
// "chrom\tstart\tend\tread_name\tmismatches\tstrand\tread_seq\tread_quality".
type MappedRecord struct {
	Chrom    string
	Start    int
	End      int
	ReadName string
	Mismatch int
	Strand   byte
	ReadSeq  string
	ReadQual string
}

// UnmappedRecord is one unmapped-sink record:
// "read_name\tread_seq\tread_quality".
type UnmappedRecord struct {
	ReadName string
	ReadSeq  string
	ReadQual string
}

// MappedWriter buffers and emits MappedRecords.
type MappedWriter struct{ w *bufio.Writer }

// NewMappedWriter wraps w in a buffered writer for mapped records.
func NewMappedWriter(w io.Writer) *MappedWriter { return &MappedWriter{w: bufio.NewWriter(w)} }

// Write emits one tab-separated mapped record line.
func (m *MappedWriter) Write(r MappedRecord) error {
	_, err := fmt.Fprintf(m.w, "%s\t%d\t%d\t%s\t%d\t%c\t%s\t%s\n",
		r.Chrom, r.Start, r.End, r.ReadName, r.Mismatch, r.Strand, r.ReadSeq, r.ReadQual)
	return err
}

// Flush flushes any buffered output.
func (m *MappedWriter) Flush() error { return m.w.Flush() }

// AuxWriter buffers and emits UnmappedRecords for the unmapped sink
// (spec.md §6). The ambiguous sink is not an AuxWriter consumer: per
// `_examples/original_source/src/walt/mapping.cpp`'s
// OutputUniquelyAndAmbiguousMapped, ambiguous reads carry the same
// chrom/start/end/mismatch/strand payload as a unique hit and are written
// through a MappedWriter instead, just to a different file.
type AuxWriter struct{ w *bufio.Writer }

// NewAuxWriter wraps w in a buffered writer for unmapped records.
func NewAuxWriter(w io.Writer) *AuxWriter { return &AuxWriter{w: bufio.NewWriter(w)} }

// Write emits one tab-separated unmapped record line.
func (a *AuxWriter) Write(r UnmappedRecord) error {
	_, err := fmt.Fprintf(a.w, "%s\t%s\t%s\n", r.ReadName, r.ReadSeq, r.ReadQual)
	return err
}

// Flush flushes any buffered output.
func (a *AuxWriter) Flush() error { return a.w.Flush() }
