// Package config holds the flat configuration struct shared by the
// makedb and walt command surfaces, plus the validation spec.md §7
// classifies as configuration errors.
package config

import (
	"fmt"
	"strings"
)

// RequiredOutputSuffix is the mandatory suffix on the index base name B
// (spec.md §6: "File-name suffix .dbindex is mandatory on B").
const RequiredOutputSuffix = ".dbindex"

// BuildConfig controls index construction (cmd/makedb).
type BuildConfig struct {
	ReferencePath string // FASTA file or directory
	OutputBase    string // base name B; suffix .dbindex is mandatory
	K             int    // k-mer prefix width, [8,14]
}

// Validate applies spec.md §6/§7's configuration-error checks.
func (c BuildConfig) Validate() error {
	if c.ReferencePath == "" {
		return fmt.Errorf("config: reference path is required")
	}
	if c.OutputBase == "" {
		return fmt.Errorf("config: output base name is required")
	}
	if !strings.HasSuffix(c.OutputBase, RequiredOutputSuffix) {
		return fmt.Errorf("config: output base name %q must end in %q", c.OutputBase, RequiredOutputSuffix)
	}
	if c.K < 8 || c.K > 14 {
		return fmt.Errorf("config: k=%d out of range [8,14]", c.K)
	}
	return nil
}

// MapConfig controls read mapping (cmd/walt).
type MapConfig struct {
	IndexBase       string // base name B used at build time
	ReadsPath       string // FASTQ input file
	OutputPath      string // mapped-record sink
	AmbiguousPath   string // optional ambiguous sink; "" disables
	UnmappedPath    string // optional unmapped sink; "" disables
	MaxMismatches   int
	NReadsToProcess int
	AGWildcard      bool // false=C->T, true=G->A
	AdapterClip     string
}

// Validate applies spec.md §6/§7's configuration-error checks.
func (c MapConfig) Validate() error {
	if c.IndexBase == "" {
		return fmt.Errorf("config: index base name is required")
	}
	if c.ReadsPath == "" {
		return fmt.Errorf("config: reads path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("config: output path is required")
	}
	if c.MaxMismatches < 0 {
		return fmt.Errorf("config: max-mismatches must be >= 0, got %d", c.MaxMismatches)
	}
	if c.NReadsToProcess <= 0 {
		return fmt.Errorf("config: n-reads-to-process must be > 0, got %d", c.NReadsToProcess)
	}
	return nil
}

// Ambiguous reports whether the ambiguous sink is enabled.
func (c MapConfig) Ambiguous() bool { return c.AmbiguousPath != "" }

// Unmapped reports whether the unmapped sink is enabled.
func (c MapConfig) Unmapped() bool { return c.UnmappedPath != "" }

// Exit codes, per spec.md §6/§7 and SPEC_FULL §6.
const (
	ExitOK            = 0
	ExitConfigError   = 2
	ExitIOError       = 3
	ExitAllocationErr = 4
)
