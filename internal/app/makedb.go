// Package app wires the cobra command surfaces for both binaries
// (cmd/makedb, cmd/walt) onto internal/config, internal/driver, and the
// builder packages, following the teacher's RunContext(argv, stdout,
// stderr) int shape so main() stays a one-line buffer-then-exit wrapper
// (KPU-AGC-ipcr/cmd/ipcr/main.go).
package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/acgtun/walt/internal/config"
	"github.com/acgtun/walt/internal/fastaio"
	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/hashtable"
	"github.com/acgtun/walt/internal/indexio"
	"github.com/acgtun/walt/internal/seed"
)

// RunMakedb parses argv as the makedb command line, builds the four-strand
// index plus header for cfg.ReferencePath, and returns a process exit code
// (spec.md §6/§7: 0 ok, 2 config error, 3 I/O error, 4 allocation error).
func RunMakedb(argv []string, stdout, stderr io.Writer) int {
	log := newLogger(stderr)

	var cfg config.BuildConfig
	var quiet bool

	cmd := &cobra.Command{
		Use:           "walt-makedb",
		Short:         "Build the spaced-seed bisulfite index from a FASTA reference",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				log.SetLevel(logrus.ErrorLevel)
			}
			return buildIndex(cfg, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&cfg.ReferencePath, "reference", "r", "", "reference FASTA file or directory (required)")
	flags.StringVarP(&cfg.OutputBase, "output", "o", "", "output index base name (required)")
	flags.IntVarP(&cfg.K, "kmer-size", "k", 12, "spaced-seed prefix width, 8-14")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress warning-level log output")

	cmd.SetArgs(argv)
	if err := cmd.Execute(); err != nil {
		return reportError(log, err)
	}
	return config.ExitOK
}

// buildIndex runs the four-strand build-and-write pipeline: CT forward, CT
// reverse, GA forward, GA reverse, then the shared header recording K and
// the largest per-strand index size (spec.md §4.D/§4.E).
func buildIndex(cfg config.BuildConfig, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return configError{err}
	}

	base, err := fastaio.LoadGenome(cfg.ReferencePath)
	if err != nil {
		return ioError{fmt.Errorf("makedb: %w", err)}
	}
	rev := base.ReverseComplement()

	scheme, err := seed.NewScheme(cfg.K)
	if err != nil {
		return configError{err}
	}

	var maxIndexSize uint32
	for _, strand := range indexio.AllStrands {
		src := base
		if strand.Reverse {
			src = rev
		}
		g := cloneGenome(src)
		g.Convert(strand.AGWildcard)

		ht, err := hashtable.Build(g, scheme, strand.AGWildcard, log)
		if err != nil {
			return allocationError{fmt.Errorf("makedb: build index: %w", err)}
		}
		if size := ht.IndexSize(); size > maxIndexSize {
			maxIndexSize = size
		}

		path := indexio.StrandPath(cfg.OutputBase, strand)
		if err := indexio.WriteStrand(path, g, ht); err != nil {
			return ioError{fmt.Errorf("makedb: %w", err)}
		}
		log.Infof("makedb: wrote %s (%d positions)", path, ht.IndexSize())
	}

	header := indexio.Header{Names: base.Names, Lengths: base.Lengths, K: cfg.K, MaxIndexSize: maxIndexSize}
	if err := indexio.WriteHeader(cfg.OutputBase, header); err != nil {
		return ioError{fmt.Errorf("makedb: %w", err)}
	}
	return nil
}

// cloneGenome copies g's sequence buffer so each of the four strand builds
// can apply its own in-place Convert without the others seeing it.
func cloneGenome(g *genome.Genome) *genome.Genome {
	seq := append([]byte(nil), g.Sequence...)
	clone, _ := genome.New(g.Names, g.Lengths, seq)
	return clone
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}

// configError/ioError/allocationError tag an error with the exit code it
// should map to (spec.md §6/§7), mirroring the teacher's classification of
// flag/config errors versus I/O errors in internal/app.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

type ioError struct{ err error }

func (e ioError) Error() string { return e.err.Error() }
func (e ioError) Unwrap() error { return e.err }

type allocationError struct{ err error }

func (e allocationError) Error() string { return e.err.Error() }
func (e allocationError) Unwrap() error { return e.err }

func reportError(log *logrus.Logger, err error) int {
	log.Error(err)
	switch err.(type) {
	case configError:
		return config.ExitConfigError
	case ioError:
		return config.ExitIOError
	case allocationError:
		return config.ExitAllocationErr
	default:
		return config.ExitConfigError
	}
}
