package app

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/acgtun/walt/internal/cmdutil"
	"github.com/acgtun/walt/internal/config"
	"github.com/acgtun/walt/internal/driver"
	"github.com/acgtun/walt/internal/fastqio"
	"github.com/acgtun/walt/internal/indexio"
	"github.com/acgtun/walt/internal/output"
)

// RunWalt parses argv as the mapper command line, loads the index built by
// RunMakedb, streams reads through the driver, and writes the configured
// output sinks. Returns a process exit code (spec.md §6/§7).
func RunWalt(argv []string, stdout, stderr io.Writer) int {
	log := newLogger(stderr)

	var cfg config.MapConfig
	var quiet bool

	cmd := &cobra.Command{
		Use:           "walt",
		Short:         "Map bisulfite-converted reads against a walt-makedb index",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				log.SetLevel(logrus.ErrorLevel)
			}
			return runMapping(cfg, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&cfg.IndexBase, "index", "x", "", "index base name written by walt-makedb (required)")
	flags.StringVarP(&cfg.ReadsPath, "reads", "r", "", "FASTQ reads file (required)")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "mapped-record output file (required)")
	flags.StringVar(&cfg.AmbiguousPath, "ambiguous", "", "optional ambiguous-read sink")
	flags.StringVar(&cfg.UnmappedPath, "unmapped", "", "optional unmapped-read sink")
	flags.IntVarP(&cfg.MaxMismatches, "mismatches", "m", 6, "maximum mismatches per alignment")
	flags.IntVarP(&cfg.NReadsToProcess, "batch-size", "n", 1000000, "reads processed per batch")
	flags.BoolVar(&cfg.AGWildcard, "ag-wildcard", false, "map the G->A (complementary) conversion instead of C->T")
	flags.StringVar(&cfg.AdapterClip, "clip", "", "trim an exact 3' adapter suffix before mapping")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress warning-level log output")

	cmd.SetArgs(argv)
	if err := cmd.Execute(); err != nil {
		return reportError(log, err)
	}
	return config.ExitOK
}

// sinkKind distinguishes which output stream a classified read belongs on.
type sinkKind int

const (
	sinkMapped sinkKind = iota
	sinkAmbiguous
	sinkUnmapped
)

type sinkRecord struct {
	kind   sinkKind
	mapped output.MappedRecord
	unmapd output.UnmappedRecord
}

func runMapping(cfg config.MapConfig, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return configError{err}
	}

	header, err := indexio.ReadHeader(cfg.IndexBase)
	if err != nil {
		return ioError{fmt.Errorf("walt: read index header: %w", err)}
	}

	d, err := driver.Load(cfg.IndexBase, cfg.AGWildcard, header.K, log)
	if err != nil {
		return allocationError{fmt.Errorf("walt: %w", err)}
	}
	d.MaxMismatches = cfg.MaxMismatches

	reader, err := fastqio.Open(cfg.ReadsPath)
	if err != nil {
		return ioError{fmt.Errorf("walt: %w", err)}
	}
	defer reader.Close()
	reader.Clip = cfg.AdapterClip

	mappedFile, err := os.Create(cfg.OutputPath)
	if err != nil {
		return ioError{fmt.Errorf("walt: %w", err)}
	}
	defer mappedFile.Close()
	mappedWriter := output.NewMappedWriter(mappedFile)
	defer mappedWriter.Flush()

	var ambigWriter *output.MappedWriter
	var unmappedWriter *output.AuxWriter
	if cfg.Ambiguous() {
		f, err := os.Create(cfg.AmbiguousPath)
		if err != nil {
			return ioError{fmt.Errorf("walt: %w", err)}
		}
		defer f.Close()
		ambigWriter = output.NewMappedWriter(f)
		defer ambigWriter.Flush()
	}
	if cfg.Unmapped() {
		f, err := os.Create(cfg.UnmappedPath)
		if err != nil {
			return ioError{fmt.Errorf("walt: %w", err)}
		}
		defer f.Close()
		unmappedWriter = output.NewAuxWriter(f)
		defer unmappedWriter.Flush()
	}

	total, err := cmdutil.RunMapping(reader, d, cfg.NReadsToProcess,
		func(res driver.Result) (bool, sinkRecord, error) {
			return true, classify(res), nil
		},
		func(rec sinkRecord) error {
			switch rec.kind {
			case sinkMapped:
				return mappedWriter.Write(rec.mapped)
			case sinkAmbiguous:
				if ambigWriter != nil {
					return ambigWriter.Write(rec.mapped)
				}
			case sinkUnmapped:
				if unmappedWriter != nil {
					return unmappedWriter.Write(rec.unmapd)
				}
			}
			return nil
		})
	if err != nil {
		return ioError{fmt.Errorf("walt: %w", err)}
	}
	log.Infof("walt: processed %d reads", total)
	return nil
}

// classify sorts a Result onto its output sink. Unique and ambiguous reads
// both carry a valid Chrom/Start/End/mismatch/strand (Best.Times >= 1) and
// share the full mapped-record shape; the source's
// OutputUniquelyAndAmbiguousMapped (src/walt/mapping.cpp) writes both
// through the same record writer, so only the destination file differs,
// never the column layout.
func classify(res driver.Result) sinkRecord {
	switch {
	case res.Unique():
		return sinkRecord{kind: sinkMapped, mapped: mappedRecord(res)}
	case res.Ambiguous():
		return sinkRecord{kind: sinkAmbiguous, mapped: mappedRecord(res)}
	default:
		return sinkRecord{kind: sinkUnmapped, unmapd: output.UnmappedRecord{
			ReadName: res.Read.Name,
			ReadSeq:  string(res.Read.Seq),
			ReadQual: string(res.Read.Qual),
		}}
	}
}

func mappedRecord(res driver.Result) output.MappedRecord {
	return output.MappedRecord{
		Chrom:    res.Chrom,
		Start:    res.Start,
		End:      res.End,
		ReadName: res.Read.Name,
		Mismatch: res.Best.Mismatch,
		Strand:   res.Best.Strand,
		ReadSeq:  string(res.Read.Seq),
		ReadQual: string(res.Read.Qual),
	}
}
