// Package driver implements the batch mapping driver (spec.md §4.G):
// per batch of reads, run both strand-index passes of the configured
// conversion, classify each read into unique/ambiguous/unmapped, and
// flip reverse-strand coordinates back onto the forward reference.
package driver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/acgtun/walt/internal/fastqio"
	"github.com/acgtun/walt/internal/genome"
	"github.com/acgtun/walt/internal/indexio"
	"github.com/acgtun/walt/internal/mapper"
	"github.com/acgtun/walt/internal/seed"
)

// Result is the classification and (if any) alignment for one read.
type Result struct {
	Read  fastqio.Record
	Best  mapper.BestMatch
	Chrom string // valid only when Best.Times >= 1
	Start int    // forward-strand, 0-based, valid only when Best.Times >= 1
	End   int    // forward-strand, exclusive, valid only when Best.Times >= 1
}

// Unique reports whether this read mapped to exactly one best position.
func (r Result) Unique() bool { return r.Best.Times == 1 }

// Ambiguous reports whether this read tied at >1 best positions.
func (r Result) Ambiguous() bool { return r.Best.Times > 1 }

// Unmapped reports whether this read had no alignment within the
// configured mismatch floor.
func (r Result) Unmapped() bool { return r.Best.Times == 0 }

// chromMeta is the small (never multi-gigabyte) per-genome bookkeeping
// needed to turn a BestMatch's GenomePos back into chromosome-relative,
// forward-strand coordinates. It is cached independently of the heavy
// Sequence/HashTable buffers so that computing coordinates for a
// forward-strand hit never needs the forward index to still be resident
// once the reverse-strand pass has taken its place.
type chromMeta struct {
	Names      []string
	Lengths    []int
	StartIndex []int
}

func metaOf(g *genome.Genome) chromMeta {
	return chromMeta{Names: g.Names, Lengths: g.Lengths, StartIndex: g.StartIndex}
}

func (m chromMeta) chromOf(pos int) (int, error) {
	return (&genome.Genome{StartIndex: m.StartIndex}).ChromOf(pos)
}

// Driver owns exactly one resident strand index for one conversion
// (AGWildcard fixed at construction) at a time, reloading it in place
// between the forward-strand and reverse-strand passes of a batch per
// spec.md §4.G/§5/§9: only one (counter, index, sequence) triple is ever
// live in memory, never both simultaneously.
type Driver struct {
	AGWildcard    bool
	MaxMismatches int

	base   string
	scheme *seed.Scheme
	cur    *mapper.LoadedIndex

	fwdMeta chromMeta
	revMeta chromMeta

	log *logrus.Logger
}

// Load reads the forward-strand index file for the configured conversion
// from base, leaving the driver positioned for the first of the two
// strand-index passes spec.md §4.G alternates between. The reverse-strand
// file is paged in later, in place, by the in-batch reload MapBatch
// performs — Load never holds both strands' buffers at once.
func Load(base string, agWildcard bool, k int, log *logrus.Logger) (*Driver, error) {
	scheme, err := seed.NewScheme(k)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	d := &Driver{AGWildcard: agWildcard, base: base, scheme: scheme, log: log}
	if err := d.loadStrand(false); err != nil {
		return nil, fmt.Errorf("driver: load forward index: %w", err)
	}
	return d, nil
}

// loadStrand pages in the forward (reverse=false) or reverse (reverse=
// true) strand file of the driver's base/conversion, replacing whatever
// LoadedIndex was previously resident in d.cur. d.cur is cleared before
// the file is read, so the old Genome/HashTable are already unreachable
// (and their backing arrays reclaimable) while the new ones are read,
// rather than the driver holding two copies live across the swap. The
// new index is read into freshly allocated buffers; the old buffers are
// not reused. If the read fails, d.cur stays nil.
func (d *Driver) loadStrand(reverse bool) error {
	strand := indexio.Strand{AGWildcard: d.AGWildcard, Reverse: reverse}
	path := indexio.StrandPath(d.base, strand)
	d.cur = nil
	g, ht, err := indexio.ReadStrand(path)
	if err != nil {
		return err
	}
	d.cur = &mapper.LoadedIndex{Genome: g, Table: ht, Scheme: d.scheme}
	if reverse {
		d.revMeta = metaOf(g)
	} else {
		d.fwdMeta = metaOf(g)
	}
	if d.log != nil {
		d.log.Infof("driver: loaded %s (%d positions)", path, ht.IndexSize())
	}
	return nil
}

// MapBatch runs spec.md §4.G over one batch: initialize each read's
// BestMatch, run the forward-index pass, reload the reverse-index file in
// place, run the reverse-index pass, and classify. Output order matches
// input order. The driver is left positioned on the forward strand again
// before returning, ready for the next batch's forward pass.
func (d *Driver) MapBatch(reads []fastqio.Record) ([]Result, error) {
	bests := make([]mapper.BestMatch, len(reads))
	for i := range bests {
		bests[i] = mapper.NewBestMatch(d.MaxMismatches)
	}

	for i, r := range reads {
		mapper.Search(r.Seq, d.cur, '+', d.AGWildcard, true, &bests[i])
	}

	if err := d.loadStrand(true); err != nil {
		return nil, fmt.Errorf("driver: reload reverse index: %w", err)
	}
	for i, r := range reads {
		mapper.Search(r.Seq, d.cur, '-', d.AGWildcard, true, &bests[i])
	}

	results := make([]Result, len(reads))
	for i, r := range reads {
		res := Result{Read: r, Best: bests[i]}
		if bests[i].Times >= 1 {
			res.Chrom, res.Start, res.End = d.forwardCoords(bests[i], len(r.Seq))
		}
		results[i] = res
	}

	if err := d.loadStrand(false); err != nil {
		return nil, fmt.Errorf("driver: reload forward index: %w", err)
	}
	return results, nil
}

// forwardCoords maps an internal BestMatch (whose GenomePos is always
// relative to whichever strand produced it) back to forward-strand,
// 0-based, end-exclusive coordinates, per spec.md §4.G's "reverse-strand
// coordinate flip" rule. It consults the cached chromMeta for whichever
// strand matched rather than the (possibly no-longer-resident) Genome.
func (d *Driver) forwardCoords(best mapper.BestMatch, L int) (chrom string, start, end int) {
	meta := d.fwdMeta
	if best.Strand != '+' {
		meta = d.revMeta
	}
	c, err := meta.chromOf(int(best.GenomePos))
	if err != nil {
		return "", 0, 0
	}
	relStart := int(best.GenomePos) - meta.StartIndex[c]
	if best.Strand == '+' {
		return meta.Names[c], relStart, relStart + L
	}
	chromLen := meta.Lengths[c]
	forwardStart := chromLen - relStart - L
	return meta.Names[c], forwardStart, forwardStart + L
}
