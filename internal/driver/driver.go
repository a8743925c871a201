// Package driver implements the recursive descent over a volume's
// directory tree: parse, decide whether to sort via internal/filter,
// order via internal/sortpolicy, write back, then recurse into every live
// subdirectory regardless of that directory's own filter verdict (spec.md
// §4.7).
package driver

import (
	"math/rand"
	"path"

	"github.com/scafiti/fatsort/internal/fatfs"
	"github.com/scafiti/fatsort/internal/filter"
	"github.com/scafiti/fatsort/internal/fserr"
	"github.com/scafiti/fatsort/internal/logger"
	"github.com/scafiti/fatsort/internal/options"
	"github.com/scafiti/fatsort/internal/sortpolicy"
)

// Driver walks a volume's directory tree once, sorting (or listing) each
// selected directory.
type Driver struct {
	vol     *fatfs.Volume
	policy  *sortpolicy.Policy
	filters options.Filters
	log     *logger.Logger
	rng     *rand.Rand

	// DirsVisited and DirsSorted are counted for the CLI's summary output.
	DirsVisited int
	DirsSorted  int
}

// New builds a Driver over an already-opened volume.
func New(vol *fatfs.Volume, opt options.SortPolicy, filters options.Filters, log *logger.Logger, rng *rand.Rand) *Driver {
	return &Driver{
		vol:     vol,
		policy:  sortpolicy.New(opt),
		filters: filters,
		log:     log,
		rng:     rng,
	}
}

// Run sorts the volume root and recurses into every live subdirectory.
// readOnly (spec.md §4.1 list-only / read-only-exclusive modes) suppresses
// the write step everywhere, not just at the root.
func (d *Driver) Run(readOnly bool) error {
	raw, chain, err := d.vol.RootDirBytes()
	if err != nil {
		return err
	}
	var rootOffset int64
	if chain == nil {
		rootOffset = int64(d.vol.Boot.RootDirSector) * int64(d.vol.Boot.BytesPerSector)
	}
	return d.visit(raw, chain, rootOffset, "/", readOnly)
}

// visit parses one directory's stream, orders it (or leaves it, per
// filter/readOnly), writes it back whenever it was selected for sorting,
// then recurses into every live subdirectory entry found. Decode warnings
// are logged and do not make visit fail.
func (d *Driver) visit(raw []byte, chain []uint32, rootOffset int64, dirPath string, readOnly bool) error {
	d.DirsVisited++

	records, warnErr := fatfs.ParseDirectoryStream(raw, d.vol.Decoder)
	if warnErr != nil && fserr.Is(warnErr, fserr.InvalidFormat) {
		// A directory stream that fails a hard on-disk invariant (e.g. an
		// orphan long-name run at end-of-stream) cannot be reliably sorted
		// or written back; abort this directory's parse instead of
		// proceeding over corrupt data (spec.md §3).
		return fserr.Wrap(fserr.InvalidFormat, "parsing directory "+dirPath, warnErr)
	}
	if warnErr != nil {
		d.log.Warnf("decode warnings in %s: %v", dirPath, warnErr)
	}

	shouldSort := !readOnly && filter.ShouldSort(d.filters, dirPath)

	ptrs := make([]*fatfs.LogicalRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}

	if shouldSort {
		d.order(ptrs)
		d.DirsSorted++

		reordered := make([]fatfs.LogicalRecord, len(ptrs))
		for i, p := range ptrs {
			reordered[i] = *p
		}
		if err := d.vol.WriteDirectory(reordered, chain, rootOffset); err != nil {
			return fserr.Wrap(fserr.IOError, "writing directory "+dirPath, err)
		}
		records = reordered
	}

	for i := range records {
		rec := records[i]
		if !isLiveSubdirectory(rec) {
			continue
		}
		childPath := path.Join(dirPath, rec.DisplayName())
		childRaw, childChain, err := d.vol.DirBytesForCluster(rec.Short.FirstCluster)
		if err != nil {
			return fserr.Wrap(fserr.IOError, "reading subdirectory "+childPath, err)
		}
		if err := d.visit(childRaw, childChain, 0, childPath, readOnly); err != nil {
			return err
		}
	}

	return nil
}

// order either shuffles ptrs in place (random mode) or stably sorts them
// under the compiled policy (spec.md §4.5).
func (d *Driver) order(ptrs []*fatfs.LogicalRecord) {
	if d.policy == nil {
		return
	}
	if d.policy.IsRandom() {
		sortpolicy.Shuffle(ptrs, d.rng)
		return
	}
	sortpolicy.Stable(ptrs, d.policy)
}

func isLiveSubdirectory(r fatfs.LogicalRecord) bool {
	if !r.Short.IsDirectory() || r.Short.IsVolumeLabel() || r.Short.IsDeleted() {
		return false
	}
	name := r.Short.ShortName()
	return name != "." && name != ".."
}
