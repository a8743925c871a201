package fatfs

import (
	"github.com/boljen/go-bitmap"
)

// Report is the result of a read-only information-mode walk over the FAT
// (spec.md §4.8).
type Report struct {
	Kind              Kind
	SectorSize        uint32
	ClusterSize       uint32
	TotalClusters     uint32
	UsedClusters      uint32
	BadClusters       uint32
	FreeClusters      uint32
	ChainLengths      map[uint32]int // populated only when verbose
}

// Inspect walks every cluster 2..count+1 once, classifying it as used, bad,
// or free, and optionally (verbose) computing each used cluster's full
// chain length (spec.md §4.8's acknowledged O(n^2) verbose submode).
//
// visited tracks, across the verbose pass, which clusters have already
// been accounted for as part of a chain walked from an earlier starting
// point, using go-bitmap the way dargueta-disko tracks allocation state —
// so a chain of length k is not re-walked k times from each of its
// interior clusters.
func (v *Volume) Inspect(verbose bool) (*Report, error) {
	t := v.Table()
	n := v.Boot.CountOfClusters

	r := &Report{
		Kind:        v.Boot.Kind,
		SectorSize:  v.Geometry.SectorSize,
		ClusterSize: v.Geometry.ClusterSize,
		TotalClusters: n,
	}
	if verbose {
		r.ChainLengths = make(map[uint32]int)
	}

	visited := bitmap.New(int(n) + 2)

	for c := uint32(2); c < n+2; c++ {
		entry, err := t.Entry(c)
		if err != nil {
			return nil, err
		}
		if t.IsFree(entry) {
			r.FreeClusters++
			continue
		}

		// Every nonzero entry counts as used, bad clusters included
		// (spec.md §4.8; original_source/fatsort.c:140-151 increments
		// usedClusters on every nonzero entry and badClusters
		// additionally when it is the bad sentinel).
		r.UsedClusters++
		if t.IsBad(entry) {
			r.BadClusters++
		}

		if !verbose || visited.Get(int(c)) {
			continue
		}
		chain, err := WalkChain(t, c, v.Geometry.MaxChainLength)
		if err != nil {
			continue
		}
		for _, cc := range chain {
			visited.Set(int(cc), true)
		}
		r.ChainLengths[c] = len(chain)
	}

	return r, nil
}
