package fatfs

import (
	"github.com/scafiti/fatsort/internal/fserr"
)

// WalkChain follows the cluster chain starting at first, returning the
// ordered list of cluster numbers through end-of-chain (spec.md §4.3). A
// chain that revisits a cluster (a FAT loop) or that exceeds maxLen — the
// volume's derived Geometry.MaxChainLength (spec.md §3 "Derived geometry"),
// not an arbitrary constant — is reported as fserr.FATMismatch rather than
// looping forever.
func WalkChain(t *Table, first uint32, maxLen uint32) ([]uint32, error) {
	if first == 0 {
		return nil, nil
	}
	visited := make(map[uint32]bool)
	var chain []uint32

	cur := first
	for {
		if t.IsFree(cur) || t.IsBad(cur) {
			return nil, fserr.New(fserr.FATMismatch, "cluster chain references a free or bad cluster")
		}
		if visited[cur] {
			return nil, fserr.New(fserr.FATMismatch, "cluster chain loops back on itself")
		}
		visited[cur] = true
		chain = append(chain, cur)
		if uint32(len(chain)) > maxLen {
			return nil, fserr.New(fserr.FATMismatch, "cluster chain exceeds the volume's maximum chain length, FAT likely corrupt")
		}

		next, err := t.Entry(cur)
		if err != nil {
			return nil, err
		}
		if t.IsEOC(next) {
			break
		}
		cur = next
	}
	return chain, nil
}

// ClusterToSector converts a cluster number to its first absolute sector,
// given the volume's first data sector and sectors-per-cluster (spec.md
// §3 "Derived geometry").
func ClusterToSector(bs *BootSector, cluster uint32) uint32 {
	return bs.FirstDataSector + (cluster-2)*uint32(bs.SectorsPerCluster)
}
