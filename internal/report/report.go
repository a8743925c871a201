// Package report renders internal/fatfs.Report (information mode) to
// human-readable text or CSV (spec.md §4.8, SPEC_FULL.md §6 --report-csv
// / --verbose-info).
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"

	"github.com/scafiti/fatsort/internal/fatfs"
)

// WriteText renders r as a human-readable summary, with humanize formatting
// byte quantities the way an operator reads them (e.g. "2.1 GB" instead of
// a raw byte count).
func WriteText(w io.Writer, r *fatfs.Report) error {
	totalBytes := uint64(r.TotalClusters) * uint64(r.ClusterSize)
	usedBytes := uint64(r.UsedClusters) * uint64(r.ClusterSize)
	freeBytes := uint64(r.FreeClusters) * uint64(r.ClusterSize)

	lines := []string{
		fmt.Sprintf("filesystem:      %s", r.Kind),
		fmt.Sprintf("sector size:     %d bytes", r.SectorSize),
		fmt.Sprintf("cluster size:    %s", humanize.Bytes(uint64(r.ClusterSize))),
		fmt.Sprintf("total clusters:  %d (%s)", r.TotalClusters, humanize.Bytes(totalBytes)),
		fmt.Sprintf("used clusters:   %d (%s)", r.UsedClusters, humanize.Bytes(usedBytes)),
		fmt.Sprintf("free clusters:   %d (%s)", r.FreeClusters, humanize.Bytes(freeBytes)),
		fmt.Sprintf("bad clusters:    %d", r.BadClusters),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if len(r.ChainLengths) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "chain lengths (start cluster -> length):")
	return writeChainTable(w, r.ChainLengths)
}

// chainRow is one row of the verbose per-cluster chain-length report,
// tagged for gocsv the way dargueta-disko tags its CSV export structs.
type chainRow struct {
	StartCluster uint32 `csv:"start_cluster"`
	Length       int    `csv:"length"`
}

func sortedChainRows(m map[uint32]int) []chainRow {
	rows := make([]chainRow, 0, len(m))
	for c, l := range m {
		rows = append(rows, chainRow{StartCluster: c, Length: l})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartCluster < rows[j].StartCluster })
	return rows
}

func writeChainTable(w io.Writer, m map[uint32]int) error {
	const colWidth = 14
	for _, row := range sortedChainRows(m) {
		if _, err := fmt.Fprintf(w, "%-*d %d\n", colWidth, row.StartCluster, row.Length); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV renders r's per-cluster chain-length rows as CSV via gocsv
// (--report-csv); empty (no verbose data) produces a header-only file.
func WriteCSV(w io.Writer, r *fatfs.Report) error {
	rows := sortedChainRows(r.ChainLengths)
	return gocsv.Marshal(rows, w)
}
