package sortpolicy

import (
	"sort"

	"github.com/scafiti/fatsort/internal/fatfs"
)

// Stable orders records in place under p, preserving insertion order for
// records the comparator treats as equal (needed so rules 4 (list-only)
// and ties under rule 7 don't reshuffle unrelated entries).
func Stable(records []*fatfs.LogicalRecord, p *Policy) {
	sort.SliceStable(records, func(i, j int) bool {
		return p.Less(records[i], records[j])
	})
}
