package sortpolicy

import (
	"math/rand"

	"github.com/scafiti/fatsort/internal/fatfs"
)

// Shuffle permutes records in place with Fisher-Yates, skipping a leading
// prefix of volume-label / "." / ".." records that must stay pinned at the
// front in their original relative order (spec.md §4.5 "Random shuffle",
// Scenario E). rng is injected so tests can seed a deterministic source;
// callers in production pass rand.New(rand.NewSource(seed)).
func Shuffle(records []*fatfs.LogicalRecord, rng *rand.Rand) {
	start := skipPrefixLen(records)
	for i := len(records) - 1; i > start; i-- {
		j := start + rng.Intn(i-start+1)
		records[i], records[j] = records[j], records[i]
	}
}

// skipPrefixLen returns the count of leading records that must not move:
// a volume label, then "." then "..", in whatever subset is present at
// the front.
func skipPrefixLen(records []*fatfs.LogicalRecord) int {
	i := 0
	if i < len(records) && records[i].Short.IsVolumeLabel() {
		i++
	}
	if i < len(records) && records[i].Short.ShortName() == "." {
		i++
	}
	if i < len(records) && records[i].Short.ShortName() == ".." {
		i++
	}
	return i
}
