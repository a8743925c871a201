package sortpolicy

// compareNatural implements "natural order": runs of ASCII digits compare
// as numbers, everything else compares byte-for-byte (spec.md §4.5 rule 7,
// Scenario B: "track1.mp3" < "track2.mp3" < "track10.mp3").
//
// No example or dependency in the retrieval pack implements natural-order
// string comparison, and it is a handful of lines of straightforward
// run-splitting logic with no API surface worth a dependency — so it is
// hand-rolled on the standard library rather than imported.
func compareNatural(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			na, ni := scanNumber(a, i)
			nb, nj := scanNumber(b, j)
			if c := compareDigitRuns(na, nb); c != 0 {
				return c
			}
			i, j = ni, nj
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scanNumber returns the run of digits starting at i and the index past it.
func scanNumber(s string, i int) (string, int) {
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[start:i], i
}

// compareDigitRuns compares two digit runs numerically, ignoring leading
// zeros entirely: "007" and "7" compare equal.
func compareDigitRuns(a, b string) int {
	a = trimLeadingZeros(a)
	b = trimLeadingZeros(b)
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
