package blockdev

import (
	"runtime"
	"strings"
	"unicode"
)

// NormalizePath rewrites a bare Windows drive letter ("C:" or "C:\") into
// the raw volume path ("\\.\C:") Windows requires for direct block-device
// access, leaving every other path (and every path on a non-Windows host)
// untouched. Adapted from ostafen-digler's internal/disk volume-path
// normalizer, which Open now applies to every incoming device path.
func NormalizePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, "/", `\`)
	upper := strings.ToUpper(path)

	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}
	if len(upper) >= 2 && upper[1] == ':' && unicode.IsLetter(rune(upper[0])) {
		return `\\.\` + strings.ToUpper(string(upper[0])) + `:`
	}
	return path
}
