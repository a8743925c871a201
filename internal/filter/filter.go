// Package filter decides, for a given directory path encountered during
// recursion, whether the driver should rewrite that directory (spec.md
// §4.7). It never decides whether to *recurse into* a directory — the
// driver always recurses into every live subdirectory regardless of this
// verdict, since excluded children may themselves contain included
// descendants.
package filter

import (
	"path"
	"strings"

	"github.com/scafiti/fatsort/internal/options"
)

// ShouldSort reports whether dirPath (a "/"-joined path from the volume
// root, e.g. "/", "/music", "/music/rock") should be rewritten, under the
// filter family selected by f.Mode.
func ShouldSort(f options.Filters, dirPath string) bool {
	switch f.Mode {
	case options.FilterModeRegex:
		return shouldSortRegex(f, dirPath)
	case options.FilterModePath:
		return shouldSortPath(f, dirPath)
	default:
		return true
	}
}

func shouldSortRegex(f options.Filters, dirPath string) bool {
	for _, re := range f.ExcludeRegex {
		if re.MatchString(dirPath) {
			return false
		}
	}
	if len(f.IncludeRegex) == 0 {
		return true
	}
	for _, re := range f.IncludeRegex {
		if re.MatchString(dirPath) {
			return true
		}
	}
	return false
}

func shouldSortPath(f options.Filters, dirPath string) bool {
	if isExact(dirPath, f.ExcludeExact) || isDescendantOfAny(dirPath, f.ExcludeRecursive) {
		return false
	}

	hasIncludes := len(f.IncludeExact) > 0 || len(f.IncludeRecursive) > 0
	if !hasIncludes {
		return true
	}
	return isExact(dirPath, f.IncludeExact) || isDescendantOfAny(dirPath, f.IncludeRecursive)
}

func isExact(dirPath string, list []string) bool {
	clean := normalize(dirPath)
	for _, candidate := range list {
		if normalize(candidate) == clean {
			return true
		}
	}
	return false
}

// isDescendantOfAny reports whether dirPath is dirPath==ancestor or a
// strict descendant of any entry in ancestors.
func isDescendantOfAny(dirPath string, ancestors []string) bool {
	clean := normalize(dirPath)
	for _, a := range ancestors {
		anc := normalize(a)
		if clean == anc || strings.HasPrefix(clean, anc+"/") {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	return cleaned
}
