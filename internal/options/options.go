// Package options holds the immutable configuration the core consumes:
// SortPolicy and Filters, built once from parsed CLI flags and passed by
// reference from there on. SPEC_FULL.md §9 rejects the original's global
// option bag in favor of this explicit threading.
package options

import (
	"regexp"

	"github.com/scafiti/fatsort/internal/fserr"
)

// DirBias controls rule 5 of the ordering engine (directories vs. files).
type DirBias int

const (
	// DirsFirst sorts every directory before every file. The default.
	DirsFirst DirBias = iota
	// FilesFirst sorts every file before every directory.
	FilesFirst
	// Mixed applies no directory/file bias at all.
	Mixed
)

// ParseDirBias maps the -o flag's {d,f,a} values to a DirBias.
func ParseDirBias(s string) (DirBias, error) {
	switch s {
	case "d", "":
		return DirsFirst, nil
	case "f":
		return FilesFirst, nil
	case "a":
		return Mixed, nil
	default:
		return DirsFirst, fserr.New(fserr.OptionConflict, "order flag -o must be one of d, f, a, got "+s)
	}
}

// SortPolicy captures every ordering-affecting flag from SPEC_FULL.md §6.
// It is built once per run and passed by const reference through the
// ordering engine; nothing here is mutated after construction.
type SortPolicy struct {
	ASCII      bool
	IgnoreCase bool
	Natural    bool
	Reverse    bool
	Random     bool
	ByModTime  bool
	ListOnly   bool
	DirBias    DirBias
	Prefixes   []string
	Locale     string
}

// FilterMode selects which of the two mutually exclusive filter families
// is active (spec.md §4.7).
type FilterMode int

const (
	// FilterModeNone sorts every directory reached by recursion.
	FilterModeNone FilterMode = iota
	// FilterModePath selects directories by exact/recursive path lists.
	FilterModePath
	// FilterModeRegex selects directories by include/exclude regexes.
	FilterModeRegex
)

// Filters holds both filter families; only the one matching Mode is
// populated by the CLI layer.
type Filters struct {
	Mode FilterMode

	IncludeExact     []string
	IncludeRecursive []string
	ExcludeExact     []string
	ExcludeRecursive []string

	IncludeRegex []*regexp.Regexp
	ExcludeRegex []*regexp.Regexp
}

// NewPathFilters builds a FilterModePath Filters value.
func NewPathFilters(includeExact, includeRecursive, excludeExact, excludeRecursive []string) Filters {
	return Filters{
		Mode:             FilterModePath,
		IncludeExact:     includeExact,
		IncludeRecursive: includeRecursive,
		ExcludeExact:     excludeExact,
		ExcludeRecursive: excludeRecursive,
	}
}

// NewRegexFilters compiles the include/exclude regex lists for
// FilterModeRegex. A bad pattern is an OptionConflict, matching the other
// filter-mode validation failures in SPEC_FULL.md §6.
func NewRegexFilters(include, exclude []string) (Filters, error) {
	f := Filters{Mode: FilterModeRegex}
	for _, pat := range include {
		re, err := regexp.Compile(pat)
		if err != nil {
			return Filters{}, fserr.Wrap(fserr.OptionConflict, "invalid include regex "+pat, err)
		}
		f.IncludeRegex = append(f.IncludeRegex, re)
	}
	for _, pat := range exclude {
		re, err := regexp.Compile(pat)
		if err != nil {
			return Filters{}, fserr.Wrap(fserr.OptionConflict, "invalid exclude regex "+pat, err)
		}
		f.ExcludeRegex = append(f.ExcludeRegex, re)
	}
	return f, nil
}
