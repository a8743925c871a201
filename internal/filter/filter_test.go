package filter_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/filter"
	"github.com/scafiti/fatsort/internal/options"
)

func TestShouldSortNoFilterAlwaysTrue(t *testing.T) {
	require.True(t, filter.ShouldSort(options.Filters{}, "/anything"))
}

func TestShouldSortPathExactInclude(t *testing.T) {
	f := options.NewPathFilters([]string{"/music"}, nil, nil, nil)
	require.True(t, filter.ShouldSort(f, "/music"))
	require.False(t, filter.ShouldSort(f, "/music/rock"))
	require.False(t, filter.ShouldSort(f, "/video"))
}

func TestShouldSortPathRecursiveInclude(t *testing.T) {
	f := options.NewPathFilters(nil, []string{"/music"}, nil, nil)
	require.True(t, filter.ShouldSort(f, "/music"))
	require.True(t, filter.ShouldSort(f, "/music/rock"))
	require.False(t, filter.ShouldSort(f, "/video"))
}

func TestShouldSortPathExcludeWinsOverInclude(t *testing.T) {
	f := options.NewPathFilters(nil, []string{"/music"}, nil, []string{"/music/rock"})
	require.True(t, filter.ShouldSort(f, "/music/pop"))
	require.False(t, filter.ShouldSort(f, "/music/rock"))
	require.False(t, filter.ShouldSort(f, "/music/rock/90s"))
}

func TestShouldSortRegexIncludeExclude(t *testing.T) {
	include := []*regexp.Regexp{regexp.MustCompile(`^/music`)}
	exclude := []*regexp.Regexp{regexp.MustCompile(`/private$`)}
	f := options.Filters{Mode: options.FilterModeRegex, IncludeRegex: include, ExcludeRegex: exclude}

	require.True(t, filter.ShouldSort(f, "/music/rock"))
	require.False(t, filter.ShouldSort(f, "/music/private"))
	require.False(t, filter.ShouldSort(f, "/video"))
}

func TestShouldSortRegexNoIncludeMeansEverythingNotExcluded(t *testing.T) {
	exclude := []*regexp.Regexp{regexp.MustCompile(`/tmp`)}
	f := options.Filters{Mode: options.FilterModeRegex, ExcludeRegex: exclude}

	require.True(t, filter.ShouldSort(f, "/music"))
	require.False(t, filter.ShouldSort(f, "/tmp"))
}
