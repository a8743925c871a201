package options_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/options"
)

func TestParseDirBias(t *testing.T) {
	cases := []struct {
		in   string
		want options.DirBias
	}{
		{"d", options.DirsFirst},
		{"", options.DirsFirst},
		{"f", options.FilesFirst},
		{"a", options.Mixed},
	}
	for _, c := range cases {
		got, err := options.ParseDirBias(c.in)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestParseDirBiasRejectsUnknownValue(t *testing.T) {
	_, err := options.ParseDirBias("z")
	require.Error(t, err)
}

func TestNewRegexFiltersRejectsBadPattern(t *testing.T) {
	_, err := options.NewRegexFilters([]string{"("}, nil)
	require.Error(t, err)
}

func TestNewRegexFiltersCompilesBoth(t *testing.T) {
	f, err := options.NewRegexFilters([]string{"^/a"}, []string{"^/b"})
	require.NoError(t, err)
	require.Equal(t, options.FilterModeRegex, f.Mode)
	require.Len(t, f.IncludeRegex, 1)
	require.Len(t, f.ExcludeRegex, 1)
}

func TestNewPathFilters(t *testing.T) {
	f := options.NewPathFilters([]string{"/a"}, []string{"/b"}, []string{"/c"}, []string{"/d"})
	require.Equal(t, options.FilterModePath, f.Mode)
	require.Equal(t, []string{"/a"}, f.IncludeExact)
	require.Equal(t, []string{"/b"}, f.IncludeRecursive)
	require.Equal(t, []string{"/c"}, f.ExcludeExact)
	require.Equal(t, []string{"/d"}, f.ExcludeRecursive)
}
