package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scafiti/fatsort/internal/blockdev"
	"github.com/scafiti/fatsort/internal/driver"
	"github.com/scafiti/fatsort/internal/fatfs"
	"github.com/scafiti/fatsort/internal/fserr"
	"github.com/scafiti/fatsort/internal/logger"
	"github.com/scafiti/fatsort/internal/options"
	"github.com/scafiti/fatsort/internal/partition"
	"github.com/scafiti/fatsort/internal/report"
)

const AppName = "fatsort"

// Execute builds and runs the single root command: fatsort's entire
// surface is one command over a positional device path plus flags
// (spec.md §6), not a cobra subcommand tree.
func Execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          AppName + " [flags] <device-or-image>",
		Short:        AppName + " - sort FAT12/16/32 directory entries in place",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runSort,
	}

	flags := root.Flags()
	flags.BoolP("info", "i", false, "information mode: report geometry and cluster usage, read-only")
	flags.BoolP("list", "l", false, "list-only mode: parse and report without writing")
	flags.BoolP("force", "f", false, "proceed even if the device appears mounted")
	flags.BoolP("quiet", "q", false, "suppress all but error output")
	flags.Bool("version", false, "print version and exit")

	flags.BoolP("ascii", "a", false, "compare names byte-for-byte (ASCII order)")
	flags.BoolP("ignore-case", "c", false, "fold case before comparing names")
	flags.BoolP("natural", "n", false, "natural order: numeric runs compare as numbers")
	flags.BoolP("reverse", "r", false, "reverse the final ordering")
	flags.BoolP("random", "R", false, "shuffle entries instead of sorting them")
	flags.BoolP("mtime", "t", false, "order by modification time instead of name")
	flags.StringP("order", "o", "d", "directory/file bias: d (dirs first), f (files first), a (mixed)")
	flags.StringArrayP("ignore-prefix", "I", nil, "strip this leading prefix before comparing names (repeatable)")
	flags.StringP("locale", "L", "", "BCP-47 locale tag for collation-based ordering")

	flags.StringArrayP("sort-dir", "d", nil, "sort only this directory (exact path, repeatable)")
	flags.StringArrayP("sort-dir-recursive", "D", nil, "sort this directory and its descendants (repeatable)")
	flags.StringArrayP("exclude-dir", "x", nil, "exclude this directory (exact path, repeatable)")
	flags.StringArrayP("exclude-dir-recursive", "X", nil, "exclude this directory and its descendants (repeatable)")
	flags.StringArrayP("include-regex", "e", nil, "include directories whose path matches this regex (repeatable)")
	flags.StringArrayP("exclude-regex", "E", nil, "exclude directories whose path matches this regex (repeatable)")

	flags.String("report-csv", "", "write the information-mode chain-length report to this CSV file")
	flags.Bool("verbose-info", false, "information mode: also compute per-cluster chain lengths")

	flags.Int("partition", 0, "operate on the N-th FAT partition of a whole-disk image (1-indexed); 0 means the device is a bare FAT volume")

	return root
}

func runSort(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	if v, _ := flags.GetBool("version"); v {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
		return nil
	}

	devicePath := args[0]

	quiet, _ := flags.GetBool("quiet")
	log := logger.New(os.Stderr, logger.InfoLevel)
	if quiet {
		log = logger.Quiet(os.Stderr)
	}

	info, _ := flags.GetBool("info")
	listOnly, _ := flags.GetBool("list")
	force, _ := flags.GetBool("force")

	mode := blockdev.ReadWriteExclusive
	if info || listOnly {
		mode = blockdev.ReadOnlyExclusive
	}

	dev, err := blockdev.Open(devicePath, mode, force)
	if err != nil {
		return err
	}
	defer dev.Close()

	if n, _ := flags.GetInt("partition"); n > 0 {
		if err := selectPartition(dev, n); err != nil {
			return err
		}
	}

	vol, err := fatfs.Open(dev, true)
	if err != nil {
		return err
	}
	if err := vol.FATsMatch(); err != nil {
		return err
	}

	if info {
		return runInfo(cmd, flags, vol)
	}

	opt, filters, err := parseSortFlags(flags)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if opt.Random {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	d := driver.New(vol, opt, filters, log, rng)
	if err := d.Run(listOnly); err != nil {
		return err
	}

	if !listOnly {
		if err := vol.RefreshFSInfo(); err != nil {
			return err
		}
	}

	log.Infof("visited %d directories, sorted %d", d.DirsVisited, d.DirsSorted)
	return nil
}

// selectPartition reads the MBR at the start of dev and shifts dev's
// base offset to the n-th FAT partition's first byte.
func selectPartition(dev *blockdev.Device, n int) error {
	sector := make([]byte, 512)
	if _, err := dev.ReadAt(sector, 0); err != nil {
		return err
	}
	entries, err := partition.ReadTable(sector, 512)
	if err != nil {
		return err
	}
	entry, err := partition.FindFAT(entries, n)
	if err != nil {
		return err
	}
	dev.SetBaseOffset(entry.ByteOffset())
	return nil
}

func runInfo(cmd *cobra.Command, flags *pflag.FlagSet, vol *fatfs.Volume) error {
	verbose, _ := flags.GetBool("verbose-info")
	rep, err := vol.Inspect(verbose)
	if err != nil {
		return err
	}

	if err := report.WriteText(cmd.OutOrStdout(), rep); err != nil {
		return err
	}

	csvPath, _ := flags.GetString("report-csv")
	if csvPath == "" {
		return nil
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return fserr.Wrap(fserr.IOError, "creating report CSV", err)
	}
	defer f.Close()
	return report.WriteCSV(f, rep)
}

func parseSortFlags(flags *pflag.FlagSet) (options.SortPolicy, options.Filters, error) {
	ascii, _ := flags.GetBool("ascii")
	ignoreCase, _ := flags.GetBool("ignore-case")
	natural, _ := flags.GetBool("natural")
	reverse, _ := flags.GetBool("reverse")
	random, _ := flags.GetBool("random")
	mtime, _ := flags.GetBool("mtime")
	order, _ := flags.GetString("order")
	prefixes, _ := flags.GetStringArray("ignore-prefix")
	locale, _ := flags.GetString("locale")

	dirBias, err := options.ParseDirBias(order)
	if err != nil {
		return options.SortPolicy{}, options.Filters{}, err
	}

	opt := options.SortPolicy{
		ASCII:      ascii,
		IgnoreCase: ignoreCase,
		Natural:    natural,
		Reverse:    reverse,
		Random:     random,
		ByModTime:  mtime,
		DirBias:    dirBias,
		Prefixes:   prefixes,
		Locale:     locale,
	}

	sortDir, _ := flags.GetStringArray("sort-dir")
	sortDirRecursive, _ := flags.GetStringArray("sort-dir-recursive")
	excludeDir, _ := flags.GetStringArray("exclude-dir")
	excludeDirRecursive, _ := flags.GetStringArray("exclude-dir-recursive")
	includeRegex, _ := flags.GetStringArray("include-regex")
	excludeRegex, _ := flags.GetStringArray("exclude-regex")

	pathMode := len(sortDir) > 0 || len(sortDirRecursive) > 0 || len(excludeDir) > 0 || len(excludeDirRecursive) > 0
	regexMode := len(includeRegex) > 0 || len(excludeRegex) > 0

	if pathMode && regexMode {
		return options.SortPolicy{}, options.Filters{}, fserr.New(fserr.OptionConflict, "path-list filters (-d/-D/-x/-X) and regex filters (-e/-E) are mutually exclusive")
	}

	var filters options.Filters
	switch {
	case regexMode:
		filters, err = options.NewRegexFilters(includeRegex, excludeRegex)
		if err != nil {
			return options.SortPolicy{}, options.Filters{}, err
		}
	case pathMode:
		filters = options.NewPathFilters(sortDir, sortDirRecursive, excludeDir, excludeDirRecursive)
	}

	return opt, filters, nil
}

func versionString() string {
	return AppName + " (development build)"
}
