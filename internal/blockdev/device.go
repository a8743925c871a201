package blockdev

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/scafiti/fatsort/internal/fserr"
)

// Mode selects how a Device is opened (spec.md §4.1).
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
	ReadOnlyExclusive
	ReadWriteExclusive
)

func (m Mode) exclusive() bool {
	return m == ReadOnlyExclusive || m == ReadWriteExclusive
}

func (m Mode) writable() bool {
	return m == ReadWrite || m == ReadWriteExclusive
}

// Device is the single open handle a run works against: the raw *os.File
// plus a buffered reader layered over it for sequential scans.
type Device struct {
	f          *os.File
	Reader     *BufferedReadSeeker
	mode       Mode
	path       string
	baseOffset int64
}

// SetBaseOffset shifts every subsequent ReadAt/WriteAt by off bytes, so a
// Device opened against a whole-disk image can be pointed at one
// partition (SPEC_FULL.md §6 --partition) without re-opening anything.
func (d *Device) SetBaseOffset(off int64) {
	d.baseOffset = off
}

const defaultBufferSize = 64 * 1024

// Open acquires path under mode (spec.md §4.1). Exclusive modes first
// reject an already-mounted device unless force is set, then take an
// advisory exclusive flock; non-exclusive modes skip both checks (and the
// caller is expected to have warned the user that concurrent mutation is
// unsafe, per spec.md §5).
func Open(path string, mode Mode, force bool) (*Device, error) {
	path = NormalizePath(path)
	if mode.exclusive() && !force {
		if mounted, mountPoint, err := IsMounted(path); err != nil {
			return nil, fserr.Wrap(fserr.IOError, "checking mount table", err)
		} else if mounted {
			return nil, fserr.New(fserr.MountConflict, path+" is mounted at "+mountPoint+"; pass force to override")
		}
	}

	flag := os.O_RDONLY
	if mode.writable() {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fserr.Wrap(fserr.IOError, "opening "+path, err)
	}

	if mode.exclusive() {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			return nil, fserr.Wrap(fserr.MountConflict, "acquiring exclusive lock on "+path, err)
		}
	}

	return &Device{
		f:      f,
		Reader: NewBufferedReadSeeker(f, defaultBufferSize),
		mode:   mode,
		path:   path,
	}, nil
}

// ReadAt reads len(p) bytes at the given absolute offset through the
// buffered read-ahead window, reusing already-fetched bytes whenever a
// directory or FAT read lands inside it (the boot sector, FAT copies, and
// directory streams are read in ascending offset order within one Open, so
// most ReadAt calls hit the buffer rather than the device).
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if _, err := d.Reader.Seek(off+d.baseOffset, io.SeekStart); err != nil {
		return 0, fserr.Wrap(fserr.IOError, "seeking device", err)
	}
	n, err := io.ReadFull(d.Reader, p)
	if err != nil {
		return n, fserr.Wrap(fserr.IOError, "reading device", err)
	}
	return n, nil
}

// WriteAt writes p at the given absolute offset. Callers performing a
// directory rewrite are expected to call this only from inside
// internal/critsec.Do.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if !d.mode.writable() {
		return 0, fserr.New(fserr.IOError, "device opened read-only")
	}
	n, err := d.f.WriteAt(p, off+d.baseOffset)
	if err != nil {
		return n, fserr.Wrap(fserr.IOError, "writing device", err)
	}
	// A write bypasses Reader entirely, so any buffered window that now
	// overlaps stale bytes must be dropped before the next ReadAt.
	d.Reader.invalidate()
	return n, nil
}

// Sync flushes and forces the write to stable storage (spec.md §4.6
// "forces a device sync").
func (d *Device) Sync() error {
	if err := d.f.Sync(); err != nil {
		return fserr.Wrap(fserr.IOError, "fsync", err)
	}
	if err := unix.Fsync(int(d.f.Fd())); err != nil {
		return fserr.Wrap(fserr.IOError, "fsync", err)
	}
	return nil
}

// Close releases the lock (implicitly, via close) and the file handle.
func (d *Device) Close() error {
	return d.f.Close()
}

// IsMounted reports whether path's resolved real path names a currently
// mounted filesystem, by scanning /proc/mounts the way the teacher's
// internal/disk package resolves volume paths before touching them.
func IsMounted(path string) (bool, string, error) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		real = path
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		return false, "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		devField := fields[0]
		mountPoint := fields[1]
		resolvedDev, err := filepath.EvalSymlinks(devField)
		if err != nil {
			resolvedDev = devField
		}
		if resolvedDev == real {
			return true, mountPoint, nil
		}
	}
	return false, "", scanner.Err()
}
