// Package blockdev owns the single open device/image handle a run works
// against: exclusive acquisition, mount-conflict detection, buffered
// sequential reads, and the fsync the writer's critical section ends with
// (SPEC_FULL.md §4.1, grounded on ostafen-digler's pkg/reader and
// internal/disk packages).
package blockdev

import (
	"fmt"
	"io"
)

// BufferedReadSeeker wraps an io.ReadSeeker with a sliding read-ahead
// buffer, adapted from the teacher's pkg/reader.BufferedReadSeeker.
type BufferedReadSeeker struct {
	src     io.ReadSeeker
	buf     []byte
	currPos int64
	off     int
	size    int
}

// NewBufferedReadSeeker builds a buffered reader over src with the given
// buffer size.
func NewBufferedReadSeeker(src io.ReadSeeker, bufSize int) *BufferedReadSeeker {
	return &BufferedReadSeeker{
		src: src,
		buf: make([]byte, bufSize),
	}
}

func (b *BufferedReadSeeker) fillBuffer() error {
	copied := copy(b.buf, b.buf[b.off:b.size])
	n, err := b.src.Read(b.buf[copied:])
	if err != nil && err != io.EOF {
		return err
	}
	b.size = n + copied
	b.currPos += int64(b.off)
	b.off = 0
	return nil
}

// Read implements io.Reader.
func (b *BufferedReadSeeker) Read(p []byte) (int, error) {
	readBytes := 0
	for readBytes < len(p) {
		if b.off >= b.size {
			if err := b.fillBuffer(); err != nil {
				return 0, err
			}
			if b.size == 0 {
				return readBytes, io.EOF
			}
		}
		n := copy(p[readBytes:], b.buf[b.off:b.size])
		b.off += n
		readBytes += n
	}
	return readBytes, nil
}

// invalidate drops the held buffer window, forcing the next Read to refill
// from src rather than return bytes cached before a write to the same
// region of the underlying device.
func (b *BufferedReadSeeker) invalidate() {
	b.off = 0
	b.size = 0
}

// Seek implements io.Seeker, reusing buffered data when the target offset
// falls inside the currently-held window.
func (b *BufferedReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart, io.SeekEnd:
	case io.SeekCurrent:
		offset += b.currPos + int64(b.off)
		whence = io.SeekStart
	default:
		return -1, fmt.Errorf("blockdev: invalid whence %d", whence)
	}
	if offset < 0 {
		return -1, fmt.Errorf("blockdev: negative seek offset")
	}

	if offset >= b.currPos && offset < b.currPos+int64(b.size) {
		shift := offset - (b.currPos + int64(b.off))
		b.off += int(shift)
		return offset, nil
	}

	newOffset, err := b.src.Seek(offset, whence)
	if err != nil {
		return -1, err
	}
	b.currPos = newOffset
	b.off = 0
	b.size = 0
	return newOffset, nil
}
