package blockdev_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/scafiti/fatsort/internal/blockdev"
)

// backing builds an in-memory io.ReadWriteSeeker the same way
// dargueta-disko's test fixtures do, so BufferedReadSeeker can be exercised
// without touching a real file.
func backing(data []byte) io.ReadSeeker {
	return bytesextra.NewReadWriteSeeker(data)
}

func TestBufferedReadSeekerReadsAcrossRefills(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}

	r := blockdev.NewBufferedReadSeeker(backing(data), 16)

	out := make([]byte, 40)
	n, err := r.Read(out)
	require.NoError(t, err)
	require.Equal(t, 40, n)
	require.Equal(t, data[:40], out)
}

func TestBufferedReadSeekerSeekWithinBuffer(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}

	r := blockdev.NewBufferedReadSeeker(backing(data), 32)

	buf := make([]byte, 8)
	_, err := r.Read(buf)
	require.NoError(t, err)

	pos, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	out := make([]byte, 4)
	_, err = r.Read(out)
	require.NoError(t, err)
	require.Equal(t, data[4:8], out)
}

func TestBufferedReadSeekerSeekPastBufferReachesSource(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}

	r := blockdev.NewBufferedReadSeeker(backing(data), 8)

	pos, err := r.Seek(50, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(50), pos)

	out := make([]byte, 4)
	_, err = r.Read(out)
	require.NoError(t, err)
	require.Equal(t, data[50:54], out)
}
