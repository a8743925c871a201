package fatfs_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/scafiti/fatsort/internal/decode/decodemock"
	"github.com/scafiti/fatsort/internal/fatfs"
)

// TestParseDirectoryStreamDecodeFailureWarns verifies a Decoder error surfaces
// as a non-fatal DecodeWarning (spec.md §7) while still yielding the
// best-effort decoded name the mock returns.
func TestParseDirectoryStreamDecodeFailureWarns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var shortName [11]byte
	copy(shortName[:], "A       TXT")
	checksum := fatfs.LFNChecksum(shortName)

	longSlot := buildLongSlot(1, true, checksum, utf16Units("a.txt"))
	shortSlot := buildShortSlot(shortName, fatfs.AttrArchive)
	raw := append(append(append([]byte{}, longSlot...), shortSlot...), make([]byte, 32)...)

	mockDec := decodemock.NewMockDecoder(ctrl)
	mockDec.EXPECT().
		DecodeUTF16LE(gomock.Any()).
		Return("a.txt", errors.New("transliteration failed"))

	records, err := fatfs.ParseDirectoryStream(raw, mockDec)
	require.Error(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "a.txt", records[0].DisplayName())
}
