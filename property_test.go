package mffs

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestProperty_RoundTrip: whatever bytes are written can be read back
// unchanged, regardless of how many sectors the chain spans.
func TestProperty_RoundTrip(t *testing.T) {
	fs := newTestFs(16, 128)
	content := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 10)

	writeTestFile(t, fs, "fox.txt", content)

	fd, err := fs.Open("fox.txt", ReadOnly, os.FileMode(0))
	require.NoError(t, err)

	got := make([]byte, len(content))
	n, err := readFull(fs, fd, got)
	require.NoError(t, err)
	require.Equal(t, len(content), n)
	require.True(t, bytes.Equal(got, content))
	require.NoError(t, fs.Close(fd))
}

// TestProperty_CheckerIsIdempotent: running Check twice in a row without
// any intervening mutation fixes nothing the second time.
func TestProperty_CheckerIsIdempotent(t *testing.T) {
	fs := newTestFs(10, 128)
	writeTestFile(t, fs, "one.txt", []byte("won"))
	writeTestFile(t, fs, "two.txt", []byte("too"))

	_, _, err := fs.Check()
	require.NoError(t, err)

	fixed, crossChain, err := fs.Check()
	require.NoError(t, err)
	require.Zero(t, fixed)
	require.Zero(t, crossChain)
}

// TestProperty_RenamePreservesContent: Rename never changes what Read
// returns for the renamed file.
func TestProperty_RenamePreservesContent(t *testing.T) {
	fs := newTestFs(10, 128)
	content := []byte("preserved across rename")
	writeTestFile(t, fs, "before.txt", content)

	require.NoError(t, fs.Rename("before.txt", "after.txt"))

	fd, err := fs.Open("after.txt", ReadOnly, os.FileMode(0))
	require.NoError(t, err)
	got := make([]byte, len(content))
	n, err := readFull(fs, fd, got)
	require.NoError(t, err)
	require.Equal(t, len(content), n)
	require.Equal(t, content, got)
	require.NoError(t, fs.Close(fd))
}

// TestProperty_CrashSafeReplace: if a create is interrupted before Close
// ever runs, the original file (opened without Create afterwards) is
// untouched, because Close is what performs the free-dirty handoff.
func TestProperty_CrashSafeReplace(t *testing.T) {
	fs := newTestFs(10, 128)
	original := []byte("still here")
	writeTestFile(t, fs, "stable.txt", original)

	fd, err := fs.Open("stable.txt", WriteOnly|Create, 0o644)
	require.NoError(t, err)
	_, err = fs.Write(fd, []byte("half-written replacement"))
	require.NoError(t, err)
	// Simulate a crash: Close never runs, so the old chain is never freed
	// and the new chain's Fnode is never committed.

	readFd, err := fs.Open("stable.txt", ReadOnly, os.FileMode(0))
	require.NoError(t, err)
	got := make([]byte, len(original))
	n, err := readFull(fs, readFd, got)
	require.NoError(t, err)
	require.Equal(t, len(original), n)
	require.Equal(t, original, got)
	require.NoError(t, fs.Close(readFd))
}

// TestProperty_SpaceConservation: on an empty file system
// Space(SpaceFreeBytes) equals Space(SpaceTotalBytes), and writing a file
// lowers Space(SpaceFreeBytes).
func TestProperty_SpaceConservation(t *testing.T) {
	fs := newTestFs(6, 128)

	total, err := fs.Space(SpaceTotalBytes)
	require.NoError(t, err)
	freeBefore, err := fs.Space(SpaceFreeBytes)
	require.NoError(t, err)
	require.Equal(t, total, freeBefore)

	writeTestFile(t, fs, "chunk.txt", bytes.Repeat([]byte("x"), 40))

	freeAfter, err := fs.Space(SpaceFreeBytes)
	require.NoError(t, err)
	require.Less(t, freeAfter, freeBefore)
}

// TestProperty_StatusBitsOnlyEverClear: once a sector leaves FREE, no
// subsequent in-place header rewrite performed by this package ever sets a
// bit in the Status byte back to 1 without going through EraseSector.
func TestProperty_StatusBitsOnlyEverClear(t *testing.T) {
	fs := newTestFs(4, 96)

	sector, h, err := fs.allocate(false)
	require.NoError(t, err)
	require.Equal(t, statusInUse, h.Status)

	require.NoError(t, fs.markFreeDirty(sector, h))

	after, err := fs.readHeader(sector)
	require.NoError(t, err)
	require.Equal(t, statusFreeDirty, after.Status)
	require.Equal(t, byte(0), after.Status&^h.Status, "FREE_DIRTY must only clear bits that INUSE had set")
}

func readFull(fs *Fs, fd int, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := fs.Read(fd, buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}
