package mffs

import (
	"os"
	"testing"
	"time"
)

func TestNew_defaultsAndOptions(t *testing.T) {
	mem := NewMemSection(2, 64)
	fixedTime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	fs := New([]FlashSection{{Count: 2, SectorSize: 64, IO: mem}}, WithClock(func() time.Time { return fixedTime }))

	if fs.logger == nil {
		t.Error("New() left logger nil")
	}
	if got := fs.clock(); !got.Equal(fixedTime) {
		t.Errorf("New() WithClock: clock() = %v, want %v", got, fixedTime)
	}
	if fs.TotalSectors() != 2 {
		t.Errorf("TotalSectors() = %v, want 2", fs.TotalSectors())
	}
}

func TestFs_Open_tooManyFiles(t *testing.T) {
	fs := newTestFs(8, 128)
	writeTestFile(t, fs, "a.txt", []byte("a"))
	writeTestFile(t, fs, "b.txt", []byte("b"))

	fd1, err := fs.Open("a.txt", ReadOnly, os.FileMode(0))
	if err != nil {
		t.Fatalf("Open(a.txt) error = %v", err)
	}
	fd2, err := fs.Open("b.txt", ReadOnly, os.FileMode(0))
	if err != nil {
		t.Fatalf("Open(b.txt) error = %v", err)
	}

	if _, err := fs.Open("a.txt", ReadOnly, os.FileMode(0)); Code(err) != -1 {
		t.Errorf("Open() with all descriptors taken: Code(err) = %v, want -1 (too many open files)", Code(err))
	}

	if err := fs.Close(fd1); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := fs.Close(fd2); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestFs_validDescriptor_bounds(t *testing.T) {
	fs := newTestFs(2, 64)

	if fs.validDescriptor(-1) {
		t.Error("validDescriptor(-1) = true, want false")
	}
	if fs.validDescriptor(MaxFileDescriptors) {
		t.Error("validDescriptor(MaxFileDescriptors) = true, want false (off-by-one bound)")
	}
	if fs.validDescriptor(0) {
		t.Error("validDescriptor(0) on an unopened descriptor = true, want false")
	}
}

func TestFs_Open_createBitIsNotAccidentallySetByAccessMode(t *testing.T) {
	fs := newTestFs(4, 128)

	// ReadWrite is 0x02; Create is a distinct bit (0x04). Opening with
	// ReadWrite alone, on a file that does not exist, must fail rather
	// than silently create it.
	if _, err := fs.Open("nope.txt", ReadWrite, os.FileMode(0)); Code(err) != -2 {
		t.Errorf("Open(ReadWrite) on a missing file: Code(err) = %v, want -2 (does not exist)", Code(err))
	}
}

func TestCode_unknownErrorIsPositive(t *testing.T) {
	if Code(nil) != 0 {
		t.Errorf("Code(nil) = %v, want 0", Code(nil))
	}
	if Code(os.ErrClosed) != 1 {
		t.Errorf("Code(unrelated error) = %v, want 1", Code(os.ErrClosed))
	}
}
