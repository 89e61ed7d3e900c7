package mffs

import "testing"

func newTestFs(count, sectorSize uint32) *Fs {
	mem := NewMemSection(count, sectorSize)
	return New([]FlashSection{
		{Device: 0, Start: 0, Count: count, SectorSize: sectorSize, IO: mem},
	})
}

func TestFs_findFree(t *testing.T) {
	fs := newTestFs(4, 128)

	sector, h, section, err := fs.findFree()
	if err != nil {
		t.Fatalf("findFree() error = %v", err)
	}
	if sector != 0 {
		t.Errorf("findFree() sector = %v, want 0", sector)
	}
	if section.SectorSize != 128 {
		t.Errorf("findFree() section.SectorSize = %v, want 128", section.SectorSize)
	}
	if h.hasValidKey() {
		t.Errorf("findFree() on a never-formatted sector should report an invalid key")
	}
}

func TestFs_findFree_outOfSpace(t *testing.T) {
	fs := newTestFs(2, 128)

	for i := 0; i < 2; i++ {
		if _, _, err := fs.allocate(false); err != nil {
			t.Fatalf("allocate() error = %v", err)
		}
	}

	if _, _, _, err := fs.findFree(); err == nil {
		t.Error("findFree() on an exhausted file system should return an error")
	} else if Code(err) != -6 {
		t.Errorf("findFree() error code = %v, want -6 (out of space)", Code(err))
	}
}

func TestFs_allocate(t *testing.T) {
	fs := newTestFs(2, 128)

	sector, h, err := fs.allocate(true)
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	if h.Status != statusInUseFilenode {
		t.Errorf("allocate(true) Status = %#x, want %#x", h.Status, statusInUseFilenode)
	}
	if h.DataOffset != sectorHeaderSize+filenodeSize {
		t.Errorf("allocate(true) DataOffset = %v, want %v", h.DataOffset, sectorHeaderSize+filenodeSize)
	}

	onFlash, err := fs.readHeader(sector)
	if err != nil {
		t.Fatalf("readHeader() error = %v", err)
	}
	if onFlash != h {
		t.Errorf("header on flash = %+v, want %+v", onFlash, h)
	}
}

func TestFs_freeChain(t *testing.T) {
	fs := newTestFs(3, 128)

	head, _, err := fs.allocate(true)
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	tail, _, err := fs.allocate(false)
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	if err := fs.patchNext(head, tail); err != nil {
		t.Fatalf("patchNext() error = %v", err)
	}

	if err := fs.freeChain(head); err != nil {
		t.Fatalf("freeChain() error = %v", err)
	}

	for _, sector := range []SectorNum{head, tail} {
		h, err := fs.readHeader(sector)
		if err != nil {
			t.Fatalf("readHeader() error = %v", err)
		}
		if h.Status != statusFreeDirty {
			t.Errorf("sector %v Status = %#x, want FREE_DIRTY", sector, h.Status)
		}
	}
}
