package mffs

import "fmt"

// Reader reads a portion of one relative sector within a section.
type Reader interface {
	ReadSector(relSector uint32, offset uint32, buf []byte) (int, error)
}

// Writer writes a portion of one relative sector within a section. NOR
// flash can only clear bits with a write; restoring them requires Eraser.
type Writer interface {
	WriteSector(relSector uint32, offset uint32, buf []byte) (int, error)
}

// Eraser resets an entire relative sector back to all-ones.
type Eraser interface {
	EraseSector(relSector uint32) error
}

// SectionIO bundles the three injected physical capabilities a
// FlashSection needs. Hosts provide one implementation per physical flash
// device; see MemSection and FileSection for ready-made adapters.
type SectionIO interface {
	Reader
	Writer
	Eraser
}

// FlashSection describes one contiguous, manageable range of sectors on a
// single physical device, per spec.md §4.1.
type FlashSection struct {
	Device     uint8
	Start      uint32
	Count      uint32
	SectorSize uint32
	IO         SectionIO
}

// resolve locates which section a logical sector number falls in and
// returns the section along with the sector number relative to that
// section's start. ok is false if sector lies past every section in the
// table, mirroring GetFlashSectionEntry's end-of-table behavior.
func resolve(sections []FlashSection, sector SectorNum) (section *FlashSection, relSector uint32, ok bool) {
	remaining := uint32(sector)
	for i := range sections {
		s := &sections[i]
		if remaining < s.Count {
			return s, remaining, true
		}
		remaining -= s.Count
	}
	return nil, 0, false
}

// valid reports whether sector lies within one of the sections in the
// table.
func valid(sections []FlashSection, sector SectorNum) bool {
	_, _, ok := resolve(sections, sector)
	return ok
}

// totalSectors sums Count across every section in the table. This is the
// "total number of sectors in the file system" used by Space(option 3)
// and by the checker to size its scratch array.
func totalSectors(sections []FlashSection) uint32 {
	var total uint32
	for _, s := range sections {
		total += s.Count
	}
	return total
}

func (fs *Fs) readHeader(sector SectorNum) (sectorHeader, error) {
	buf := make([]byte, sectorHeaderSize)
	if err := fs.readSectorAt(sector, 0, buf); err != nil {
		return sectorHeader{}, err
	}
	return unmarshalSectorHeader(buf)
}

func (fs *Fs) writeHeader(sector SectorNum, h sectorHeader) error {
	return fs.writeSectorAt(sector, 0, h.marshal())
}

func (fs *Fs) readSectorAt(sector SectorNum, offset uint32, buf []byte) error {
	section, rel, ok := resolve(fs.sections, sector)
	if !ok {
		return invalidSectorError(sector)
	}
	_, err := section.IO.ReadSector(rel, offset, buf)
	if err != nil {
		return failIO(err)
	}
	return nil
}

func (fs *Fs) writeSectorAt(sector SectorNum, offset uint32, buf []byte) error {
	section, rel, ok := resolve(fs.sections, sector)
	if !ok {
		return invalidSectorError(sector)
	}
	_, err := section.IO.WriteSector(rel, offset, buf)
	if err != nil {
		return failIO(err)
	}
	return nil
}

func (fs *Fs) eraseSector(sector SectorNum) error {
	section, rel, ok := resolve(fs.sections, sector)
	if !ok {
		return invalidSectorError(sector)
	}
	if err := section.IO.EraseSector(rel); err != nil {
		return failIO(err)
	}
	return nil
}

func invalidSectorError(sector SectorNum) error {
	return fmt.Errorf("%w: sector %d", ErrInvalidSectorNumber, uint32(sector))
}

// failIO wraps an error coming back from an injected capability. Those
// errors propagate outward verbatim per spec.md §7, but we still tag them
// so callers can tell a medium failure apart from our own sentinels.
func failIO(err error) error {
	return fmt.Errorf("mffs: section i/o: %w", err)
}
