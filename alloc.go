package mffs

import (
	"github.com/jcoverton/mffs/checkpoint"
	"github.com/sirupsen/logrus"
)

// findFree scans sectors in ascending logical order for the first one that
// can be allocated, per spec.md §4.2. A sector qualifies if it has a valid
// key and is FREE/FREE_DIRTY, or if its key is invalid (never formatted) --
// the latter case bumps the error high-water mark but is still usable.
func (fs *Fs) findFree() (SectorNum, sectorHeader, *FlashSection, error) {
	total := totalSectors(fs.sections)

	var errorCount uint32
	for i := SectorNum(0); uint32(i) < total; i++ {
		section, _, ok := resolve(fs.sections, i)
		if !ok {
			break
		}

		h, err := fs.readHeader(i)
		if err != nil {
			return 0, sectorHeader{}, nil, err
		}

		if !h.hasValidKey() {
			errorCount++
			if errorCount > fs.errorSectorCount {
				fs.errorSectorCount = errorCount
			}
			fs.log().WithField("sector", uint32(i)).Debug("treating never-formatted sector as free")
			return i, h, section, nil
		}

		if h.isFree() {
			return i, h, section, nil
		}
	}

	return 0, sectorHeader{}, nil, checkpoint.From(ErrOutOfSpace)
}

// allocate finds a free sector, formats it, erases it physically, and
// writes the fresh header back out, per spec.md §4.2. withFilenode controls
// whether DataOffset leaves room for a Filenode after the header.
func (fs *Fs) allocate(withFilenode bool) (SectorNum, sectorHeader, error) {
	sector, h, section, err := fs.findFree()
	if err != nil {
		return 0, sectorHeader{}, err
	}

	h.Key = sectorHeaderKey
	h.Next = noSector
	h.EraseCount++
	h.Version = fileSystemVersion
	h.SectorChecksum = 0xffff
	h.SectorLength = section.SectorSize
	if withFilenode {
		h.Status = statusInUseFilenode
		h.DataOffset = sectorHeaderSize + filenodeSize
	} else {
		h.Status = statusInUse
		h.DataOffset = sectorHeaderSize
	}

	if err := fs.eraseSector(sector); err != nil {
		return 0, sectorHeader{}, err
	}
	if err := fs.writeHeader(sector, h); err != nil {
		return 0, sectorHeader{}, err
	}

	return sector, h, nil
}

// freeChain walks the Next chain starting at head and marks every sector
// FREE_DIRTY, per spec.md §4.6. Only the Status byte is rewritten -- a
// one-way bit clear that is legal without an erase.
func (fs *Fs) freeChain(head SectorNum) error {
	sector := head
	for !sector.IsTerminal() {
		h, err := fs.readHeader(sector)
		if err != nil {
			return err
		}

		next := SectorNum(h.Next)

		if err := fs.markFreeDirty(sector, h); err != nil {
			return err
		}

		sector = next
	}
	return nil
}

// markFreeDirty rewrites only the Status byte of an already-read header to
// FREE_DIRTY; no adjacent header field is written.
func (fs *Fs) markFreeDirty(sector SectorNum, h sectorHeader) error {
	h.Status = statusFreeDirty
	return fs.writeStatusWindow(sector, h)
}

// statusWindowOffset and statusWindowSize bound the single header byte
// (Status) that freeChain/the checker rewrite in place when marking a
// sector FREE_DIRTY.
const (
	statusWindowOffset = 4 + 4 + 4 + 1 // past Key, Next, EraseCount, Version
	statusWindowSize   = 1             // Status
)

func (fs *Fs) writeStatusWindow(sector SectorNum, h sectorHeader) error {
	full := h.marshal()
	window := full[statusWindowOffset : statusWindowOffset+statusWindowSize]
	return fs.writeSectorAt(sector, statusWindowOffset, window)
}

func (fs *Fs) log() *logrus.Entry {
	return fs.logger.WithField("component", "mffs")
}
