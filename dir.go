package mffs

import "github.com/jcoverton/mffs/checkpoint"

// locateFilenode scans every sector for a file head whose stored name
// matches name, upper-casing both names before comparing, per spec.md
// §4.4. The first match wins; noSectorNum means no file has that name.
func (fs *Fs) locateFilenode(name string) (Filenode, SectorNum, error) {
	total := totalSectors(fs.sections)

	for i := SectorNum(0); uint32(i) < total; i++ {
		h, err := fs.readHeader(i)
		if err != nil {
			return Filenode{}, 0, err
		}

		if h.Status != statusInUseFilenode {
			continue
		}

		buf := make([]byte, filenodeSize)
		if err := fs.readSectorAt(i, sectorHeaderSize, buf); err != nil {
			return Filenode{}, 0, err
		}
		node, err := unmarshalFilenode(buf)
		if err != nil {
			return Filenode{}, 0, err
		}

		if sameName(node.Name(), name) {
			return node, i, nil
		}
	}

	return Filenode{}, noSectorNum, nil
}

// NextDirectory resumes a linear directory scan from *handle, returning the
// next file's Filenode and advancing the handle past it, per spec.md §4.4.
// done is true once every sector has been scanned with no match found.
func (fs *Fs) NextDirectory(handle *uint32) (*Filenode, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	total := totalSectors(fs.sections)

	for sector := SectorNum(*handle); uint32(sector) < total; sector++ {
		h, err := fs.readHeader(sector)
		if err != nil {
			return nil, false, err
		}

		if h.Status != statusInUseFilenode {
			continue
		}

		buf := make([]byte, filenodeSize)
		if err := fs.readSectorAt(sector, sectorHeaderSize, buf); err != nil {
			return nil, false, err
		}
		node, err := unmarshalFilenode(buf)
		if err != nil {
			return nil, false, err
		}

		*handle = uint32(sector) + 1

		if node.isInterruptedCreate() {
			node.setName(newFileDisplayName)
		}

		return &node, false, nil
	}

	return nil, true, nil
}

// Erase removes a file by name, reclaiming its entire chain, per spec.md
// §4.5/§4.6 (exposed at the directory level as FFSErase in the original).
func (fs *Fs) Erase(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, sector, err := fs.locateFilenode(name)
	if err != nil {
		return err
	}
	if sector.IsTerminal() {
		return checkpoint.From(ErrFileNotFound)
	}

	return fs.freeChain(sector)
}

// renameCopyBufferSize matches the original's on-stack 100-byte staging
// buffer used while streaming a file's payload to its new head sector.
const renameCopyBufferSize = 100

// Rename copies a file's payload to a freshly allocated head sector under
// the new name, re-chains the tail, and marks the old head FREE_DIRTY, per
// spec.md §4.7. This only works when both head sectors share the same
// per-sector payload capacity (i.e. both sections use the same sector
// size); a mismatch aborts and returns OutOfSpace, just as the original
// does.
func (fs *Fs) Rename(oldname, newname string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, oldSector, err := fs.locateFilenode(oldname)
	if err != nil {
		return err
	}
	if oldSector.IsTerminal() {
		return checkpoint.From(ErrFileNotFound)
	}

	_, existingNewSector, err := fs.locateFilenode(newname)
	if err != nil {
		return err
	}
	if !existingNewSector.IsTerminal() {
		return checkpoint.From(ErrNewNameExists)
	}

	oldHeader, err := fs.readHeader(oldSector)
	if err != nil {
		return err
	}
	payloadLen := oldHeader.SectorLength - oldHeader.DataOffset
	nextSector := SectorNum(oldHeader.Next)

	newSector, newHeader, err := fs.allocate(true)
	if err != nil {
		return err
	}

	if payloadLen != newHeader.SectorLength-newHeader.DataOffset {
		_ = fs.freeChain(newSector)
		return checkpoint.From(ErrOutOfSpace)
	}

	if err := fs.copySectorPayload(oldSector, newSector, oldHeader.DataOffset, newHeader.DataOffset, payloadLen); err != nil {
		return err
	}

	buf := make([]byte, filenodeSize)
	if err := fs.readSectorAt(oldSector, sectorHeaderSize, buf); err != nil {
		return err
	}
	node, err := unmarshalFilenode(buf)
	if err != nil {
		return err
	}
	node.setName(newname)
	if err := fs.writeSectorAt(newSector, sectorHeaderSize, node.marshal()); err != nil {
		return err
	}

	// Per spec.md §9's Open Question on Rename: Next is only patched when
	// the old chain had more than one sector; a single-sector file leaves
	// the new head's Next at the all-ones sentinel, which is already
	// correct.
	if !nextSector.IsTerminal() {
		if err := fs.patchNext(newSector, nextSector); err != nil {
			return err
		}
	}

	return fs.markFreeDirty(oldSector, oldHeader)
}

func (fs *Fs) copySectorPayload(src, dst SectorNum, srcOffset, dstOffset, length uint32) error {
	buf := make([]byte, renameCopyBufferSize)
	for length > 0 {
		chunk := uint32(len(buf))
		if length < chunk {
			chunk = length
		}
		if err := fs.readSectorAt(src, srcOffset, buf[:chunk]); err != nil {
			return err
		}
		if err := fs.writeSectorAt(dst, dstOffset, buf[:chunk]); err != nil {
			return err
		}
		length -= chunk
		srcOffset += chunk
		dstOffset += chunk
	}
	return nil
}

// SpaceOption selects what Space reports or, for SpaceFormatAll, performs.
type SpaceOption int

const (
	SpaceFreeBytes   SpaceOption = 0
	SpaceFreeSectors SpaceOption = 1
	SpaceTotalBytes  SpaceOption = 2
	SpaceTotalCount  SpaceOption = 3
	SpaceFormatAll   SpaceOption = 128
)

// Space answers the queries of spec.md §4.8, or, for SpaceFormatAll, erases
// every managed sector back to all-ones (FREE) and returns the total
// payload bytes; no sector header is written.
func (fs *Fs) Space(option SpaceOption) (uint32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if option == SpaceFormatAll {
		var total uint32
		for i := SectorNum(0); uint32(i) < totalSectors(fs.sections); i++ {
			if err := fs.eraseSector(i); err != nil {
				return 0, err
			}
			section, _, _ := resolve(fs.sections, i)
			total += section.SectorSize - sectorHeaderSize
		}
		return total, nil
	}

	if option < SpaceFreeBytes || option > SpaceTotalCount {
		return 0, nil
	}

	var total uint32
	for i := SectorNum(0); uint32(i) < totalSectors(fs.sections); i++ {
		section, _, _ := resolve(fs.sections, i)
		h, err := fs.readHeader(i)
		if err != nil {
			return 0, err
		}

		countThis := option == SpaceTotalBytes || option == SpaceTotalCount || h.isFree()
		if !countThis {
			continue
		}

		if option == SpaceFreeBytes || option == SpaceTotalBytes {
			total += section.SectorSize - sectorHeaderSize
		} else {
			total++
		}
	}

	return total, nil
}
