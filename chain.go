package mffs

// locate walks a file's chain starting at its head sector to find which
// sector and in-sector offset correspond to a byte position, per spec.md
// §4.3. The caller must have already allocated the head sector for a
// brand-new file before calling locate.
func (fs *Fs) locate(desc *fileDescriptor, pos uint32) (SectorNum, sectorHeader, uint32, error) {
	sector := desc.FnodeSector
	var count uint32

	for {
		h, err := fs.readHeader(sector)
		if err != nil {
			return 0, sectorHeader{}, 0, err
		}

		capacity := h.SectorLength - h.DataOffset
		if pos < count+capacity {
			offset := h.DataOffset + (pos - count)
			return sector, h, offset, nil
		}

		count += capacity

		next := SectorNum(h.Next)
		if next.IsTerminal() {
			return 0, sectorHeader{}, 0, invalidPositionError(pos)
		}
		sector = next
	}
}

func invalidPositionError(pos uint32) error {
	return wrapf(ErrInvalidFilePosition, "position %d is beyond the end of the chain", pos)
}
