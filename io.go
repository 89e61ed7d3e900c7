package mffs

// Write appends up to len(buf) bytes at the descriptor's current position,
// allocating new tail sectors as needed, per spec.md §4.5. Writes only
// ever extend a file; there is no in-place update or truncate.
func (fs *Fs) Write(fd int, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.validDescriptor(fd) {
		return 0, checkpointInvalidFD()
	}

	desc := &fs.descriptors[fd]

	var sector SectorNum
	var h sectorHeader
	var offset uint32

	if desc.FnodeSector.IsTerminal() {
		newSector, newHeader, err := fs.allocate(true)
		if err != nil {
			return 0, err
		}
		desc.WriteFnode = true
		desc.FnodeSector = newSector
		sector, h, offset = newSector, newHeader, newHeader.DataOffset
	} else {
		var err error
		sector, h, offset, err = fs.locate(desc, desc.Position)
		if err != nil {
			return 0, err
		}
	}

	remaining := len(buf)
	total := 0

	for remaining > 0 {
		capacity := int(h.SectorLength - offset)
		chunk := remaining
		if chunk > capacity {
			chunk = capacity
		}

		if err := fs.writeSectorAt(sector, offset, buf[total:total+chunk]); err != nil {
			return total, err
		}

		remaining -= chunk
		desc.Position += uint32(chunk)
		total += chunk
		if desc.Position > desc.Fnode.FileSize {
			desc.Fnode.FileSize = desc.Position
		}

		if remaining == 0 {
			break
		}

		newSector, newHeader, err := fs.allocate(false)
		if err != nil {
			return total, err
		}

		if err := fs.patchNext(sector, newSector); err != nil {
			return total, err
		}

		sector = newSector
		h = newHeader
		offset = h.DataOffset
	}

	return total, nil
}

// patchNext chains newSector onto the tail sector, overwriting only the
// Next field -- legal because allocate always leaves Next at the all-ones
// sentinel until a chain patch clears some of its bits.
func (fs *Fs) patchNext(tail SectorNum, next SectorNum) error {
	nextBytes := marshalUint32(uint32(next))
	return fs.writeSectorAt(tail, nextFieldOffset, nextBytes)
}

// nextFieldOffset is the byte offset of sectorHeader.Next within its
// encoding (immediately after the 4-byte Key field).
const nextFieldOffset = 4

func marshalUint32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// Read copies up to len(buf) bytes starting at the descriptor's current
// position, per spec.md §4.5.
func (fs *Fs) Read(fd int, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.validDescriptor(fd) {
		return 0, checkpointInvalidFD()
	}

	desc := &fs.descriptors[fd]

	if desc.Position >= desc.Fnode.FileSize {
		return 0, wrapf(ErrInvalidFilePosition, "position %d >= file size %d", desc.Position, desc.Fnode.FileSize)
	}

	sector, h, offset, err := fs.locate(desc, desc.Position)
	if err != nil {
		return 0, err
	}

	want := len(buf)
	if remaining := int(desc.Fnode.FileSize - desc.Position); want > remaining {
		want = remaining
	}

	total := 0
	for want > 0 {
		capacity := int(h.SectorLength - offset)
		chunk := want
		if chunk > capacity {
			chunk = capacity
		}

		if err := fs.readSectorAt(sector, offset, buf[total:total+chunk]); err != nil {
			return total, err
		}

		want -= chunk
		desc.Position += uint32(chunk)
		total += chunk

		if want == 0 {
			break
		}

		sector = SectorNum(h.Next)
		h, err = fs.readHeader(sector)
		if err != nil {
			return total, err
		}
		offset = h.DataOffset
	}

	return total, nil
}

func checkpointInvalidFD() error {
	return wrapf(ErrInvalidFileDescriptor, "descriptor is not open")
}
