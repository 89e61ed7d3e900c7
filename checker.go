package mffs

// checkFlag marks what Check found about a given sector during its first
// pass, per spec.md §4.9.
type checkFlag byte

const (
	checkBad   checkFlag = 1 << 0
	checkFree  checkFlag = 1 << 1
	checkFnode checkFlag = 1 << 2
	checkInUse checkFlag = 1 << 3
)

// Check walks every managed sector, reclaims anything left estranged by an
// interrupted operation, and deduplicates same-name files, per spec.md
// §4.9. It returns the number of sectors it fixed and the number of
// cross-chain collisions it found (chain links that lead to a sector
// already classified as free, as a file head, or as bad). Check counts
// those collisions but does not repair them.
func (fs *Fs) Check() (fixed int, crossChain int, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	total := totalSectors(fs.sections)
	flags := make([]checkFlag, total)

	for sector := SectorNum(0); uint32(sector) < total; sector++ {
		h, err := fs.readHeader(sector)
		if err != nil {
			return fixed, crossChain, err
		}

		if !h.hasValidKey() && !h.isFree() {
			flags[sector] |= checkBad
		}

		switch h.Status {
		case statusFree, statusFreeDirty:
			flags[sector] |= checkFree

		case statusInUse:
			// Ordinary in-use sector, accounted for when its chain's head
			// is visited.

		case statusInUseFilenode:
			buf := make([]byte, filenodeSize)
			if err := fs.readSectorAt(sector, sectorHeaderSize, buf); err != nil {
				return fixed, crossChain, err
			}
			node, err := unmarshalFilenode(buf)
			if err != nil {
				return fixed, crossChain, err
			}

			if node.FileSize == 0 || node.FileSize == noSector {
				flags[sector] |= checkBad
				break
			}

			flags[sector] |= checkFnode

			next := SectorNum(h.Next)
			for !next.IsTerminal() {
				nh, err := fs.readHeader(next)
				if err != nil {
					return fixed, crossChain, err
				}

				if flags[next]&(checkFree|checkFnode|checkBad) != 0 {
					crossChain++
				}
				flags[next] |= checkInUse

				next = SectorNum(nh.Next)
			}

		default:
			// Anything else is left alone for now; the second pass below
			// decides whether it is reclaimable.
		}
	}

	for sector := SectorNum(0); uint32(sector) < total; sector++ {
		f := flags[sector]
		if f&(checkInUse|checkFnode|checkFree) != 0 {
			continue
		}

		if f&checkBad == 0 {
			h, err := fs.readHeader(sector)
			if err != nil {
				return fixed, crossChain, err
			}
			if err := fs.markFreeDirty(sector, h); err != nil {
				return fixed, crossChain, err
			}
		} else {
			if err := fs.eraseSector(sector); err != nil {
				return fixed, crossChain, err
			}
		}
		fixed++
	}

	dedupFixed, err := fs.deduplicateFilenodes(total)
	if err != nil {
		return fixed, crossChain, err
	}
	fixed += dedupFixed

	return fixed, crossChain, nil
}

// deduplicateFilenodes scans every filenode sector against every later
// filenode sector; when two share a name (case-insensitively), it deletes
// the chain with the lower Count, per spec.md §4.9.
func (fs *Fs) deduplicateFilenodes(total uint32) (int, error) {
	fixed := 0

	for sector := SectorNum(0); uint32(sector) < total; sector++ {
		h, err := fs.readHeader(sector)
		if err != nil {
			return fixed, err
		}
		if h.Status != statusInUseFilenode {
			continue
		}

		buf := make([]byte, filenodeSize)
		if err := fs.readSectorAt(sector, sectorHeaderSize, buf); err != nil {
			return fixed, err
		}
		node, err := unmarshalFilenode(buf)
		if err != nil {
			return fixed, err
		}

		for other := sector + 1; uint32(other) < total; other++ {
			oh, err := fs.readHeader(other)
			if err != nil {
				return fixed, err
			}
			if oh.Status != statusInUseFilenode {
				continue
			}

			obuf := make([]byte, filenodeSize)
			if err := fs.readSectorAt(other, sectorHeaderSize, obuf); err != nil {
				return fixed, err
			}
			otherNode, err := unmarshalFilenode(obuf)
			if err != nil {
				return fixed, err
			}

			if !sameName(node.Name(), otherNode.Name()) {
				continue
			}

			deleteSector := other
			keepOlderDeleted := node.Count < otherNode.Count
			if keepOlderDeleted {
				deleteSector = sector
			}

			n, err := fs.freeChainCounting(deleteSector)
			if err != nil {
				return fixed, err
			}
			fixed += n

			if keepOlderDeleted {
				// sector itself was just deleted; nothing more to compare
				// it against.
				break
			}
		}
	}

	return fixed, nil
}

// freeChainCounting is freeChain with a sectors-touched count, used by the
// checker to tally fixed sectors.
func (fs *Fs) freeChainCounting(head SectorNum) (int, error) {
	count := 0
	sector := head
	for !sector.IsTerminal() {
		h, err := fs.readHeader(sector)
		if err != nil {
			return count, err
		}
		next := SectorNum(h.Next)

		if err := fs.markFreeDirty(sector, h); err != nil {
			return count, err
		}
		count++

		sector = next
	}
	return count, nil
}
