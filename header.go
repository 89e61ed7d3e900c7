package mffs

import (
	"bytes"
	"encoding/binary"
)

// sectorHeaderKey is the magic value ('m','f','f','s' from the most to the
// least significant byte; stored little-endian, so the bytes on flash read
// "sffm") written
// at the start of every sector this system manages. Its absence means the
// sector has never been formatted by us.
const sectorHeaderKey uint32 = 0x6d666673

// fileSystemVersion is the current on-flash format version.
const fileSystemVersion uint8 = 1

// Status byte values. The bit pattern is chosen so every legal transition
// only clears bits, matching the 1->0 flash programming constraint:
// FREE (all ones) -> INUSE/INUSE_FILENODE -> FREE_DIRTY (all zero), and
// only an erase can set bits back to FREE.
const (
	statusInUse         byte = 0x0f
	statusInUseFilenode byte = 0xf0
	statusFree          byte = 0xff
	statusFreeDirty     byte = 0x00
)

// noSector is the all-ones sentinel meaning "no next sector" / "not found".
// It is spelled out as a named constant rather than a bare -1 comparison,
// per the Go port's design notes on encoding sentinel values explicitly.
const noSector uint32 = 0xFFFFFFFF

// SectorNum addresses a logical sector in the flash file system.
type SectorNum uint32

// IsTerminal reports whether s is the chain-terminating sentinel.
func (s SectorNum) IsTerminal() bool {
	return uint32(s) == noSector
}

// noSectorNum is the typed form of noSector, used as the zero-value-free
// "no sector" marker throughout the package.
const noSectorNum SectorNum = SectorNum(noSector)

// sectorHeaderSize is the encoded, word-aligned size of sectorHeader.
const sectorHeaderSize = 4 + 4 + 4 + 1 + 1 + 2 + 4 + 4

// sectorHeader is stored at offset 0 of every managed sector. The field
// order and widths mirror FFS_SECTOR_HEADER from the original
// specification bit for bit.
type sectorHeader struct {
	Key            uint32
	Next           uint32
	EraseCount     uint32
	Version        uint8
	Status         byte
	SectorChecksum uint16
	SectorLength   uint32
	DataOffset     uint32
}

func (h sectorHeader) marshal() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(sectorHeaderSize)
	// Errors from binary.Write against a bytes.Buffer are impossible for
	// fixed-width fields, so they are not checked here.
	_ = binary.Write(buf, binary.LittleEndian, h)
	return buf.Bytes()
}

func unmarshalSectorHeader(data []byte) (sectorHeader, error) {
	var h sectorHeader
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h)
	return h, err
}

// hasValidKey reports whether the header was ever formatted by this system.
func (h sectorHeader) hasValidKey() bool {
	return h.Key == sectorHeaderKey
}

// isFree reports whether the sector is available for allocation, whether
// or not it has been physically erased yet.
func (h sectorHeader) isFree() bool {
	return h.Status == statusFree || h.Status == statusFreeDirty
}
