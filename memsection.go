package mffs

import "fmt"

// MemSection is a SectionIO backed by a plain byte arena, sized to
// count*sectorSize bytes and initialized to all-ones, mirroring an erased
// NOR device. It is used by the package's tests.
type MemSection struct {
	sectorSize uint32
	data       []byte
}

// NewMemSection allocates a MemSection with count sectors of sectorSize
// bytes each, pre-erased to all-ones.
func NewMemSection(count, sectorSize uint32) *MemSection {
	data := make([]byte, count*sectorSize)
	for i := range data {
		data[i] = 0xff
	}
	return &MemSection{sectorSize: sectorSize, data: data}
}

func (m *MemSection) bounds(relSector, offset uint32, n int) (int, int, error) {
	start := int(relSector*m.sectorSize + offset)
	end := start + n
	if start < 0 || end > len(m.data) {
		return 0, 0, fmt.Errorf("mffs: mem section: sector %d offset %d length %d out of range", relSector, offset, n)
	}
	return start, end, nil
}

func (m *MemSection) ReadSector(relSector uint32, offset uint32, buf []byte) (int, error) {
	start, end, err := m.bounds(relSector, offset, len(buf))
	if err != nil {
		return 0, err
	}
	copy(buf, m.data[start:end])
	return len(buf), nil
}

func (m *MemSection) WriteSector(relSector uint32, offset uint32, buf []byte) (int, error) {
	start, end, err := m.bounds(relSector, offset, len(buf))
	if err != nil {
		return 0, err
	}
	// NOR flash can only clear bits on a write; AND the existing contents
	// in rather than overwrite, so a MemSection behaves like real media
	// when a caller "writes" without erasing first.
	for i := start; i < end; i++ {
		m.data[i] &= buf[i-start]
	}
	return len(buf), nil
}

func (m *MemSection) EraseSector(relSector uint32) error {
	start, end, err := m.bounds(relSector, 0, int(m.sectorSize))
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		m.data[i] = 0xff
	}
	return nil
}
