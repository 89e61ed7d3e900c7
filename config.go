package mffs

import (
	"fmt"

	"github.com/pelletier/go-toml"
)

// SectionConfig is the on-disk description of one FlashSection, decoded
// from a `[[sections]]` TOML table per SPEC_FULL.md §4.10.
type SectionConfig struct {
	Device     uint8  `toml:"device"`
	Start      uint32 `toml:"start"`
	Count      uint32 `toml:"count"`
	SectorSize uint32 `toml:"sector_size"`
}

// sectionConfigDocument is the root of the TOML document: a single
// `sections` array of tables.
type sectionConfigDocument struct {
	Sections []SectionConfig `toml:"sections"`
}

// LoadSectionConfig decodes a section-table TOML document.
func LoadSectionConfig(data []byte) ([]SectionConfig, error) {
	var doc sectionConfigDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mffs: decoding section config: %w", err)
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("mffs: section config has no [[sections]] entries")
	}
	return doc.Sections, nil
}

// BuildSections resolves a []SectionConfig into live []FlashSection, using
// ioForDevice to obtain the SectionIO capability for each entry's device
// id. This keeps the core library config-format-agnostic: it never sees
// TOML, only the resolved FlashSection table.
func BuildSections(configs []SectionConfig, ioForDevice func(device uint8, cfg SectionConfig) (SectionIO, error)) ([]FlashSection, error) {
	sections := make([]FlashSection, 0, len(configs))
	for _, cfg := range configs {
		io, err := ioForDevice(cfg.Device, cfg)
		if err != nil {
			return nil, fmt.Errorf("mffs: building section for device %d: %w", cfg.Device, err)
		}
		sections = append(sections, FlashSection{
			Device:     cfg.Device,
			Start:      cfg.Start,
			Count:      cfg.Count,
			SectorSize: cfg.SectorSize,
			IO:         io,
		})
	}
	return sections, nil
}
