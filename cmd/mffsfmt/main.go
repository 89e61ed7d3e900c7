package main

import (
	"fmt"
	"os"

	"github.com/jcoverton/mffs"
	"github.com/spf13/afero"
)

// main formats a flat flash image file according to a section-table TOML
// config. Run with: mffsfmt <config.toml> <image-file>
func main() {
	args := os.Args[1:]
	if len(args) != 2 {
		fmt.Println("usage: mffsfmt <config.toml> <image-file>")
		os.Exit(1)
	}

	configPath, imagePath := args[0], args[1]

	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	configs, err := mffs.LoadSectionConfig(data)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	osFs := afero.NewOsFs()
	sections, err := mffs.BuildSections(configs, func(device uint8, cfg mffs.SectionConfig) (mffs.SectionIO, error) {
		return mffs.NewFileSection(osFs, imagePath, cfg.Count, cfg.SectorSize)
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fs := mffs.New(sections)
	free, err := fs.Space(mffs.SpaceFormatAll)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("formatted %s: %d bytes free\n", imagePath, free)
}
