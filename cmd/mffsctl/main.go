package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jcoverton/mffs"
	"github.com/spf13/afero"
)

// main is a small CLI driving an mffs.Fs against a flat image file
// described by a section-table TOML config. It exists to exercise the
// public API end to end, the same role cmd/example plays for GoFAT.
//
// usage: mffsctl <config.toml> <image-file> <command> [args...]
//
//	ls
//	put <local-file> <name>
//	get <name> <local-file>
//	rm <name>
//	mv <old-name> <new-name>
//	check
//	space
func main() {
	args := os.Args[1:]
	if len(args) < 3 {
		usage()
	}

	configPath, imagePath, command := args[0], args[1], args[2]
	rest := args[3:]

	data, err := os.ReadFile(configPath)
	fatal(err)

	configs, err := mffs.LoadSectionConfig(data)
	fatal(err)

	osFs := afero.NewOsFs()
	sections, err := mffs.BuildSections(configs, func(device uint8, cfg mffs.SectionConfig) (mffs.SectionIO, error) {
		return mffs.NewFileSection(osFs, imagePath, cfg.Count, cfg.SectorSize)
	})
	fatal(err)

	fs := mffs.New(sections)

	switch command {
	case "ls":
		cmdList(fs)
	case "put":
		requireArgs(rest, 2)
		cmdPut(fs, rest[0], rest[1])
	case "get":
		requireArgs(rest, 2)
		cmdGet(fs, rest[0], rest[1])
	case "rm":
		requireArgs(rest, 1)
		fatal(fs.Erase(rest[0]))
	case "mv":
		requireArgs(rest, 2)
		fatal(fs.Rename(rest[0], rest[1]))
	case "check":
		cmdCheck(fs)
	case "space":
		cmdSpace(fs)
	default:
		usage()
	}
}

func cmdList(fs *mffs.Fs) {
	var handle uint32
	for {
		node, done, err := fs.NextDirectory(&handle)
		fatal(err)
		if done {
			return
		}
		fmt.Printf("%-64s %10d bytes\n", node.Name(), node.FileSize)
	}
}

func cmdPut(fs *mffs.Fs, localPath, name string) {
	local, err := os.Open(localPath)
	fatal(err)
	defer local.Close()

	fd, err := fs.Open(name, mffs.WriteOnly|mffs.Create, 0o644)
	fatal(err)

	buf := make([]byte, 4096)
	for {
		n, readErr := local.Read(buf)
		if n > 0 {
			_, writeErr := fs.Write(fd, buf[:n])
			fatal(writeErr)
		}
		if readErr == io.EOF {
			break
		}
		fatal(readErr)
	}

	fatal(fs.Close(fd))
}

func cmdGet(fs *mffs.Fs, name, localPath string) {
	fd, err := fs.Open(name, mffs.ReadOnly, 0)
	fatal(err)
	defer fs.Close(fd)

	local, err := os.Create(localPath)
	fatal(err)
	defer local.Close()

	buf := make([]byte, 4096)
	for {
		n, readErr := fs.Read(fd, buf)
		if n > 0 {
			_, writeErr := local.Write(buf[:n])
			fatal(writeErr)
		}
		if readErr != nil || n == 0 {
			return
		}
	}
}

func cmdCheck(fs *mffs.Fs) {
	fixed, crossChain, err := fs.Check()
	fatal(err)
	fmt.Printf("fixed %d sectors, %d cross-chain collisions\n", fixed, crossChain)
}

func cmdSpace(fs *mffs.Fs) {
	free, err := fs.Space(mffs.SpaceFreeBytes)
	fatal(err)
	total, err := fs.Space(mffs.SpaceTotalBytes)
	fatal(err)
	fmt.Printf("%d/%d bytes free\n", free, total)
}

func requireArgs(args []string, n int) {
	if len(args) < n {
		usage()
	}
}

func usage() {
	fmt.Println("usage: mffsctl <config.toml> <image-file> <ls|put|get|rm|mv|check|space> [args...]")
	os.Exit(1)
}

func fatal(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
