package mffs

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// FileSection is a SectionIO backed by a single flat image file on an
// afero.Fs, letting callers point the same code at afero.NewMemMapFs() in
// tests or afero.NewOsFs() against a real flash-emulation image file.
type FileSection struct {
	fs         afero.Fs
	path       string
	sectorSize uint32
}

// NewFileSection opens (creating if needed) path on fs as a flat image of
// count sectors of sectorSize bytes each. A freshly created image is
// pre-erased to all-ones.
func NewFileSection(fsys afero.Fs, path string, count, sectorSize uint32) (*FileSection, error) {
	size := int64(count) * int64(sectorSize)

	info, err := fsys.Stat(path)
	if err != nil {
		f, err := fsys.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		erased := make([]byte, sectorSize)
		for i := range erased {
			erased[i] = 0xff
		}
		for written := int64(0); written < size; written += int64(sectorSize) {
			if _, err := f.Write(erased); err != nil {
				return nil, err
			}
		}
	} else if info.Size() < size {
		return nil, io.ErrUnexpectedEOF
	}

	return &FileSection{fs: fsys, path: path, sectorSize: sectorSize}, nil
}

func (fsec *FileSection) open(flag int) (afero.File, error) {
	return fsec.fs.OpenFile(fsec.path, flag, 0o644)
}

func (fsec *FileSection) ReadSector(relSector uint32, offset uint32, buf []byte) (int, error) {
	f, err := fsec.open(os.O_RDONLY)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(int64(relSector)*int64(fsec.sectorSize)+int64(offset), io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(f, buf)
}

func (fsec *FileSection) WriteSector(relSector uint32, offset uint32, buf []byte) (int, error) {
	f, err := fsec.open(os.O_RDWR)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(int64(relSector)*int64(fsec.sectorSize)+int64(offset), io.SeekStart); err != nil {
		return 0, err
	}

	// Flash can only clear bits on write; read-modify-AND-write the region
	// so a FileSection obeys the same one-way bit discipline as MemSection.
	current := make([]byte, len(buf))
	if _, err := io.ReadFull(f, current); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, err
	}
	merged := make([]byte, len(buf))
	for i := range buf {
		merged[i] = current[i] & buf[i]
	}

	if _, err := f.Seek(int64(relSector)*int64(fsec.sectorSize)+int64(offset), io.SeekStart); err != nil {
		return 0, err
	}
	n, err := f.Write(merged)
	if err != nil {
		return n, err
	}
	return n, nil
}

func (fsec *FileSection) EraseSector(relSector uint32) error {
	f, err := fsec.open(os.O_RDWR)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(int64(relSector)*int64(fsec.sectorSize), io.SeekStart); err != nil {
		return err
	}

	erased := make([]byte, fsec.sectorSize)
	for i := range erased {
		erased[i] = 0xff
	}
	_, err = f.Write(erased)
	return err
}
