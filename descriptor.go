package mffs

import (
	"os"

	"github.com/jcoverton/mffs/checkpoint"
)

// OpenFlag mirrors the original FFS_RDONLY/FFS_WRONLY/FFS_RDWR/FFS_CREATE
// bitmask passed to Open. Create occupies a bit outside the low two bits
// used by the access-mode flags, so it can be combined with any of them --
// Open tests it with flags&Create, the bitwise-AND fix for spec.md §9's
// Open Question (the original source tested flags && FFS_CREATE, which
// made Create effectively always on whenever any flag bit was set).
type OpenFlag uint8

const (
	ReadOnly  OpenFlag = 0x00
	WriteOnly OpenFlag = 0x01
	ReadWrite OpenFlag = 0x02
	Create    OpenFlag = 0x04
)

// MaxFileDescriptors bounds the number of files open at once, per spec.md
// §3 ("File descriptor (in-memory only)").
const MaxFileDescriptors = 2

// fileDescriptor is the in-memory, per-open state for one file handle.
type fileDescriptor struct {
	InUse          bool
	Flags          OpenFlag
	DeleteOldFile  bool
	WriteFnode     bool
	FnodeSector    SectorNum
	OldFnodeSector SectorNum
	Position       uint32
	Fnode          Filenode
}

func (fs *Fs) getDescriptor() (int, error) {
	for fd := 0; fd < MaxFileDescriptors; fd++ {
		if !fs.descriptors[fd].InUse {
			fs.descriptors[fd] = fileDescriptor{InUse: true}
			return fd, nil
		}
	}
	return 0, checkpoint.From(ErrTooManyOpenFiles)
}

func (fs *Fs) freeDescriptor(fd int) {
	fs.descriptors[fd] = fileDescriptor{}
}

// validDescriptor bounds-checks fd >= MaxFileDescriptors (the original used
// fd > FFS_MAX_FILE_DESCRIPTORS, an off-by-one the Go port corrects per
// spec.md §9's Open Question).
func (fs *Fs) validDescriptor(fd int) bool {
	return fd >= 0 && fd < MaxFileDescriptors && fs.descriptors[fd].InUse
}

// Open locates or creates a file and returns a descriptor, per spec.md §4.5.
func (fs *Fs) Open(name string, flags OpenFlag, perm os.FileMode) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fd, err := fs.getDescriptor()
	if err != nil {
		return 0, err
	}

	desc := &fs.descriptors[fd]
	existing, sector, err := fs.locateFilenode(name)
	if err != nil {
		fs.freeDescriptor(fd)
		return 0, err
	}
	desc.FnodeSector = sector

	if flags&Create == 0 && sector.IsTerminal() {
		fs.freeDescriptor(fd)
		return 0, checkpoint.From(ErrFileDoesNotExist)
	}

	if flags&Create != 0 {
		createCount := uint32(0)
		if !sector.IsTerminal() {
			createCount = existing.Count + 1
			desc.DeleteOldFile = true
			desc.OldFnodeSector = sector
		}

		desc.Fnode = Filenode{}
		desc.Fnode.setName(name)
		desc.FnodeSector = noSectorNum
		desc.Fnode.FileSize = 0
		desc.Fnode.Permissions = byte(perm)
		desc.Fnode.Count = createCount
		desc.Fnode.DataTime = uint32(fs.clock().Unix())
	} else {
		desc.Fnode = existing
	}

	desc.Flags = flags
	return fd, nil
}

// Close writes out a pending Filenode and/or reclaims the replaced chain,
// then releases the descriptor, per spec.md §4.5.
func (fs *Fs) Close(fd int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.validDescriptor(fd) {
		return checkpoint.From(ErrInvalidFileDescriptor)
	}

	desc := &fs.descriptors[fd]

	if desc.WriteFnode {
		if err := fs.writeSectorAt(desc.FnodeSector, sectorHeaderSize, desc.Fnode.marshal()); err != nil {
			return err
		}
	}

	if desc.DeleteOldFile {
		if err := fs.freeChain(desc.OldFnodeSector); err != nil {
			return err
		}
	}

	fs.freeDescriptor(fd)
	return nil
}
