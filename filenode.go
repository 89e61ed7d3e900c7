package mffs

import (
	"bytes"
	"encoding/binary"
)

// MaxFilenameLength is the maximum filename length, excluding the NUL
// terminator, per spec.md §3.
const MaxFilenameLength = 64

// filenodeSize is the encoded size of Filenode: Permissions(1) +
// Filename(65, NUL-terminated) + FileSize(4) + DataTime(4) + Count(4).
const filenodeSize = 1 + (MaxFilenameLength + 1) + 4 + 4 + 4

// Filenode is the directory entry that lives immediately after the sector
// header in the head sector of a file's chain.
type Filenode struct {
	Permissions byte
	rawName     [MaxFilenameLength + 1]byte
	FileSize    uint32
	DataTime    uint32
	Count       uint32
}

// Name returns the filenode's filename, as stored up to its NUL terminator.
func (f Filenode) Name() string {
	n := bytes.IndexByte(f.rawName[:], 0)
	if n < 0 {
		n = len(f.rawName)
	}
	return string(f.rawName[:n])
}

// setName stores name into the fixed-width, NUL-terminated filename field,
// truncating it to MaxFilenameLength bytes if necessary.
func (f *Filenode) setName(name string) {
	var raw [MaxFilenameLength + 1]byte
	n := copy(raw[:MaxFilenameLength], name)
	raw[n] = 0
	f.rawName = raw
}

// isInterruptedCreate reports whether this filenode was left in the state
// the original source describes: filename[0] == 0xff and FileSize == the
// all-ones sentinel, meaning a create was in progress when power was lost.
func (f Filenode) isInterruptedCreate() bool {
	return f.rawName[0] == 0xff && f.FileSize == noSector
}

func (f Filenode) marshal() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(filenodeSize)
	_ = binary.Write(buf, binary.LittleEndian, f.Permissions)
	buf.Write(f.rawName[:])
	_ = binary.Write(buf, binary.LittleEndian, f.FileSize)
	_ = binary.Write(buf, binary.LittleEndian, f.DataTime)
	_ = binary.Write(buf, binary.LittleEndian, f.Count)
	return buf.Bytes()
}

func unmarshalFilenode(data []byte) (Filenode, error) {
	var f Filenode
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &f.Permissions); err != nil {
		return f, err
	}
	if _, err := r.Read(f.rawName[:]); err != nil {
		return f, err
	}
	if err := binary.Read(r, binary.LittleEndian, &f.FileSize); err != nil {
		return f, err
	}
	if err := binary.Read(r, binary.LittleEndian, &f.DataTime); err != nil {
		return f, err
	}
	if err := binary.Read(r, binary.LittleEndian, &f.Count); err != nil {
		return f, err
	}
	return f, nil
}

// sameName reports whether a and b refer to the same filename under the
// ASCII case-insensitive comparison the on-flash format requires. This is
// a specification choice, not an implementation detail: existing media was
// written comparing names via an ASCII upper-case copy, so we must not
// substitute a locale- or Unicode-aware fold here.
func sameName(a, b string) bool {
	return asciiUpper(a) == asciiUpper(b)
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// newFileDisplayName is substituted for a filenode's real name by
// NextDirectory when the filenode represents a create that was
// interrupted by power loss and has no meaningful name yet.
const newFileDisplayName = "[New File]"
