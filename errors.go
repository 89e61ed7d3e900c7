package mffs

import (
	"errors"
	"fmt"

	"github.com/jcoverton/mffs/checkpoint"
)

// Sentinel errors returned by the public API. They correspond one-to-one
// with the original FFS_RC_* return codes; Code maps back to those integers
// for callers that still need the legacy ABI.
var (
	ErrTooManyOpenFiles      = errors.New("mffs: too many open files")
	ErrFileDoesNotExist      = errors.New("mffs: file does not exist")
	ErrInvalidFileDescriptor = errors.New("mffs: invalid file descriptor")
	ErrInvalidFilePosition   = errors.New("mffs: invalid file position")
	ErrInvalidSectorNumber   = errors.New("mffs: invalid sector number")
	ErrOutOfSpace            = errors.New("mffs: out of space")
	ErrFileNotFound          = errors.New("mffs: file not found")
	ErrNewNameExists         = errors.New("mffs: new name exists")
)

// codeTable mirrors spec.md §6 verbatim.
var codeTable = []struct {
	err  error
	code int
}{
	{ErrTooManyOpenFiles, -1},
	{ErrFileDoesNotExist, -2},
	{ErrInvalidFileDescriptor, -3},
	{ErrInvalidFilePosition, -4},
	{ErrInvalidSectorNumber, -5},
	{ErrOutOfSpace, -6},
	{ErrFileNotFound, -7},
	{ErrNewNameExists, -8},
}

// Code translates err into the original FFS_RC_* integer contract. It
// returns 0 for a nil error and 1 for an error that does not match any of
// the known sentinels.
func Code(err error) int {
	if err == nil {
		return 0
	}

	candidates := make([]error, len(codeTable))
	for i, entry := range codeTable {
		candidates[i] = entry.err
	}

	sentinel := checkpoint.Sentinel(err, candidates...)
	if sentinel == nil {
		return 1
	}

	for _, entry := range codeTable {
		if entry.err == sentinel {
			return entry.code
		}
	}
	return 1
}

// wrapf annotates sentinel with a formatted detail message while keeping
// it matchable by errors.Is.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}

