package mffs

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Fs is a single flash file system instance spanning one or more
// FlashSections, per spec.md §4.1. The zero value is not usable; build one
// with New.
type Fs struct {
	mu sync.Mutex

	sections    []FlashSection
	descriptors [MaxFileDescriptors]fileDescriptor

	errorSectorCount uint32

	logger *logrus.Logger
	clock  func() time.Time
}

// Option configures an Fs at construction time.
type Option func(*Fs)

// WithLogger overrides the default logrus logger (logrus.StandardLogger).
func WithLogger(logger *logrus.Logger) Option {
	return func(fs *Fs) {
		fs.logger = logger
	}
}

// WithClock overrides the Clock capability used to stamp Filenode.DataTime,
// per spec.md §6's Design Notes. Tests use this to get deterministic
// timestamps instead of time.Now.
func WithClock(clock func() time.Time) Option {
	return func(fs *Fs) {
		fs.clock = clock
	}
}

// New builds an Fs over the given sections, which must already be laid out
// in ascending logical-sector order (section i's first logical sector
// immediately follows section i-1's last). New does not read or write any
// sector; call Check or format the sections yourself first if they are not
// already formatted.
func New(sections []FlashSection, opts ...Option) *Fs {
	fs := &Fs{
		sections: sections,
		logger:   logrus.StandardLogger(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// TotalSectors reports the number of logical sectors this Fs manages,
// across every section in its table.
func (fs *Fs) TotalSectors() uint32 {
	return totalSectors(fs.sections)
}
